package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/triplane/triplane-api/internal/trips"
	"github.com/triplane/triplane-api/internal/user"
)

// fakeUserStore is an in-memory UserStore that mirrors the repository's
// semantics: normalized unique emails, trimmed names, profile defaults, and
// ErrNotFound when an update touches no row.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*user.User)}
}

func (s *fakeUserStore) put(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = cloneUser(u)
}

func (s *fakeUserStore) get(id uuid.UUID) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u)
	}
	return nil
}

func (s *fakeUserStore) Create(ctx context.Context, params user.CreateParams) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := user.NormalizeEmail(params.Email)
	for _, u := range s.users {
		if u.Email == email {
			return nil, user.ErrDuplicateEmail
		}
	}

	role := params.Role
	if role == "" {
		role = user.RoleUser
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(params.Name),
		Email:        email,
		PasswordHash: params.PasswordHash,
		Role:         role,
		IsVerified:   params.IsVerified,
		OTPCode:      cloneStr(params.OTPCode),
		OTPExpiresAt: cloneTime(params.OTPExpiresAt),
		SocialID:     cloneStr(params.SocialID),
		ProfilePhoto: cloneStr(params.ProfilePhoto),

		Location:          "Global Nomad",
		TravelerClass:     "Economy",
		SeatPreference:    "Window",
		MealPreference:    "Standard",
		PassportExpiry:    "Not Provided",
		SavedDestinations: []uuid.UUID{},
		MembershipPoints:  1250,

		CreatedAt: now,
		UpdatedAt: now,
	}

	s.users[u.ID] = u
	return cloneUser(u), nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := user.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == normalized {
			return cloneUser(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) ReplaceOTP(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.IsVerified {
		return user.ErrNotFound
	}

	u.OTPCode = &code
	u.OTPExpiresAt = &expiresAt
	return nil
}

func (s *fakeUserStore) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return user.ErrNotFound
	}

	u.IsVerified = true
	u.OTPCode = nil
	u.OTPExpiresAt = nil
	return nil
}

func (s *fakeUserStore) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return user.ErrNotFound
	}

	u.PasswordHash = passwordHash
	return nil
}

func (s *fakeUserStore) UpdateProfile(ctx context.Context, updated *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[updated.ID]
	if !ok {
		return user.ErrNotFound
	}

	email := user.NormalizeEmail(updated.Email)
	for id, other := range s.users {
		if id != updated.ID && other.Email == email {
			return user.ErrDuplicateEmail
		}
	}

	u.Name = updated.Name
	u.Email = email
	u.ProfilePhoto = cloneStr(updated.ProfilePhoto)
	u.Location = updated.Location
	u.TravelerClass = updated.TravelerClass
	u.SeatPreference = updated.SeatPreference
	u.MealPreference = updated.MealPreference
	u.PassportExpiry = updated.PassportExpiry
	return nil
}

func (s *fakeUserStore) SetSocialIdentity(ctx context.Context, userID uuid.UUID, socialID string, photo *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return user.ErrNotFound
	}

	if u.SocialID == nil {
		u.SocialID = &socialID
	}
	if u.ProfilePhoto == nil && photo != nil {
		u.ProfilePhoto = cloneStr(photo)
	}
	return nil
}

func (s *fakeUserStore) ToggleSavedDestination(ctx context.Context, userID, packageID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}

	saved := make([]uuid.UUID, 0, len(u.SavedDestinations)+1)
	found := false
	for _, id := range u.SavedDestinations {
		if id == packageID {
			found = true
			continue
		}
		saved = append(saved, id)
	}
	if !found {
		saved = append(saved, packageID)
	}

	u.SavedDestinations = saved
	return append([]uuid.UUID{}, saved...), nil
}

func (s *fakeUserStore) AdminExists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Role == user.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func cloneUser(u *user.User) *user.User {
	clone := *u
	clone.OTPCode = cloneStr(u.OTPCode)
	clone.OTPExpiresAt = cloneTime(u.OTPExpiresAt)
	clone.SocialID = cloneStr(u.SocialID)
	clone.ProfilePhoto = cloneStr(u.ProfilePhoto)
	clone.SavedDestinations = append([]uuid.UUID{}, u.SavedDestinations...)
	return &clone
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type sentCode struct {
	Email string
	Name  string
	Code  string
}

// fakeEmailSender records dispatched codes. The service sends from a
// goroutine, so readers must synchronize (see codes helpers).
type fakeEmailSender struct {
	mu            sync.Mutex
	verifications []sentCode
	resends       []sentCode
}

func (f *fakeEmailSender) SendVerificationCode(ctx context.Context, toEmail, name, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifications = append(f.verifications, sentCode{Email: toEmail, Name: name, Code: code})
	return nil
}

func (f *fakeEmailSender) SendNewCode(ctx context.Context, toEmail, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resends = append(f.resends, sentCode{Email: toEmail, Code: code})
	return nil
}

func (f *fakeEmailSender) verificationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.verifications)
}

func (f *fakeEmailSender) lastVerification() sentCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.verifications) == 0 {
		return sentCode{}
	}
	return f.verifications[len(f.verifications)-1]
}

func (f *fakeEmailSender) resendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resends)
}

// fakeRateLimiter lets handler tests flip limits on without Redis.
type fakeRateLimiter struct {
	ipLimited  bool
	onCooldown bool

	mu           sync.Mutex
	recorded     []string
	cooldownsSet []string
}

func (f *fakeRateLimiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	return f.ipLimited, nil
}

func (f *fakeRateLimiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, purpose)
	return nil
}

func (f *fakeRateLimiter) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	return f.onCooldown, nil
}

func (f *fakeRateLimiter) SetEmailCooldown(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cooldownsSet = append(f.cooldownsSet, email)
	return nil
}

// fakePackageFinder resolves ids against a fixed catalog.
type fakePackageFinder struct {
	catalog map[uuid.UUID]trips.Package
}

func (f *fakePackageFinder) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]trips.Package, error) {
	found := make([]trips.Package, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.catalog[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

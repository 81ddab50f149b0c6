package httputil

// Machine-readable error codes returned alongside human messages so clients
// can branch without string matching.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInternalError      = "internal_error"
	CodeTooManyRequests    = "too_many_requests"
	CodeCooldownActive     = "cooldown_active"

	CodeEmailRequired      = "email_required"
	CodeInvalidEmailFormat = "invalid_email_format"
	CodeNameRequired       = "name_required"
	CodePasswordRequired   = "password_required"
	CodePasswordTooShort   = "password_too_short"
	CodeEmailAlreadyExists = "email_already_exists"

	CodeUserNotFound     = "user_not_found"
	CodeAlreadyVerified  = "already_verified"
	CodeInvalidOTP       = "invalid_or_expired_otp"
	CodeOTPRequired      = "otp_required"

	CodeInvalidCredentials = "invalid_credentials"
	CodeAccountUnverified  = "account_unverified"

	CodeMissingAuth        = "missing_auth"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeInvalidToken       = "invalid_token"
	CodeTokenExpired       = "token_expired"
	CodeInvalidTokenUserID = "invalid_token_user_id"
	CodeForbidden          = "forbidden"

	CodeCurrentPasswordRequired = "current_password_required"
	CodeWrongPassword           = "wrong_password"

	CodePackageNotFound = "package_not_found"
)

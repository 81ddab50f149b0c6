package trips

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/triplane/triplane-api/internal/httputil"
	"github.com/triplane/triplane-api/internal/logging"
)

// Handler contains HTTP handlers for the travel package catalog.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// PackageRequest is the body for admin create/update.
type PackageRequest struct {
	Title        string  `json:"title"`
	Location     string  `json:"location"`
	Continent    string  `json:"continent"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Duration     string  `json:"duration"`
	MaxGroupSize int     `json:"maxGroupSize"`
	Difficulty   string  `json:"difficulty"`
	Featured     bool    `json:"featured"`
}

// List returns the full catalog
// @Summary      List travel packages
// @Tags         packages
// @Produce      json
// @Success      200 {array} Package
// @Router       /packages [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	packages, err := h.repo.List(r.Context())
	if err != nil {
		logger.Error("failed to list packages", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list packages", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, packages, http.StatusOK)
}

// Get returns a single package
// @Summary      Get a travel package
// @Tags         packages
// @Produce      json
// @Param        id path string true "Package ID"
// @Success      200 {object} Package
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /packages/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid package id", httputil.CodePackageNotFound, http.StatusNotFound)
		return
	}

	pkg, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "package not found", httputil.CodePackageNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get package", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get package", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, pkg, http.StatusOK)
}

// Create adds a package to the catalog (admin only)
// @Summary      Create a travel package
// @Tags         packages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PackageRequest true "Package"
// @Success      201 {object} Package
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /packages [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req PackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.Title == "" || req.Location == "" {
		httputil.RespondErrorWithCode(w, "title and location are required", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	pkg, err := h.repo.Create(r.Context(), CreateParams(req))
	if err != nil {
		logger.Error("failed to create package", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create package", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("package created", "package_id", pkg.ID, "title", pkg.Title)
	httputil.RespondJSON(w, pkg, http.StatusCreated)
}

// Update overwrites a package (admin only)
// @Summary      Update a travel package
// @Tags         packages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Package ID"
// @Param        request body PackageRequest true "Package"
// @Success      200 {object} Package
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /packages/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid package id", httputil.CodePackageNotFound, http.StatusNotFound)
		return
	}

	var req PackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	pkg, err := h.repo.Update(r.Context(), id, CreateParams(req))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "package not found", httputil.CodePackageNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update package", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update package", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, pkg, http.StatusOK)
}

// Delete removes a package (admin only)
// @Summary      Delete a travel package
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Package ID"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /packages/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid package id", httputil.CodePackageNotFound, http.StatusNotFound)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "package not found", httputil.CodePackageNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete package", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete package", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "package deleted"}, http.StatusOK)
}

// Package httphandler is the HTTP driving adapter that serves the REST API.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/reviewloop/reviewloop/internal/application"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the settings and membership API.
type Handler struct {
	settings   *application.SettingsService
	access     *application.AccessService
	membership *application.MembershipService
	repos      driven.RepoStore
	db         Pinger
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	settings *application.SettingsService,
	access *application.AccessService,
	membership *application.MembershipService,
	repos driven.RepoStore,
	db Pinger,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		settings:   settings,
		access:     access,
		membership: membership,
		repos:      repos,
		db:         db,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware. The webhook handler is mounted
// unwrapped by signature verification concerns and shares the middleware.
func NewServeMux(h *Handler, webhook http.Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /webhook", webhook)

	mux.HandleFunc("GET /api/v1/accounts/{id}/settings", h.GetAccountSettings)
	mux.HandleFunc("PUT /api/v1/accounts/{id}/settings", h.UpdateAccountSettings)
	mux.HandleFunc("POST /api/v1/accounts/{id}/settings/sync", h.SyncAccountSettings)
	mux.HandleFunc("GET /api/v1/repositories/{id}/settings", h.GetRepositorySettings)
	mux.HandleFunc("PUT /api/v1/repositories/{id}/settings", h.UpdateRepositorySettings)
	mux.HandleFunc("DELETE /api/v1/repositories/{id}/settings", h.DeleteRepositorySettings)
	mux.HandleFunc("POST /api/v1/users/sync", h.SyncUser)
	mux.HandleFunc("GET /healthz", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// userID extracts the caller identity. Authentication proper sits in front of
// this service; it forwards the verified user id in a header.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// authorizeAccount runs the account-level permission gate. It writes the
// response and returns false when the request may not proceed. Both denial
// reasons collapse into one generic 403 so a response never reveals whether
// an association exists.
func (h *Handler) authorizeAccount(w http.ResponseWriter, r *http.Request, accountID string) bool {
	user := userID(r)
	if user == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return false
	}

	decision, err := h.access.CanConfigureAccount(r.Context(), user, accountID)
	if err != nil {
		h.logger.Error("account permission check failed", "account_id", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return false
	}
	if !decision.Allowed {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// authorizeRepository is the repository-scoped counterpart of authorizeAccount.
func (h *Handler) authorizeRepository(w http.ResponseWriter, r *http.Request, repositoryID string) bool {
	user := userID(r)
	if user == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return false
	}

	decision, err := h.access.CanConfigureRepository(r.Context(), user, repositoryID)
	if err != nil {
		h.logger.Error("repository permission check failed", "repository_id", repositoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return false
	}
	if !decision.Allowed {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// GetAccountSettings returns the account tier, with all-false defaults when
// no row exists yet.
func (h *Handler) GetAccountSettings(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	if !h.authorizeAccount(w, r, accountID) {
		return
	}

	settings, err := h.settings.GetAccountSettings(r.Context(), accountID)
	if err != nil {
		h.logger.Error("failed to get account settings", "account_id", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toAccountSettingsResponse(accountID, settings))
}

// UpdateAccountSettings applies a partial update to the account tier and
// returns the resulting settings.
func (h *Handler) UpdateAccountSettings(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	if !h.authorizeAccount(w, r, accountID) {
		return
	}

	var req SettingsPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IsEmpty() {
		writeError(w, http.StatusBadRequest, "at least one settings field is required")
		return
	}

	if err := h.settings.SetAccountSettings(r.Context(), accountID, req.toPatch()); err != nil {
		h.logger.Error("failed to update account settings", "account_id", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	settings, err := h.settings.GetAccountSettings(r.Context(), accountID)
	if err != nil {
		h.logger.Error("failed to reload account settings", "account_id", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toAccountSettingsResponse(accountID, settings))
}

// SyncAccountSettings forces every repository owned by the account back to
// inheriting the account defaults.
func (h *Handler) SyncAccountSettings(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	if !h.authorizeAccount(w, r, accountID) {
		return
	}

	if err := h.settings.SyncWithAccount(r.Context(), accountID); err != nil {
		h.logger.Error("failed to sync repository settings", "account_id", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetRepositorySettings returns the repository override tier plus the
// resolved effective values.
func (h *Handler) GetRepositorySettings(w http.ResponseWriter, r *http.Request) {
	repositoryID := r.PathValue("id")
	if !h.authorizeRepository(w, r, repositoryID) {
		return
	}

	repo, err := h.repos.GetByID(r.Context(), repositoryID)
	if err != nil {
		h.logger.Error("failed to get repository", "repository_id", repositoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if repo == nil {
		writeError(w, http.StatusNotFound, "repository not found")
		return
	}

	h.writeRepositorySettings(w, r, repositoryID, repo.OwnerID)
}

// UpdateRepositorySettings applies a partial update to the repository
// override tier and returns the resulting settings.
func (h *Handler) UpdateRepositorySettings(w http.ResponseWriter, r *http.Request) {
	repositoryID := r.PathValue("id")
	if !h.authorizeRepository(w, r, repositoryID) {
		return
	}

	repo, err := h.repos.GetByID(r.Context(), repositoryID)
	if err != nil {
		h.logger.Error("failed to get repository", "repository_id", repositoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if repo == nil {
		writeError(w, http.StatusNotFound, "repository not found")
		return
	}

	var req SettingsPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IsEmpty() {
		writeError(w, http.StatusBadRequest, "at least one settings field is required")
		return
	}

	if err := h.settings.SetRepositorySettings(r.Context(), repositoryID, req.toPatch()); err != nil {
		h.logger.Error("failed to update repository settings", "repository_id", repositoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeRepositorySettings(w, r, repositoryID, repo.OwnerID)
}

// DeleteRepositorySettings drops the override row so the repository reverts
// to inheriting from its account. Deleting an absent row is a success.
func (h *Handler) DeleteRepositorySettings(w http.ResponseWriter, r *http.Request) {
	repositoryID := r.PathValue("id")
	if !h.authorizeRepository(w, r, repositoryID) {
		return
	}

	if err := h.settings.DeleteRepositorySettings(r.Context(), repositoryID); err != nil {
		h.logger.Error("failed to delete repository settings", "repository_id", repositoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeRepositorySettings loads the override row and resolved values and
// writes the combined response.
func (h *Handler) writeRepositorySettings(w http.ResponseWriter, r *http.Request, repositoryID, ownerID string) {
	settings, err := h.settings.GetRepositorySettings(r.Context(), repositoryID)
	if err != nil {
		h.logger.Error("failed to get repository settings", "repository_id", repositoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	effective, err := h.settings.Resolve(r.Context(), ownerID, repositoryID)
	if err != nil {
		h.logger.Error("failed to resolve settings", "repository_id", repositoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toRepositorySettingsResponse(repositoryID, settings, effective))
}

// SyncUser pulls the authenticated user's memberships from the provider and
// records the new associations.
func (h *Handler) SyncUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.membership.SyncFromProvider(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrNoProvider) {
			writeError(w, http.StatusServiceUnavailable, "provider credentials not configured")
			return
		}
		h.logger.Error("user sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// Health reports service liveness including database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.Error("health check database ping failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}

	writeJSON(w, http.StatusOK, healthResponse())
}

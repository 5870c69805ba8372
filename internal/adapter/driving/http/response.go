package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SettingsPatchRequest is the JSON body for both settings PUT endpoints.
// Omitted fields are left unchanged.
type SettingsPatchRequest struct {
	AutoReviewEnabled     *bool `json:"auto_review_enabled"`
	RequestChangesEnabled *bool `json:"request_changes_enabled"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (r SettingsPatchRequest) IsEmpty() bool {
	return r.AutoReviewEnabled == nil && r.RequestChangesEnabled == nil
}

// toPatch converts the request body to the domain patch.
func (r SettingsPatchRequest) toPatch() model.SettingsPatch {
	return model.SettingsPatch{
		AutoReviewEnabled:             r.AutoReviewEnabled,
		RequestChangesWorkflowEnabled: r.RequestChangesEnabled,
	}
}

// AccountSettingsResponse is the JSON representation of the account tier.
type AccountSettingsResponse struct {
	AccountID             string `json:"account_id"`
	AutoReviewEnabled     bool   `json:"auto_review_enabled"`
	RequestChangesEnabled bool   `json:"request_changes_enabled"`
}

// RepositorySettingsResponse is the JSON representation of the repository
// override tier plus the resolved effective values. Override fields are null
// when the repository inherits from its account.
type RepositorySettingsResponse struct {
	RepositoryID          string                    `json:"repository_id"`
	AutoReviewEnabled     *bool                     `json:"auto_review_enabled"`
	RequestChangesEnabled *bool                     `json:"request_changes_enabled"`
	Effective             EffectiveSettingsResponse `json:"effective"`
}

// EffectiveSettingsResponse is the resolved configuration after the
// repository-over-account cascade.
type EffectiveSettingsResponse struct {
	AutoReviewEnabled     bool `json:"auto_review_enabled"`
	RequestChangesEnabled bool `json:"request_changes_enabled"`
}

// UserResponse is the JSON representation of a synced user.
type UserResponse struct {
	ID        string `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toAccountSettingsResponse converts account settings, substituting the
// all-false defaults for a missing row.
func toAccountSettingsResponse(accountID string, s *model.AccountSettings) AccountSettingsResponse {
	resp := AccountSettingsResponse{AccountID: accountID}
	if s != nil {
		resp.AutoReviewEnabled = s.AutoReviewEnabled
		resp.RequestChangesEnabled = s.RequestChangesWorkflowEnabled
	}
	return resp
}

// toRepositorySettingsResponse converts the override row (nil when the
// repository fully inherits) plus its resolved effective values.
func toRepositorySettingsResponse(repositoryID string, s *model.RepositorySettings, effective model.EffectiveSettings) RepositorySettingsResponse {
	resp := RepositorySettingsResponse{
		RepositoryID: repositoryID,
		Effective: EffectiveSettingsResponse{
			AutoReviewEnabled:     effective.AutoReviewEnabled,
			RequestChangesEnabled: effective.RequestChangesWorkflowEnabled,
		},
	}
	if s != nil {
		resp.AutoReviewEnabled = s.AutoReviewEnabled
		resp.RequestChangesEnabled = s.RequestChangesWorkflowEnabled
	}
	return resp
}

// toUserResponse converts a domain User to its JSON representation.
func toUserResponse(user model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Login:     user.Login,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}

// healthResponse builds the health payload with the current time.
func healthResponse() HealthResponse {
	return HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
}

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "webhook-secret"

func newTestHandler() (*Handler, *dispatcherFixture) {
	f := newDispatcherFixture()
	return NewHandler(testSecret, f.d, slog.Default()), f
}

func signedRequest(t *testing.T, eventType, payload, secret string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", "delivery-1")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))

	return req
}

func TestHandlerAcceptsSignedDelivery(t *testing.T) {
	handler, f := newTestHandler()

	payload := `{
		"action": "created",
		"installation": {"id": 99, "account": {"id": 1001, "login": "acme", "type": "Organization"}},
		"repositories": [{"id": 2001, "full_name": "acme/widgets"}]
	}`

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedRequest(t, "installation", payload, testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.accounts.saved, 1)
	assert.Equal(t, "1001", f.accounts.saved[0].ID)
}

func TestHandlerRejectsBadSignature(t *testing.T) {
	handler, f := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedRequest(t, "installation", `{"action":"created"}`, "wrong-secret"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.accounts.saved)
}

func TestHandlerRejectsUnparseablePayload(t *testing.T) {
	handler, _ := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedRequest(t, "installation", `{"action":`, testSecret))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerAcknowledgesFailedProcessing(t *testing.T) {
	handler, f := newTestHandler()
	f.accounts.err = assert.AnError

	payload := `{
		"action": "created",
		"installation": {"id": 99, "account": {"id": 1001, "login": "acme", "type": "Organization"}},
		"repositories": []
	}`

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedRequest(t, "installation", payload, testSecret))

	// Processing failures are logged and dropped; the provider must not
	// redeliver an event we have decided to skip.
	assert.Equal(t, http.StatusOK, rec.Code)
}

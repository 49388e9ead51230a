package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandgate/internal/types"
)

// mockTrialCreator implements TrialCreator for testing.
type mockTrialCreator struct {
	createFn func(ctx context.Context, userID, email string) types.TrialAccount

	capturedUserID string
	capturedEmail  string
}

func (m *mockTrialCreator) Create(ctx context.Context, userID, email string) types.TrialAccount {
	m.capturedUserID = userID
	m.capturedEmail = email
	if m.createFn != nil {
		return m.createFn(ctx, userID, email)
	}
	return types.TrialAccount{
		UserID:           userID,
		Email:            email,
		CreditsRemaining: 5,
		ExpiresAt:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func newTestAuthHandler(trials TrialCreator) *AuthHandler {
	return NewAuthHandler(trials, testValidator(), testLogger())
}

func TestSignup_Success(t *testing.T) {
	trials := &mockTrialCreator{}
	h := newTestAuthHandler(trials)

	req := makeRequest("POST", "/auth/signup", SignupRequest{Email: "jo@example.com", Name: "Jo"})
	rr := serve(h, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp SignupResponse
	parseJSONResponse(t, rr, &resp)

	assert.True(t, resp.Success)
	assert.True(t, len(resp.UserID) > len("user_"), "user ID should carry a generated suffix: %q", resp.UserID)
	assert.Equal(t, "user_", resp.UserID[:5])
	assert.Equal(t, 5, resp.Trial.CreditsRemaining)
	assert.False(t, resp.Trial.ExpiresAt.IsZero())

	// The trial is opened for the minted user, not the email.
	assert.Equal(t, resp.UserID, trials.capturedUserID)
	assert.Equal(t, "jo@example.com", trials.capturedEmail)
}

func TestSignup_MissingEmail(t *testing.T) {
	h := newTestAuthHandler(&mockTrialCreator{})

	req := makeRequest("POST", "/auth/signup", SignupRequest{Name: "Jo"})
	rr := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(types.ErrCodeValidationMissingField), parseErrorResponse(t, rr))
}

func TestSignup_InvalidEmail(t *testing.T) {
	h := newTestAuthHandler(&mockTrialCreator{})

	req := makeRequest("POST", "/auth/signup", SignupRequest{Email: "not-an-email"})
	rr := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(types.ErrCodeValidationInvalidEmail), parseErrorResponse(t, rr))
}

func TestSignup_MalformedBody(t *testing.T) {
	h := newTestAuthHandler(&mockTrialCreator{})

	req := makeRawRequest("POST", "/auth/signup", "{invalid}")
	rr := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_Success(t *testing.T) {
	h := newTestAuthHandler(&mockTrialCreator{})

	req := makeRequest("POST", "/auth/login", LoginRequest{Email: "jo@example.com"})
	rr := serve(h, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp LoginResponse
	parseJSONResponse(t, rr, &resp)

	assert.True(t, resp.Success)
	assert.Equal(t, "jo@example.com", resp.Email)

	decoded, err := base64.StdEncoding.DecodeString(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", string(decoded))
}

func TestLogin_InvalidEmail(t *testing.T) {
	h := newTestAuthHandler(&mockTrialCreator{})

	req := makeRequest("POST", "/auth/login", LoginRequest{Email: "nope"})
	rr := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(types.ErrCodeValidationInvalidEmail), parseErrorResponse(t, rr))
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bloodlink/internal/auth"
	"bloodlink/internal/intake"
	"bloodlink/internal/matching"
	"bloodlink/internal/metrics"
	"bloodlink/internal/store/memory"
	"bloodlink/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnRefused = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

// brokenDonorStore fails every read the matching engine and donor listing use.
type brokenDonorStore struct {
	*memory.DonorStore
}

func (brokenDonorStore) FindAvailable(context.Context, types.DonorQuery) ([]*types.Donor, error) {
	return nil, errConnRefused
}

func (brokenDonorStore) Donors(context.Context) ([]*types.Donor, error) {
	return nil, errConnRefused
}

type brokenSubmitter struct {
	err error
}

func (b brokenSubmitter) SubmitRequest(context.Context, types.BloodRequestInput, string) (*intake.Submission, error) {
	return nil, b.err
}

type errorHarness struct {
	handler    http.Handler
	recipients *memory.RecipientStore
	users      *memory.UserStore
	tokens     *auth.TokenService
}

func newErrorHarness(t *testing.T, environment string, submitter RequestSubmitter) *errorHarness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	donors := brokenDonorStore{DonorStore: memory.NewDonorStore()}
	recipients := memory.NewRecipientStore()
	users := memory.NewUserStore()

	tokens, err := auth.NewTokenService([]byte("test-signing-key-test-signing-key"), "bloodlink", time.Hour)
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	if submitter == nil {
		submitter = intake.New(recipients, matching.New(donors, logger), logger, m)
	}

	config := &types.Config{Environment: environment}
	svc := New(config, logger, donors, recipients, users, submitter, tokens, m)

	return &errorHarness{handler: svc.Handler(), recipients: recipients, users: users, tokens: tokens}
}

func (h *errorHarness) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func validBloodRequest() map[string]any {
	return map[string]any{
		"name":          "Ravi",
		"bloodGroup":    "A+",
		"contactNumber": "555-0199",
		"hospital":      "City Hospital",
		"city":          "Pune",
		"state":         "MH",
		"unitsNeeded":   2,
	}
}

func TestBloodRequestStoreFailure(t *testing.T) {
	h := newErrorHarness(t, "development", nil)

	rec := h.do(t, http.MethodPost, "/recipient/request", validBloodRequest(), "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	assert.JSONEq(t,
		`{"error":"Database Error","message":"Unable to process your request at this time"}`,
		rec.Body.String(),
	)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	// The request row is written before matching runs and stays.
	count, err := h.recipients.CountRecipients(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDonorListStoreFailure(t *testing.T) {
	h := newErrorHarness(t, "production", nil)

	user := &types.User{Username: "viewer", Email: "viewer@example.com"}
	require.NoError(t, h.users.CreateUser(context.Background(), user))
	token, err := h.tokens.Issue(user.ID)
	require.NoError(t, err)

	rec := h.do(t, http.MethodGet, "/donor/all", nil, token)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Database Error", body.Error)
	assert.Equal(t, "Unable to process your request at this time", body.Message)
}

func TestUnexpectedErrorDetail(t *testing.T) {
	tests := []struct {
		environment string
		message     string
	}{
		{environment: "production", message: "Something went wrong"},
		{environment: "development", message: "matcher exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			h := newErrorHarness(t, tt.environment, brokenSubmitter{err: errors.New("matcher exploded")})

			rec := h.do(t, http.MethodPost, "/recipient/request", validBloodRequest(), "")
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Internal Server Error", body.Error)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

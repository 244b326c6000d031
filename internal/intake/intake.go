// Package intake validates and normalizes blood requests, persists them and
// hands them to the matching engine.
package intake

import (
	"context"
	"strconv"
	"strings"

	"bloodlink/internal/metrics"
	"bloodlink/pkg/types"

	"github.com/sirupsen/logrus"
)

type RecipientCreator interface {
	CreateRecipient(ctx context.Context, req *types.RecipientRequest) error
}

type Matcher interface {
	FindMatches(ctx context.Context, group types.BloodGroup, city types.City) (*types.MatchResult, error)
}

type Service struct {
	recipients RecipientCreator
	matcher    Matcher
	logger     logrus.FieldLogger
	metrics    *metrics.Metrics
}

func New(recipients RecipientCreator, matcher Matcher, logger logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{
		recipients: recipients,
		matcher:    matcher,
		logger:     logger,
		metrics:    m,
	}
}

type Submission struct {
	Request *types.RecipientRequest
	Result  *types.MatchResult
}

// SubmitRequest validates input, stores exactly one recipient request and
// returns it together with the donor matches. userID is empty for anonymous
// submissions. The request stays stored even when matching fails afterwards.
func (s *Service) SubmitRequest(ctx context.Context, in types.BloodRequestInput, userID string) (*Submission, error) {
	req, err := Normalize(in, userID)
	if err != nil {
		s.metrics.IncBloodRequest(metrics.OutcomeInvalid)
		return nil, err
	}

	if err := s.recipients.CreateRecipient(ctx, req); err != nil {
		s.metrics.IncBloodRequest(metrics.OutcomeError)
		return nil, types.NewStoreError("create recipient request", err)
	}

	logger := s.logger.WithFields(logrus.Fields{
		"request_id":  req.ID,
		"blood_group": req.BloodGroup,
		"city":        req.City,
	})
	logger.Info("blood request saved")

	result, err := s.matcher.FindMatches(ctx, req.BloodGroup, req.City)
	if err != nil {
		s.metrics.IncBloodRequest(metrics.OutcomeError)
		logger.WithError(err).Error("matching failed after blood request was saved")
		return nil, types.NewStoreError("find matching donors", err)
	}

	if result.TotalMatches > 0 {
		s.metrics.IncBloodRequest(metrics.OutcomeMatched)
	} else {
		s.metrics.IncBloodRequest(metrics.OutcomeUnmatched)
	}

	logger.WithField("total_matches", result.TotalMatches).Info("blood request matched")

	return &Submission{Request: req, Result: result}, nil
}

// Normalize checks required fields, parses numeric fields and canonicalizes
// blood group and city. Status is always Pending.
func Normalize(in types.BloodRequestInput, userID string) (*types.RecipientRequest, error) {
	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"bloodGroup", in.BloodGroup},
		{"contactNumber", in.ContactNumber},
		{"city", in.City},
		{"state", in.State},
		{"hospital", in.Hospital},
		{"unitsNeeded", string(in.UnitsNeeded)},
	}

	missing := types.NewValidationError(types.MsgRequiredFields)
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing.Add(r.field, "is required")
		}
	}
	if missing.HasErrors() {
		return nil, missing
	}

	invalid := types.NewValidationError("Validation Error")

	group, err := types.ParseBloodGroup(in.BloodGroup)
	if err != nil {
		invalid.Add("bloodGroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}

	units, err := strconv.Atoi(strings.TrimSpace(string(in.UnitsNeeded)))
	if err != nil || units < 1 {
		invalid.Add("unitsNeeded", "must be a whole number of at least 1")
	}

	var age *int
	if raw := strings.TrimSpace(string(in.Age)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			invalid.Add("age", "must be a whole number")
		} else {
			age = &n
		}
	}

	urgency := types.Urgency(strings.TrimSpace(in.Urgency))
	if urgency != "" && !urgency.Valid() {
		invalid.Add("urgency", "must be one of Immediate, Within 24 hours, Within a week")
	}

	gender, ok := normalizeGender(in.Gender)
	if !ok {
		invalid.Add("gender", "must be one of Male, Female, Other")
	}

	if invalid.HasErrors() {
		return nil, invalid
	}

	req := &types.RecipientRequest{
		Name:          strings.TrimSpace(in.Name),
		Age:           age,
		Gender:        gender,
		BloodGroup:    group,
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		Hospital:      strings.TrimSpace(in.Hospital),
		City:          types.NewCity(in.City),
		State:         strings.TrimSpace(in.State),
		Reason:        strings.TrimSpace(in.Reason),
		UnitsNeeded:   units,
		Urgency:       urgency,
		Status:        types.RecipientStatusPending,
	}
	if userID != "" {
		req.UserID = &userID
	}

	return req, nil
}

// normalizeGender maps any casing of male, female or other to its
// capitalized form. Empty input is allowed.
func normalizeGender(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", true
	case "male":
		return "Male", true
	case "female":
		return "Female", true
	case "other":
		return "Other", true
	}
	return "", false
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"bloodlink/internal/intake"
	"bloodlink/pkg/types"
)

type recipientResponse struct {
	Recipient *types.RecipientRequest `json:"recipient"`
}

type recipientsResponse struct {
	Recipients []*types.RecipientRequest `json:"recipients"`
}

func (s *Service) handleBloodRequest(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var input types.BloodRequestInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	userID, err := s.requestUserID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	submission, err := s.intake.SubmitRequest(ctx, input, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, types.BloodRequestResponse{
		Success:     true,
		RequestID:   submission.Request.ID,
		MatchResult: *submission.Result,
	})
}

// requestUserID returns the id of the authenticated caller, or "" when the
// caller is anonymous or the token's subject no longer names a user.
func (s *Service) requestUserID(r *http.Request) (string, error) {
	var ctx = r.Context()

	userID, ok := s.userIDFromContext(ctx)
	if !ok {
		return "", nil
	}

	if _, err := s.users.User(ctx, userID); err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.logger.WithField("user_id", userID).Warn("token subject is not a known user, submitting anonymously")
			return "", nil
		}
		return "", storeFailure("fetch requesting user", err)
	}

	return userID, nil
}

func (s *Service) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := s.recipients.Recipients(r.Context())
	if err != nil {
		s.writeError(w, r, storeFailure("list recipients", err))
		return
	}

	s.writeJSON(w, http.StatusOK, recipientsResponse{Recipients: recipients})
}

func (s *Service) handleGetRecipient(w http.ResponseWriter, r *http.Request) {
	recipient, err := s.recipients.Recipient(r.Context(), pathParam(r, "recipientID"))
	if err != nil {
		s.writeError(w, r, storeFailure("fetch recipient", err))
		return
	}

	s.writeJSON(w, http.StatusOK, recipientResponse{Recipient: recipient})
}

// handleCreateRecipient records a request on someone's behalf without running
// the matching engine.
func (s *Service) handleCreateRecipient(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var input types.BloodRequestInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, _ := s.userFromContext(ctx)

	recipient, err := intake.Normalize(input, user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.recipients.CreateRecipient(ctx, recipient); err != nil {
		s.writeError(w, r, storeFailure("create recipient request", err))
		return
	}

	s.writeJSON(w, http.StatusCreated, recipientResponse{Recipient: recipient})
}

func (s *Service) handleUpdateRecipient(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	recipientID := pathParam(r, "recipientID")

	var input types.RecipientUpdate
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	recipient, err := s.recipients.Recipient(ctx, recipientID)
	if err != nil {
		s.writeError(w, r, storeFailure("fetch recipient", err))
		return
	}

	if err := applyRecipientUpdate(recipient, input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.recipients.UpdateRecipient(ctx, recipientID, recipient); err != nil {
		s.writeError(w, r, storeFailure("update recipient", err))
		return
	}

	s.writeJSON(w, http.StatusOK, recipientResponse{Recipient: recipient})
}

func (s *Service) handleDeleteRecipient(w http.ResponseWriter, r *http.Request) {
	if err := s.recipients.DeleteRecipient(r.Context(), pathParam(r, "recipientID")); err != nil {
		s.writeError(w, r, storeFailure("delete recipient", err))
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Recipient deleted successfully"})
}

func applyRecipientUpdate(rec *types.RecipientRequest, in types.RecipientUpdate) error {
	invalid := types.NewValidationError("Validation Error")

	setText := func(field string, dst *string, v *string) {
		if v == nil {
			return
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			invalid.Add(field, "cannot be empty")
			return
		}
		*dst = trimmed
	}

	setText("name", &rec.Name, in.Name)
	setText("contactNumber", &rec.ContactNumber, in.ContactNumber)
	setText("hospital", &rec.Hospital, in.Hospital)
	setText("state", &rec.State, in.State)

	if in.Reason != nil {
		rec.Reason = strings.TrimSpace(*in.Reason)
	}
	if in.City != nil {
		city := types.NewCity(*in.City)
		if city.Empty() {
			invalid.Add("city", "cannot be empty")
		} else {
			rec.City = city
		}
	}
	if in.BloodGroup != nil {
		group, err := types.ParseBloodGroup(*in.BloodGroup)
		if err != nil {
			invalid.Add("bloodGroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
		} else {
			rec.BloodGroup = group
		}
	}
	if in.UnitsNeeded != nil {
		if *in.UnitsNeeded < 1 {
			invalid.Add("unitsNeeded", "must be a whole number of at least 1")
		} else {
			rec.UnitsNeeded = *in.UnitsNeeded
		}
	}
	if in.Age != nil {
		if *in.Age < 0 {
			invalid.Add("age", "must be a whole number")
		} else {
			rec.Age = in.Age
		}
	}
	if in.Gender != nil {
		rec.Gender = strings.TrimSpace(*in.Gender)
	}
	if in.Urgency != nil {
		urgency := types.Urgency(strings.TrimSpace(*in.Urgency))
		if urgency != "" && !urgency.Valid() {
			invalid.Add("urgency", "must be one of Immediate, Within 24 hours, Within a week")
		} else {
			rec.Urgency = urgency
		}
	}
	if in.Status != nil {
		status := types.RecipientStatus(strings.TrimSpace(*in.Status))
		if !status.Valid() {
			invalid.Add("status", "must be one of Pending, Fulfilled, Cancelled")
		} else {
			rec.Status = status
		}
	}

	if invalid.HasErrors() {
		return invalid
	}
	return nil
}

package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"bloodlink/internal/utils"
	"bloodlink/pkg/types"
)

const (
	dateLayout = "2006-01-02"

	minDonorAge = 18
	maxDonorAge = 65
	minDonorBMI = 18.5
	maxDonorBMI = 35.0

	donationCoolingMonths = 3
)

// coolingPeriodError rejects a registration whose last donation is too recent.
type coolingPeriodError struct {
	NextEligible time.Time
}

func (e *coolingPeriodError) Error() string {
	return "You must wait at least 3 months between donations"
}

type donorResponse struct {
	Donor *types.Donor `json:"donor"`
}

type donorsResponse struct {
	Donors []*types.Donor `json:"donors"`
}

func (s *Service) handleRegisterDonor(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, _ := s.userFromContext(ctx)

	var input types.DonorRegistration
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	donor, err := newDonor(input, s.now(), true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	donor.UserID = &user.ID

	if err := s.createDonor(r, donor); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, donorResponse{Donor: donor})
}

func (s *Service) handleAdminCreateDonor(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var input types.DonorRegistration
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	donor, err := newDonor(input, s.now(), true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if userID := strings.TrimSpace(input.UserID); userID != "" {
		if _, err := s.users.User(ctx, userID); err != nil {
			s.writeError(w, r, storeFailure("fetch donor owner", err))
			return
		}
		donor.UserID = &userID
	}

	if err := s.createDonor(r, donor); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, donorResponse{Donor: donor})
}

// createDonor checks the email up front so the common duplicate case does
// not depend on the store's unique constraint.
func (s *Service) createDonor(r *http.Request, donor *types.Donor) error {
	var ctx = r.Context()

	_, err := s.donors.DonorByEmail(ctx, donor.Email)
	switch {
	case err == nil:
		return types.ErrDuplicateDonorEmail
	case !errors.Is(err, types.ErrDonorNotFound):
		return storeFailure("fetch donor by email", err)
	}

	if err := s.donors.CreateDonor(ctx, donor); err != nil {
		return storeFailure("create donor", err)
	}

	s.logger.WithField("donor_id", donor.ID).Info("donor registered")
	return nil
}

func (s *Service) handleListDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := s.donors.Donors(r.Context())
	if err != nil {
		s.writeError(w, r, storeFailure("list donors", err))
		return
	}

	s.writeJSON(w, http.StatusOK, donorsResponse{Donors: donors})
}

func (s *Service) handleDonorsByBloodGroup(w http.ResponseWriter, r *http.Request) {
	group, err := types.ParseBloodGroup(lastPathSegment(r))
	if err != nil {
		verr := types.NewValidationError("Invalid blood group")
		verr.Add("bloodGroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
		s.writeError(w, r, verr)
		return
	}

	donors, err := s.donors.AvailableDonorsByBloodGroup(r.Context(), group)
	if err != nil {
		s.writeError(w, r, storeFailure("list donors by blood group", err))
		return
	}

	s.writeJSON(w, http.StatusOK, donorsResponse{Donors: donors})
}

func (s *Service) handleDonorProfile(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, _ := s.userFromContext(ctx)

	donor, err := s.donors.DonorByUserID(ctx, user.ID)
	if err != nil {
		s.writeError(w, r, storeFailure("fetch donor profile", err))
		return
	}

	s.writeJSON(w, http.StatusOK, donorResponse{Donor: donor})
}

func (s *Service) handleDonorAvailability(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, _ := s.userFromContext(ctx)
	donorID := pathParam(r, "donorID")

	var input types.DonorAvailabilityUpdate
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if input.Availability == nil {
		verr := types.NewValidationError(types.MsgRequiredFields)
		verr.Add("availability", "is required")
		s.writeError(w, r, verr)
		return
	}

	donor, err := s.donors.Donor(ctx, donorID)
	if err != nil {
		s.writeError(w, r, storeFailure("fetch donor", err))
		return
	}
	if !donor.OwnedBy(user.ID) {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	// Going unavailable means the donor just gave blood.
	var lastDonation *time.Time
	if !*input.Availability {
		lastDonation = utils.TimePtr(s.now())
	}

	if err := s.donors.SetAvailability(ctx, donorID, *input.Availability, lastDonation); err != nil {
		s.writeError(w, r, storeFailure("set donor availability", err))
		return
	}

	donor.IsAvailable = *input.Availability
	if lastDonation != nil {
		donor.LastDonation = lastDonation
	}

	s.writeJSON(w, http.StatusOK, donorResponse{Donor: donor})
}

func (s *Service) handleUpdateDonor(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, _ := s.userFromContext(ctx)
	donorID := pathParam(r, "donorID")

	existing, err := s.donors.Donor(ctx, donorID)
	if err != nil {
		s.writeError(w, r, storeFailure("fetch donor", err))
		return
	}
	if !existing.OwnedBy(user.ID) && !user.IsAdmin {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	var input types.DonorRegistration
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	donor, err := newDonor(input, s.now(), false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	donor.UserID = existing.UserID
	donor.IsAvailable = existing.IsAvailable
	if donor.LastDonation == nil {
		donor.LastDonation = existing.LastDonation
	}

	if err := s.donors.UpdateDonor(ctx, donorID, donor); err != nil {
		s.writeError(w, r, storeFailure("update donor", err))
		return
	}

	s.writeJSON(w, http.StatusOK, donorResponse{Donor: donor})
}

func (s *Service) handleDeleteDonor(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, _ := s.userFromContext(ctx)
	donorID := pathParam(r, "donorID")

	existing, err := s.donors.Donor(ctx, donorID)
	if err != nil {
		s.writeError(w, r, storeFailure("fetch donor", err))
		return
	}
	if !existing.OwnedBy(user.ID) && !user.IsAdmin {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	if err := s.donors.DeleteDonor(ctx, donorID); err != nil {
		s.writeError(w, r, storeFailure("delete donor", err))
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Donor deleted successfully"})
}

// newDonor validates a registration against the donor eligibility rules and
// builds an available donor from it. enforceCooling rejects a last donation
// less than three months before now.
func newDonor(in types.DonorRegistration, now time.Time, enforceCooling bool) (*types.Donor, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	in.Country = strings.TrimSpace(in.Country)
	in.Address = strings.TrimSpace(in.Address)

	missing := types.NewValidationError(types.MsgRequiredFields)
	for field, present := range map[string]bool{
		"fullName":   in.FullName != "",
		"email":      in.Email != "",
		"phone":      in.Phone != "",
		"age":        in.Age != 0,
		"gender":     in.Gender != "",
		"bloodGroup": strings.TrimSpace(in.BloodGroup) != "",
		"height":     in.Height != 0,
		"weight":     in.Weight != 0,
		"city":       strings.TrimSpace(in.City) != "",
		"country":    in.Country != "",
		"address":    in.Address != "",
	} {
		if !present {
			missing.Add(field, "is required")
		}
	}
	if missing.HasErrors() {
		return nil, missing
	}

	invalid := types.NewValidationError("Validation Error")

	if _, err := mail.ParseAddress(in.Email); err != nil {
		invalid.Add("email", "Enter a valid email address")
	}
	if in.Age < minDonorAge || in.Age > maxDonorAge {
		invalid.Add("age", fmt.Sprintf("Age must be between %d and %d", minDonorAge, maxDonorAge))
	}
	switch types.Gender(in.Gender) {
	case types.GenderMale, types.GenderFemale, types.GenderOther:
	default:
		invalid.Add("gender", "must be one of male, female, other")
	}

	group, err := types.ParseBloodGroup(in.BloodGroup)
	if err != nil {
		invalid.Add("bloodGroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}

	if in.Height <= 0 || in.Weight <= 0 {
		invalid.Add("bmi", "Height and weight must be positive")
	} else if bmi := bodyMassIndex(in.Height, in.Weight); bmi < minDonorBMI || bmi > maxDonorBMI {
		invalid.Add("bmi", fmt.Sprintf("BMI must be between %.1f and %.0f, got %.1f", minDonorBMI, maxDonorBMI, bmi))
	}

	var lastDonation *time.Time
	if raw := strings.TrimSpace(in.LastDonation); raw != "" {
		parsed, err := parseDate(raw)
		switch {
		case err != nil:
			invalid.Add("lastDonation", "must be a date formatted as YYYY-MM-DD")
		case parsed.After(now):
			invalid.Add("lastDonation", "Last donation date cannot be in the future")
		default:
			lastDonation = &parsed
		}
	}

	if invalid.HasErrors() {
		return nil, invalid
	}

	if enforceCooling && lastDonation != nil {
		next := lastDonation.AddDate(0, donationCoolingMonths, 0)
		if next.After(now) {
			return nil, &coolingPeriodError{NextEligible: next}
		}
	}

	return &types.Donor{
		FullName:     in.FullName,
		Email:        strings.ToLower(in.Email),
		Phone:        in.Phone,
		Age:          in.Age,
		Gender:       in.Gender,
		BloodGroup:   group,
		City:         types.NewCity(in.City),
		State:        utils.NilIfEmpty(strings.TrimSpace(in.State)),
		Country:      in.Country,
		Address:      in.Address,
		LastDonation: lastDonation,
		IsAvailable:  true,
	}, nil
}

// bodyMassIndex takes height in centimetres and weight in kilograms.
func bodyMassIndex(heightCM, weightKG float64) float64 {
	meters := heightCM / 100
	return math.Round(weightKG/(meters*meters)*10) / 10
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

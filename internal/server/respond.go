package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"bloodlink/internal/auth"
	"bloodlink/pkg/types"

	"github.com/go-playground/form/v4"
)

type errorResponse struct {
	Error            string            `json:"error"`
	Message          string            `json:"message,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
	NextEligibleDate string            `json:"nextEligibleDate,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

// writeError maps err onto a status code and a JSON body. Store failures and
// unexpected errors are logged, and only development builds show the
// underlying message of an unexpected error.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *types.ValidationError
		cooling    *coolingPeriodError
		storeErr   *types.StoreError
	)

	switch {
	case errors.As(err, &cooling):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:            cooling.Error(),
			NextEligibleDate: cooling.NextEligible.Format(dateLayout),
		})
	case errors.As(err, &validation):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   validation.Message,
			Details: validation.Fields,
		})
	case errors.Is(err, types.ErrDonorNotFound),
		errors.Is(err, types.ErrRecipientNotFound),
		errors.Is(err, types.ErrUserNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not Found", Message: err.Error()})
	case errors.Is(err, types.ErrDuplicateDonorEmail),
		errors.Is(err, types.ErrUsernameTaken),
		errors.Is(err, types.ErrEmailTaken):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: "Conflict", Message: err.Error()})
	case errors.Is(err, types.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Message: "Invalid credentials"})
	case errors.Is(err, types.ErrForbidden):
		s.writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden", Message: "You are not allowed to modify this resource"})
	case errors.As(err, &storeErr):
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("store failure")
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   "Database Error",
			Message: "Unable to process your request at this time",
		})
	default:
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("unexpected error")

		message := "Something went wrong"
		if s.config.IsDevelopment() {
			message = err.Error()
		}
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error",
			Message: message,
		})
	}
}

// storeFailure passes domain sentinels through and wraps anything else as a
// StoreError for op.
func storeFailure(op string, err error) error {
	if err == nil {
		return nil
	}

	sentinels := []error{
		types.ErrDonorNotFound,
		types.ErrRecipientNotFound,
		types.ErrUserNotFound,
		types.ErrDuplicateDonorEmail,
		types.ErrUsernameTaken,
		types.ErrEmailTaken,
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return types.NewStoreError(op, err)
}

// decodeBody fills dst from a JSON body, or from an urlencoded or multipart
// form using the form struct tags.
func decodeBody(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		parse := r.ParseForm
		if mediaType == "multipart/form-data" {
			parse = func() error { return r.ParseMultipartForm(1 << 20) }
		}
		if err := parse(); err != nil {
			return types.NewValidationError("Invalid form payload")
		}
		if err := decoder.Decode(dst, r.Form); err != nil {
			return formDecodeError(err)
		}
		return nil
	default:
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return types.NewValidationError("Invalid JSON payload")
		}
		return nil
	}
}

func formDecodeError(err error) error {
	verr := types.NewValidationError("Invalid form payload")

	var fieldErrs form.DecodeErrors
	if errors.As(err, &fieldErrs) {
		for field, ferr := range fieldErrs {
			verr.Add(field, ferr.Error())
		}
	}
	return verr
}

// lastPathSegment decodes the final segment of the escaped request path.
// Unlike route params it keeps a literal "+", which blood groups need.
func lastPathSegment(r *http.Request) string {
	escaped := r.URL.EscapedPath()
	raw := escaped[strings.LastIndex(escaped, "/")+1:]
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func pathParam(r *http.Request, name string) string {
	raw := r.PathValue(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

package server

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"bloodlink/internal/auth"
	"bloodlink/pkg/types"
)

type authResponse struct {
	User  *types.User `json:"user"`
	Token string      `json:"token"`
}

type userResponse struct {
	User *types.User `json:"user"`
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var input types.SignupInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Admin accounts are only created through /admin/users.
	input.Admin = false

	user, err := newUser(input, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		s.writeError(w, r, storeFailure("create user", err))
		return
	}

	token, err := s.issueToken(w, user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user signed up")

	s.writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var input types.LoginInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	input.Identifier = strings.TrimSpace(input.Identifier)
	if input.Identifier == "" || input.Password == "" {
		verr := types.NewValidationError(types.MsgRequiredFields)
		if input.Identifier == "" {
			verr.Add("identifier", "is required")
		}
		if input.Password == "" {
			verr.Add("password", "is required")
		}
		s.writeError(w, r, verr)
		return
	}

	user, err := s.users.UserByIdentifier(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.writeError(w, r, types.ErrInvalidCredentials)
			return
		}
		s.writeError(w, r, storeFailure("fetch user by identifier", err))
		return
	}

	if err := auth.VerifyPassword(input.Password, user.PasswordHash); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.issueToken(w, user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")

	s.writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieAccessTokenName,
		Value:    "",
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := s.userFromContext(r.Context())
	s.writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (s *Service) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, _ := s.userFromContext(ctx)

	var input types.ProfileUpdate
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := applyProfileUpdate(user, input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.UpdateUser(ctx, user.ID, user); err != nil {
		s.writeError(w, r, storeFailure("update user", err))
		return
	}

	s.writeJSON(w, http.StatusOK, userResponse{User: user})
}

// issueToken signs a token for userID and stores it in the encrypted cookie.
func (s *Service) issueToken(w http.ResponseWriter, userID string) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", err
	}

	encrypted, err := s.cookie.Encode(cookieAccessTokenName, token)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieAccessTokenName,
		Value:    encrypted,
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.tokens.TTL().Seconds()),
		Path:     "/",
	})

	return token, nil
}

// newUser validates a signup and hashes the password. confirm requires the
// confirmation field to be present and equal.
func newUser(input types.SignupInput, confirm bool) (*types.User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	missing := types.NewValidationError(types.MsgRequiredFields)
	required := map[string]string{
		"fullname": input.FullName,
		"username": input.Username,
		"email":    input.Email,
		"password": input.Password,
	}
	if confirm {
		required["confirmPassword"] = input.ConfirmPassword
	}
	for field, value := range required {
		if value == "" {
			missing.Add(field, "is required")
		}
	}
	if missing.HasErrors() {
		return nil, missing
	}

	invalid := types.NewValidationError("Validation Error")
	if _, err := mail.ParseAddress(input.Email); err != nil {
		invalid.Add("email", "Enter a valid email address")
	}
	if confirm && input.Password != input.ConfirmPassword {
		invalid.Add("confirmPassword", "Passwords do not match")
	}
	if len(input.Password) < auth.MinPasswordLength {
		invalid.Add("password", "Password must be at least 6 characters long")
	}

	var group types.BloodGroup
	if strings.TrimSpace(input.BloodGroup) != "" {
		parsed, err := types.ParseBloodGroup(input.BloodGroup)
		if err != nil {
			invalid.Add("bloodgroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
		}
		group = parsed
	}
	if input.Age < 0 {
		invalid.Add("age", "must be a positive number")
	}
	if invalid.HasErrors() {
		return nil, invalid
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	return &types.User{
		FullName:     input.FullName,
		Username:     input.Username,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		Gender:       strings.TrimSpace(input.Gender),
		BloodGroup:   group,
		City:         types.NewCity(input.City),
		Phone:        strings.TrimSpace(input.Phone),
		Age:          input.Age,
		Address:      strings.TrimSpace(input.Address),
		IsAdmin:      input.Admin,
	}, nil
}

func applyProfileUpdate(user *types.User, in types.ProfileUpdate) error {
	invalid := types.NewValidationError("Validation Error")

	if in.FullName != nil {
		if v := strings.TrimSpace(*in.FullName); v != "" {
			user.FullName = v
		} else {
			invalid.Add("fullname", "cannot be empty")
		}
	}
	if in.Username != nil {
		if v := strings.TrimSpace(*in.Username); v != "" {
			user.Username = v
		} else {
			invalid.Add("username", "cannot be empty")
		}
	}
	if in.Email != nil {
		v := strings.TrimSpace(*in.Email)
		if _, err := mail.ParseAddress(v); err != nil {
			invalid.Add("email", "Enter a valid email address")
		} else {
			user.Email = strings.ToLower(v)
		}
	}
	if in.BloodGroup != nil {
		if strings.TrimSpace(*in.BloodGroup) == "" {
			user.BloodGroup = ""
		} else if group, err := types.ParseBloodGroup(*in.BloodGroup); err != nil {
			invalid.Add("bloodgroup", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
		} else {
			user.BloodGroup = group
		}
	}
	if in.Age != nil {
		if *in.Age < 0 {
			invalid.Add("age", "must be a positive number")
		} else {
			user.Age = *in.Age
		}
	}
	if in.Gender != nil {
		user.Gender = strings.TrimSpace(*in.Gender)
	}
	if in.City != nil {
		user.City = types.NewCity(*in.City)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		user.Address = strings.TrimSpace(*in.Address)
	}

	if invalid.HasErrors() {
		return invalid
	}
	return nil
}

package server

import (
	"net/http"

	"bloodlink/pkg/types"
)

type usersResponse struct {
	Users []*types.User `json:"users"`
}

type adminFlagInput struct {
	Admin *bool `form:"admin" json:"admin"`
}

func (s *Service) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.Users(r.Context())
	if err != nil {
		s.writeError(w, r, storeFailure("list users", err))
		return
	}

	s.writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

func (s *Service) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var input types.SignupInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := newUser(input, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		s.writeError(w, r, storeFailure("create user", err))
		return
	}

	s.logger.WithField("user_id", user.ID).WithField("admin", user.IsAdmin).Info("user created by admin")

	s.writeJSON(w, http.StatusCreated, userResponse{User: user})
}

func (s *Service) handleAdminSetAdmin(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	userID := pathParam(r, "userID")

	var input adminFlagInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if input.Admin == nil {
		verr := types.NewValidationError(types.MsgRequiredFields)
		verr.Add("admin", "is required")
		s.writeError(w, r, verr)
		return
	}

	if err := s.users.SetAdmin(ctx, userID, *input.Admin); err != nil {
		s.writeError(w, r, storeFailure("set admin flag", err))
		return
	}

	user, err := s.users.User(ctx, userID)
	if err != nil {
		s.writeError(w, r, storeFailure("fetch user", err))
		return
	}

	s.writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (s *Service) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	current, _ := s.userFromContext(ctx)
	userID := pathParam(r, "userID")

	if current.ID == userID {
		verr := types.NewValidationError("Validation Error")
		verr.Add("userID", "You cannot delete your own account")
		s.writeError(w, r, verr)
		return
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		s.writeError(w, r, storeFailure("delete user", err))
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"bloodlink/internal/intake"
	"bloodlink/internal/metrics"
	"bloodlink/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type DonorStore interface {
	Donor(ctx context.Context, donorID string) (*types.Donor, error)
	DonorByUserID(ctx context.Context, userID string) (*types.Donor, error)
	DonorByEmail(ctx context.Context, email string) (*types.Donor, error)
	Donors(ctx context.Context) ([]*types.Donor, error)
	AvailableDonorsByBloodGroup(ctx context.Context, group types.BloodGroup) ([]*types.Donor, error)
	CreateDonor(ctx context.Context, donor *types.Donor) error
	UpdateDonor(ctx context.Context, donorID string, donor *types.Donor) error
	SetAvailability(ctx context.Context, donorID string, available bool, lastDonation *time.Time) error
	DeleteDonor(ctx context.Context, donorID string) error
	CountDonors(ctx context.Context) (int64, error)
	CountCities(ctx context.Context) (int64, error)
}

type RecipientStore interface {
	CreateRecipient(ctx context.Context, req *types.RecipientRequest) error
	Recipient(ctx context.Context, recipientID string) (*types.RecipientRequest, error)
	Recipients(ctx context.Context) ([]*types.RecipientRequest, error)
	UpdateRecipient(ctx context.Context, recipientID string, req *types.RecipientRequest) error
	DeleteRecipient(ctx context.Context, recipientID string) error
	CountRecipients(ctx context.Context) (int64, error)
}

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UserByIdentifier(ctx context.Context, identifier string) (*types.User, error)
	Users(ctx context.Context) ([]*types.User, error)
	CreateUser(ctx context.Context, user *types.User) error
	UpdateUser(ctx context.Context, userID string, user *types.User) error
	SetAdmin(ctx context.Context, userID string, admin bool) error
	DeleteUser(ctx context.Context, userID string) error
}

type RequestSubmitter interface {
	SubmitRequest(ctx context.Context, in types.BloodRequestInput, userID string) (*intake.Submission, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(ctx context.Context, raw string) (string, error)
	TTL() time.Duration
}

type Service struct {
	logger  *logrus.Logger
	config  *types.Config
	metrics *metrics.Metrics

	donors     DonorStore
	recipients RecipientStore
	users      UserStore
	intake     RequestSubmitter

	tokens TokenIssuer
	cookie *securecookie.SecureCookie

	now func() time.Time

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	donors DonorStore,
	recipients RecipientStore,
	users UserStore,
	submitter RequestSubmitter,
	tokens TokenIssuer,
	m *metrics.Metrics,
) *Service {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if len(hashKey) == 0 || len(blockKey) == 0 {
		logger.Warn("cookie keys not configured, generating ephemeral keys")
		hashKey = securecookie.GenerateRandomKey(32)
		blockKey = securecookie.GenerateRandomKey(32)
	}

	cookie := securecookie.New(hashKey, blockKey)
	cookie.MaxAge(int(tokens.TTL().Seconds()))

	s := &Service{
		logger:  logger,
		config:  config,
		metrics: m,

		donors:     donors,
		recipients: recipients,
		users:      users,
		intake:     submitter,

		tokens: tokens,
		cookie: cookie,
		now:    time.Now,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	// These wrap the mux itself since flow only runs route middleware on
	// matched routes.
	s.server.Handler = s.CORS(s.StripTrailingSlash(mux))

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed mux, mainly for httptest.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)
	r.Use(s.Authenticate)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler(), http.MethodGet)
	r.HandleFunc("/stats", s.handleStats, http.MethodGet)

	r.HandleFunc("/auth/signup", s.handleSignup, http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout, http.MethodPost)

	// Anonymous submissions are allowed; Authenticate attaches the user when
	// a valid token is present.
	r.HandleFunc("/recipient/request", s.handleBloodRequest, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/auth/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/auth/profile", s.handleUpdateProfile, http.MethodPut)

		r.HandleFunc("/donor/register", s.handleRegisterDonor, http.MethodPost)
		r.HandleFunc("/donor/all", s.handleListDonors, http.MethodGet)
		r.HandleFunc("/donor/profile", s.handleDonorProfile, http.MethodGet)
		r.HandleFunc("/donor/bloodgroup/:bloodGroup", s.handleDonorsByBloodGroup, http.MethodGet)
		r.HandleFunc("/donor/availability/:donorID", s.handleDonorAvailability, http.MethodPatch)
		r.HandleFunc("/donor/:donorID", s.handleUpdateDonor, http.MethodPut)
		r.HandleFunc("/donor/:donorID", s.handleDeleteDonor, http.MethodDelete)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireAdmin)

			r.HandleFunc("/recipient/all", s.handleListRecipients, http.MethodGet)
			r.HandleFunc("/recipient/create", s.handleCreateRecipient, http.MethodPost)
			r.HandleFunc("/recipient/:recipientID", s.handleGetRecipient, http.MethodGet)
			r.HandleFunc("/recipient/:recipientID", s.handleUpdateRecipient, http.MethodPut)
			r.HandleFunc("/recipient/:recipientID", s.handleDeleteRecipient, http.MethodDelete)

			r.HandleFunc("/admin/users", s.handleAdminListUsers, http.MethodGet)
			r.HandleFunc("/admin/users", s.handleAdminCreateUser, http.MethodPost)
			r.HandleFunc("/admin/users/:userID", s.handleAdminSetAdmin, http.MethodPatch)
			r.HandleFunc("/admin/users/:userID", s.handleAdminDeleteUser, http.MethodDelete)
			r.HandleFunc("/admin/donors", s.handleAdminCreateDonor, http.MethodPost)
		})
	})
}

func (s *Service) userIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	return userID, ok && userID != ""
}

func (s *Service) userFromContext(ctx context.Context) (*types.User, bool) {
	user, ok := ctx.Value(contextKeyUser).(*types.User)
	return user, ok && user != nil
}

// Package memory holds map backed implementations of the donor, recipient and
// user repositories. They mirror the postgres repositories in internal/store
// and are used for local runs without a database and in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bloodlink/internal/utils"
	"bloodlink/pkg/types"
)

type DonorStore struct {
	mu     sync.RWMutex
	donors map[string]*types.Donor
	order  []string
}

func NewDonorStore() *DonorStore {
	return &DonorStore{donors: map[string]*types.Donor{}}
}

func (s *DonorStore) FindAvailable(_ context.Context, q types.DonorQuery) ([]*types.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[types.BloodGroup]struct{}, len(q.BloodGroups))
	for _, g := range q.BloodGroups {
		groups[g] = struct{}{}
	}

	out := make([]*types.Donor, 0)
	for _, id := range s.order {
		d := s.donors[id]
		if !d.IsAvailable {
			continue
		}
		if _, ok := groups[d.BloodGroup]; !ok {
			continue
		}
		if (d.City == q.City) == q.ExcludeCity {
			continue
		}
		out = append(out, copyDonor(d))
		if q.Limit > 0 && uint64(len(out)) >= q.Limit {
			break
		}
	}

	return out, nil
}

func (s *DonorStore) Donor(_ context.Context, donorID string) (*types.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.donors[donorID]
	if !ok {
		return nil, types.ErrDonorNotFound
	}
	return copyDonor(d), nil
}

func (s *DonorStore) DonorByUserID(_ context.Context, userID string) (*types.Donor, error) {
	return s.first(func(d *types.Donor) bool { return d.OwnedBy(userID) })
}

func (s *DonorStore) DonorByEmail(_ context.Context, email string) (*types.Donor, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.first(func(d *types.Donor) bool { return strings.ToLower(d.Email) == email })
}

func (s *DonorStore) first(match func(*types.Donor) bool) (*types.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if d := s.donors[id]; match(d) {
			return copyDonor(d), nil
		}
	}
	return nil, types.ErrDonorNotFound
}

func (s *DonorStore) Donors(_ context.Context) ([]*types.Donor, error) {
	return s.newestFirst(func(*types.Donor) bool { return true }), nil
}

func (s *DonorStore) AvailableDonorsByBloodGroup(_ context.Context, group types.BloodGroup) ([]*types.Donor, error) {
	return s.newestFirst(func(d *types.Donor) bool {
		return d.IsAvailable && d.BloodGroup == group
	}), nil
}

func (s *DonorStore) newestFirst(match func(*types.Donor) bool) []*types.Donor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Donor, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		if d := s.donors[s.order[i]]; match(d) {
			out = append(out, copyDonor(d))
		}
	}
	return out
}

func (s *DonorStore) CreateDonor(_ context.Context, donor *types.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.donors {
		if strings.EqualFold(d.Email, donor.Email) {
			return types.ErrDuplicateDonorEmail
		}
	}

	now := time.Now()
	if donor.ID == "" {
		donor.ID = utils.NanoID()
	}
	donor.CreatedAt = now
	donor.UpdatedAt = now

	s.donors[donor.ID] = copyDonor(donor)
	s.order = append(s.order, donor.ID)
	return nil
}

func (s *DonorStore) UpdateDonor(_ context.Context, donorID string, donor *types.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.donors[donorID]
	if !ok {
		return types.ErrDonorNotFound
	}
	for id, d := range s.donors {
		if id != donorID && strings.EqualFold(d.Email, donor.Email) {
			return types.ErrDuplicateDonorEmail
		}
	}

	donor.ID = donorID
	donor.CreatedAt = existing.CreatedAt
	donor.UpdatedAt = time.Now()
	s.donors[donorID] = copyDonor(donor)
	return nil
}

func (s *DonorStore) SetAvailability(_ context.Context, donorID string, available bool, lastDonation *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.donors[donorID]
	if !ok {
		return types.ErrDonorNotFound
	}
	d.IsAvailable = available
	if lastDonation != nil {
		t := *lastDonation
		d.LastDonation = &t
	}
	d.UpdatedAt = time.Now()
	return nil
}

func (s *DonorStore) DeleteDonor(_ context.Context, donorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.donors[donorID]; !ok {
		return types.ErrDonorNotFound
	}
	delete(s.donors, donorID)
	s.order = removeID(s.order, donorID)
	return nil
}

func (s *DonorStore) DeleteDonorsByEmailSuffix(_ context.Context, suffix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, d := range s.donors {
		if strings.HasSuffix(d.Email, suffix) {
			delete(s.donors, id)
			s.order = removeID(s.order, id)
			n++
		}
	}
	return n, nil
}

func (s *DonorStore) CountDonors(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.donors)), nil
}

func (s *DonorStore) CountCities(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cities := map[types.City]struct{}{}
	for _, d := range s.donors {
		cities[d.City] = struct{}{}
	}
	return int64(len(cities)), nil
}

type RecipientStore struct {
	mu         sync.RWMutex
	recipients map[string]*types.RecipientRequest
}

func NewRecipientStore() *RecipientStore {
	return &RecipientStore{recipients: map[string]*types.RecipientRequest{}}
}

func (s *RecipientStore) CreateRecipient(_ context.Context, req *types.RecipientRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if req.ID == "" {
		req.ID = utils.NanoID()
	}
	req.CreatedAt = now
	req.UpdatedAt = now

	c := *req
	s.recipients[req.ID] = &c
	return nil
}

func (s *RecipientStore) Recipient(_ context.Context, recipientID string) (*types.RecipientRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipients[recipientID]
	if !ok {
		return nil, types.ErrRecipientNotFound
	}
	c := *r
	return &c, nil
}

func (s *RecipientStore) Recipients(_ context.Context) ([]*types.RecipientRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.RecipientRequest, 0, len(s.recipients))
	for _, r := range s.recipients {
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *RecipientStore) UpdateRecipient(_ context.Context, recipientID string, req *types.RecipientRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.recipients[recipientID]
	if !ok {
		return types.ErrRecipientNotFound
	}

	req.ID = recipientID
	req.CreatedAt = existing.CreatedAt
	req.UpdatedAt = time.Now()
	c := *req
	s.recipients[recipientID] = &c
	return nil
}

func (s *RecipientStore) DeleteRecipient(_ context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipients[recipientID]; !ok {
		return types.ErrRecipientNotFound
	}
	delete(s.recipients, recipientID)
	return nil
}

func (s *RecipientStore) CountRecipients(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.recipients)), nil
}

type UserStore struct {
	mu    sync.RWMutex
	users map[string]*types.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: map[string]*types.User{}}
}

func (s *UserStore) User(_ context.Context, userID string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *UserStore) UserByIdentifier(_ context.Context, identifier string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identifier = strings.TrimSpace(identifier)
	for _, u := range s.users {
		if u.Username == identifier || strings.EqualFold(u.Email, identifier) {
			c := *u
			return &c, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (s *UserStore) Users(_ context.Context) ([]*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *UserStore) CreateUser(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conflict("", user); err != nil {
		return err
	}

	now := time.Now()
	if user.ID == "" {
		user.ID = utils.NanoID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *UserStore) UpdateUser(_ context.Context, userID string, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[userID]
	if !ok {
		return types.ErrUserNotFound
	}
	if err := s.conflict(userID, user); err != nil {
		return err
	}

	user.ID = userID
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	c := *user
	s.users[userID] = &c
	return nil
}

func (s *UserStore) SetAdmin(_ context.Context, userID string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return types.ErrUserNotFound
	}
	u.IsAdmin = admin
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return types.ErrUserNotFound
	}
	delete(s.users, userID)
	return nil
}

func (s *UserStore) conflict(selfID string, user *types.User) error {
	for id, u := range s.users {
		if id == selfID {
			continue
		}
		if u.Username == user.Username {
			return types.ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, user.Email) {
			return types.ErrEmailTaken
		}
	}
	return nil
}

func copyDonor(d *types.Donor) *types.Donor {
	c := *d
	if d.LastDonation != nil {
		t := *d.LastDonation
		c.LastDonation = &t
	}
	return &c
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

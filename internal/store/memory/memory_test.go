package memory

import (
	"context"
	"testing"
	"time"

	"bloodlink/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDonor(email string, group types.BloodGroup, city string, available bool) *types.Donor {
	return &types.Donor{
		FullName:    "Donor",
		Email:       email,
		BloodGroup:  group,
		City:        types.NewCity(city),
		IsAvailable: available,
	}
}

func TestDonorStoreFindAvailable(t *testing.T) {
	ctx := context.Background()
	s := NewDonorStore()

	first := newDonor("first@example.com", types.BloodGroupAPos, "pune", true)
	require.NoError(t, s.CreateDonor(ctx, first))
	require.NoError(t, s.CreateDonor(ctx, newDonor("resting@example.com", types.BloodGroupAPos, "pune", false)))
	second := newDonor("second@example.com", types.BloodGroupONeg, "pune", true)
	require.NoError(t, s.CreateDonor(ctx, second))
	away := newDonor("away@example.com", types.BloodGroupAPos, "delhi", true)
	require.NoError(t, s.CreateDonor(ctx, away))

	local, err := s.FindAvailable(ctx, types.DonorQuery{
		BloodGroups: []types.BloodGroup{types.BloodGroupAPos, types.BloodGroupONeg},
		City:        "pune",
	})
	require.NoError(t, err)
	require.Len(t, local, 2)
	assert.Equal(t, first.ID, local[0].ID)
	assert.Equal(t, second.ID, local[1].ID)

	other, err := s.FindAvailable(ctx, types.DonorQuery{
		BloodGroups: []types.BloodGroup{types.BloodGroupAPos},
		City:        "pune",
		ExcludeCity: true,
	})
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, away.ID, other[0].ID)

	limited, err := s.FindAvailable(ctx, types.DonorQuery{
		BloodGroups: []types.BloodGroup{types.BloodGroupAPos, types.BloodGroupONeg},
		City:        "pune",
		Limit:       1,
	})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := s.FindAvailable(ctx, types.DonorQuery{City: "pune"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDonorStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewDonorStore()

	d := newDonor("iso@example.com", types.BloodGroupBPos, "goa", true)
	require.NoError(t, s.CreateDonor(ctx, d))

	d.FullName = "mutated"
	got, err := s.Donor(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Donor", got.FullName)

	got.City = "elsewhere"
	again, err := s.Donor(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, types.City("goa"), again.City)
}

func TestDonorStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewDonorStore()

	d := newDonor("life@example.com", types.BloodGroupABPos, "goa", true)
	require.NoError(t, s.CreateDonor(ctx, d))
	assert.ErrorIs(t, s.CreateDonor(ctx, newDonor("LIFE@example.com", types.BloodGroupABPos, "goa", true)), types.ErrDuplicateDonorEmail)

	byEmail, err := s.DonorByEmail(ctx, " Life@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, d.ID, byEmail.ID)

	when := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetAvailability(ctx, d.ID, false, &when))
	got, err := s.Donor(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
	require.NotNil(t, got.LastDonation)
	assert.True(t, got.LastDonation.Equal(when))

	byGroup, err := s.AvailableDonorsByBloodGroup(ctx, types.BloodGroupABPos)
	require.NoError(t, err)
	assert.Empty(t, byGroup)

	require.NoError(t, s.DeleteDonor(ctx, d.ID))
	_, err = s.Donor(ctx, d.ID)
	assert.ErrorIs(t, err, types.ErrDonorNotFound)
	assert.ErrorIs(t, s.SetAvailability(ctx, d.ID, true, nil), types.ErrDonorNotFound)
}

func TestDonorStoreCountsAndReset(t *testing.T) {
	ctx := context.Background()
	s := NewDonorStore()

	require.NoError(t, s.CreateDonor(ctx, newDonor("a@example.com", types.BloodGroupAPos, "pune", true)))
	require.NoError(t, s.CreateDonor(ctx, newDonor("b@seed.test", types.BloodGroupAPos, "pune", true)))
	require.NoError(t, s.CreateDonor(ctx, newDonor("c@seed.test", types.BloodGroupAPos, "delhi", true)))

	cities, err := s.CountCities(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cities)

	removed, err := s.DeleteDonorsByEmailSuffix(ctx, "@seed.test")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	count, err := s.CountDonors(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	all, err := s.Donors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserStoreConflicts(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	u := &types.User{Username: "asha", Email: "asha@example.com"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotEmpty(t, u.ID)

	assert.ErrorIs(t, s.CreateUser(ctx, &types.User{Username: "asha", Email: "x@example.com"}), types.ErrUsernameTaken)
	assert.ErrorIs(t, s.CreateUser(ctx, &types.User{Username: "x", Email: "ASHA@example.com"}), types.ErrEmailTaken)

	got, err := s.UserByIdentifier(ctx, "Asha@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.FullName = "Asha K"
	require.NoError(t, s.UpdateUser(ctx, u.ID, got))

	require.NoError(t, s.SetAdmin(ctx, u.ID, true))
	got, err = s.User(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "Asha K", got.FullName)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.UserByIdentifier(ctx, "asha")
	assert.ErrorIs(t, err, types.ErrUserNotFound)
}

func TestRecipientStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewRecipientStore()

	req := &types.RecipientRequest{Name: "Ravi", BloodGroup: types.BloodGroupOPos, UnitsNeeded: 1, Status: types.RecipientStatusPending}
	require.NoError(t, s.CreateRecipient(ctx, req))

	req.Status = types.RecipientStatusCancelled
	got, err := s.Recipient(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RecipientStatusPending, got.Status)

	require.NoError(t, s.UpdateRecipient(ctx, req.ID, req))
	got, err = s.Recipient(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RecipientStatusCancelled, got.Status)

	count, err := s.CountRecipients(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, s.DeleteRecipient(ctx, req.ID))
	assert.ErrorIs(t, s.DeleteRecipient(ctx, req.ID), types.ErrRecipientNotFound)
}

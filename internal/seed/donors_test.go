package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"bloodlink/internal/store/memory"
	"bloodlink/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeDonorsAreValidAndDeterministic(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	first := FakeDonors(25, now)
	second := FakeDonors(25, now)
	require.Len(t, first, 25)
	assert.Equal(t, first, second)

	emails := map[string]struct{}{}
	for _, d := range first {
		assert.True(t, d.BloodGroup.Valid(), d.BloodGroup)
		assert.GreaterOrEqual(t, d.Age, 18)
		assert.LessOrEqual(t, d.Age, 65)
		assert.Equal(t, strings.ToLower(d.City.String()), d.City.String())
		assert.True(t, strings.HasSuffix(d.Email, EmailDomain))
		if d.LastDonation != nil {
			assert.True(t, d.LastDonation.Before(now))
		}
		emails[d.Email] = struct{}{}
	}
	assert.Len(t, emails, 25)
}

func TestSeedDonorsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewDonorStore()

	require.NoError(t, repo.CreateDonor(ctx, &types.Donor{
		FullName:   "Real Donor",
		Email:      "real@example.com",
		BloodGroup: types.BloodGroupAPos,
		City:       types.NewCity("pune"),
	}))

	created, err := SeedDonors(ctx, repo, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, created)

	created, err = SeedDonors(ctx, repo, 10)
	require.NoError(t, err)
	assert.Zero(t, created)

	total, err := repo.CountDonors(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 11, total)

	removed, err := Reset(ctx, repo)
	require.NoError(t, err)
	assert.EqualValues(t, 10, removed)

	total, err = repo.CountDonors(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

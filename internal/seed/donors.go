package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"bloodlink/internal/utils"
	"bloodlink/pkg/types"
)

// EmailDomain marks every seeded donor so Reset can find them again.
const EmailDomain = "@seed.bloodlink.test"

const DefaultDonorCount = 40

type DonorRepository interface {
	DonorByEmail(ctx context.Context, email string) (*types.Donor, error)
	CreateDonor(ctx context.Context, donor *types.Donor) error
	DeleteDonorsByEmailSuffix(ctx context.Context, suffix string) (int64, error)
}

var firstNames = []string{
	"Aarav", "Diya", "Vihaan", "Ananya", "Arjun", "Isha", "Kabir", "Meera",
	"Rohan", "Saanvi", "Aditya", "Kavya", "Nikhil", "Priya", "Rahul", "Tara",
}

var lastNames = []string{
	"Sharma", "Patel", "Reddy", "Iyer", "Khan", "Singh", "Das", "Nair", "Mehta", "Gupta",
}

type seedCity struct {
	Name  string
	State string
}

var cities = []seedCity{
	{Name: "Mumbai", State: "Maharashtra"},
	{Name: "Pune", State: "Maharashtra"},
	{Name: "Delhi", State: "Delhi"},
	{Name: "Bengaluru", State: "Karnataka"},
	{Name: "Chennai", State: "Tamil Nadu"},
	{Name: "Hyderabad", State: "Telangana"},
	{Name: "Kolkata", State: "West Bengal"},
}

var genders = []types.Gender{types.GenderMale, types.GenderFemale, types.GenderOther}

type weightedGroup struct {
	Group  types.BloodGroup
	Weight int
}

// Roughly follows how common each group is.
var weightedGroups = []weightedGroup{
	{Group: types.BloodGroupOPos, Weight: 35},
	{Group: types.BloodGroupBPos, Weight: 25},
	{Group: types.BloodGroupAPos, Weight: 20},
	{Group: types.BloodGroupABPos, Weight: 8},
	{Group: types.BloodGroupONeg, Weight: 4},
	{Group: types.BloodGroupBNeg, Weight: 3},
	{Group: types.BloodGroupANeg, Weight: 3},
	{Group: types.BloodGroupABNeg, Weight: 2},
}

// FakeDonors builds count deterministic demo donors. The same count always
// yields the same donors, so seeding twice is a no-op.
func FakeDonors(count int, now time.Time) []*types.Donor {
	rng := rand.New(rand.NewSource(int64(count)))

	donors := make([]*types.Donor, 0, count)
	for i := 0; i < count; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]
		city := cities[i%len(cities)]

		donor := &types.Donor{
			FullName:    first + " " + last,
			Email:       fmt.Sprintf("%s.%s+%d%s", strings.ToLower(first), strings.ToLower(last), i+1, EmailDomain),
			Phone:       fmt.Sprintf("+91 98%08d", 10000000+i*7919%90000000),
			Age:         18 + rng.Intn(48),
			Gender:      string(genders[rng.Intn(len(genders))]),
			BloodGroup:  pickGroup(rng),
			City:        types.NewCity(city.Name),
			State:       utils.StringPtr(city.State),
			Country:     "India",
			Address:     fmt.Sprintf("%d %s Road", 10+rng.Intn(400), last),
			IsAvailable: rng.Intn(100) < 80,
		}

		if rng.Intn(2) == 0 {
			donor.LastDonation = utils.TimePtr(now.AddDate(0, -(1 + rng.Intn(12)), 0).Truncate(24 * time.Hour))
		}

		donors = append(donors, donor)
	}

	return donors
}

func pickGroup(rng *rand.Rand) types.BloodGroup {
	total := 0
	for _, g := range weightedGroups {
		total += g.Weight
	}

	n := rng.Intn(total)
	for _, g := range weightedGroups {
		if n < g.Weight {
			return g.Group
		}
		n -= g.Weight
	}
	return weightedGroups[0].Group
}

// SeedDonors inserts the demo donors that do not exist yet and returns how
// many were created.
func SeedDonors(ctx context.Context, repo DonorRepository, count int) (int, error) {
	seeded := 0
	for _, donor := range FakeDonors(count, time.Now()) {
		_, err := repo.DonorByEmail(ctx, donor.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrDonorNotFound) {
			return seeded, fmt.Errorf("failed to fetch fake donor %s: %w", donor.Email, err)
		}

		if err := repo.CreateDonor(ctx, donor); err != nil {
			return seeded, fmt.Errorf("failed to create fake donor %s: %w", donor.Email, err)
		}
		seeded++
	}

	return seeded, nil
}

// Reset removes every seeded donor.
func Reset(ctx context.Context, repo DonorRepository) (int64, error) {
	removed, err := repo.DeleteDonorsByEmailSuffix(ctx, EmailDomain)
	if err != nil {
		return 0, fmt.Errorf("failed to remove seeded donors: %w", err)
	}
	return removed, nil
}

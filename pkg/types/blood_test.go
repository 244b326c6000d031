package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatibleDonorsTable(t *testing.T) {
	tests := map[BloodGroup][]BloodGroup{
		BloodGroupAPos:  {BloodGroupAPos, BloodGroupANeg, BloodGroupOPos, BloodGroupONeg},
		BloodGroupANeg:  {BloodGroupANeg, BloodGroupONeg},
		BloodGroupBPos:  {BloodGroupBPos, BloodGroupBNeg, BloodGroupOPos, BloodGroupONeg},
		BloodGroupBNeg:  {BloodGroupBNeg, BloodGroupONeg},
		BloodGroupABPos: AllBloodGroups,
		BloodGroupABNeg: {BloodGroupANeg, BloodGroupBNeg, BloodGroupABNeg, BloodGroupONeg},
		BloodGroupOPos:  {BloodGroupOPos, BloodGroupONeg},
		BloodGroupONeg:  {BloodGroupONeg},
	}

	for recipient, want := range tests {
		t.Run(string(recipient), func(t *testing.T) {
			assert.ElementsMatch(t, want, recipient.CompatibleDonors())
		})
	}
}

func TestCompatibleDonorsProperties(t *testing.T) {
	for _, g := range AllBloodGroups {
		donors := g.CompatibleDonors()
		assert.Containsf(t, donors, g, "%s must be self compatible", g)

		if strings.HasSuffix(string(g), "-") {
			positive := BloodGroup(strings.TrimSuffix(string(g), "-") + "+")
			assert.NotContainsf(t, donors, positive, "%s must not receive from %s", g, positive)
			for _, d := range donors {
				assert.Truef(t, strings.HasSuffix(string(d), "-"), "%s must only receive Rh negative blood, got %s", g, d)
			}
		}
	}
}

func TestCompatibleDonorsNormalizesInput(t *testing.T) {
	assert.ElementsMatch(t, []BloodGroup{BloodGroupABNeg, BloodGroupANeg, BloodGroupBNeg, BloodGroupONeg}, CompatibleDonors(" ab- "))
	assert.Empty(t, CompatibleDonors("C+"))
	assert.Empty(t, CompatibleDonors(""))
}

func TestCompatibleDonorsReturnsCopy(t *testing.T) {
	donors := BloodGroupONeg.CompatibleDonors()
	donors[0] = BloodGroupAPos
	assert.Equal(t, []BloodGroup{BloodGroupONeg}, BloodGroupONeg.CompatibleDonors())
}

func TestParseBloodGroup(t *testing.T) {
	g, err := ParseBloodGroup("  o- ")
	require.NoError(t, err)
	assert.Equal(t, BloodGroupONeg, g)

	_, err = ParseBloodGroup("O")
	assert.ErrorIs(t, err, ErrInvalidBloodGroup)

	_, err = ParseBloodGroup("")
	assert.ErrorIs(t, err, ErrInvalidBloodGroup)
}

func TestNewCity(t *testing.T) {
	assert.Equal(t, City("metropolis"), NewCity("  MetroPolis\t"))
	assert.True(t, NewCity("   ").Empty())
	assert.Equal(t, NewCity("Metropolis"), NewCity("metropolis"))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("bad input")
	assert.False(t, err.HasErrors())
	assert.Equal(t, "bad input", err.Error())

	err.Add("unitsNeeded", "must be at least 1")
	err.Add("bloodGroup", "unknown")
	assert.True(t, err.HasErrors())
	assert.Equal(t, "bad input (bloodGroup: unknown; unitsNeeded: must be at least 1)", err.Error())
}

func TestMatchTypePriority(t *testing.T) {
	assert.Equal(t, 1, MatchTypeExactSameCity.Priority())
	assert.Equal(t, 2, MatchTypeCompatibleSameCity.Priority())
	assert.Equal(t, 3, MatchTypeExactOtherCity.Priority())
}

package types

import (
	"fmt"
	"strings"
)

type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

var AllBloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
	BloodGroupOPos, BloodGroupONeg,
}

// compatibleDonorGroups maps a recipient group to the donor groups that can
// safely give to it.
var compatibleDonorGroups = map[BloodGroup][]BloodGroup{
	BloodGroupAPos:  {BloodGroupAPos, BloodGroupANeg, BloodGroupOPos, BloodGroupONeg},
	BloodGroupANeg:  {BloodGroupANeg, BloodGroupONeg},
	BloodGroupBPos:  {BloodGroupBPos, BloodGroupBNeg, BloodGroupOPos, BloodGroupONeg},
	BloodGroupBNeg:  {BloodGroupBNeg, BloodGroupONeg},
	BloodGroupABPos: {BloodGroupAPos, BloodGroupANeg, BloodGroupBPos, BloodGroupBNeg, BloodGroupABPos, BloodGroupABNeg, BloodGroupOPos, BloodGroupONeg},
	BloodGroupABNeg: {BloodGroupANeg, BloodGroupBNeg, BloodGroupABNeg, BloodGroupONeg},
	BloodGroupOPos:  {BloodGroupOPos, BloodGroupONeg},
	BloodGroupONeg:  {BloodGroupONeg},
}

func normalizeBloodGroup(raw string) BloodGroup {
	return BloodGroup(strings.ToUpper(strings.TrimSpace(raw)))
}

// ParseBloodGroup trims and uppercases raw and checks it against the closed set.
func ParseBloodGroup(raw string) (BloodGroup, error) {
	group := normalizeBloodGroup(raw)
	if !group.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidBloodGroup, raw)
	}
	return group, nil
}

func (g BloodGroup) Valid() bool {
	_, ok := compatibleDonorGroups[g]
	return ok
}

func (g BloodGroup) String() string {
	return string(g)
}

// CompatibleDonors returns the donor groups that can give to a recipient of
// this group. Unknown groups have no compatible donors.
func (g BloodGroup) CompatibleDonors() []BloodGroup {
	groups := compatibleDonorGroups[normalizeBloodGroup(string(g))]
	out := make([]BloodGroup, len(groups))
	copy(out, groups)
	return out
}

// CompatibleDonors normalizes raw before looking it up. An unrecognised group
// yields an empty slice rather than an error.
func CompatibleDonors(raw string) []BloodGroup {
	return normalizeBloodGroup(raw).CompatibleDonors()
}

// City is always stored and compared in its trimmed, lowercase form.
type City string

func NewCity(raw string) City {
	return City(strings.ToLower(strings.TrimSpace(raw)))
}

func (c City) String() string {
	return string(c)
}

func (c City) Empty() bool {
	return c == ""
}

package types

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Donor struct {
	ID           string     `db:"id" json:"id"`
	UserID       *string    `db:"user_id" json:"userId"`
	FullName     string     `db:"full_name" json:"fullName"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"contactNumber"`
	Age          int        `db:"age" json:"age"`
	Gender       string     `db:"gender" json:"gender"`
	BloodGroup   BloodGroup `db:"blood_group" json:"bloodGroup"`
	City         City       `db:"city" json:"city"`
	State        *string    `db:"state" json:"state,omitempty"`
	Country      string     `db:"country" json:"country"`
	Address      string     `db:"address" json:"address"`
	LastDonation *time.Time `db:"last_donation" json:"lastDonation"`
	IsAvailable  bool       `db:"is_available" json:"isAvailable"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// OwnedBy reports whether userID created this donor profile.
func (d *Donor) OwnedBy(userID string) bool {
	return d.UserID != nil && *d.UserID == userID
}

// DonorRegistration is the input for creating or replacing a donor profile.
type DonorRegistration struct {
	FullName     string  `form:"fullName" json:"fullName"`
	Email        string  `form:"email" json:"email"`
	Phone        string  `form:"phone" json:"phone"`
	Age          int     `form:"age" json:"age"`
	Gender       string  `form:"gender" json:"gender"`
	BloodGroup   string  `form:"bloodGroup" json:"bloodGroup"`
	Height       float64 `form:"height" json:"height"`
	Weight       float64 `form:"weight" json:"weight"`
	City         string  `form:"city" json:"city"`
	State        string  `form:"state" json:"state"`
	Country      string  `form:"country" json:"country"`
	Address      string  `form:"address" json:"address"`
	LastDonation string  `form:"lastDonation" json:"lastDonation"`
	UserID       string  `form:"userId" json:"userId"`
}

type DonorAvailabilityUpdate struct {
	Availability *bool `json:"availability"`
}

// DonorQuery selects available donors. BloodGroups matches any of the listed
// groups. When ExcludeCity is set the City predicate is negated. Limit of 0
// means unbounded.
type DonorQuery struct {
	BloodGroups []BloodGroup
	City        City
	ExcludeCity bool
	Limit       uint64
}

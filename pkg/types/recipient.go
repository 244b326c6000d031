package types

import (
	"bytes"
	"encoding/json"
	"time"
)

type RecipientStatus string

const (
	RecipientStatusPending   RecipientStatus = "Pending"
	RecipientStatusFulfilled RecipientStatus = "Fulfilled"
	RecipientStatusCancelled RecipientStatus = "Cancelled"
)

func (s RecipientStatus) Valid() bool {
	switch s {
	case RecipientStatusPending, RecipientStatusFulfilled, RecipientStatusCancelled:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyImmediate     Urgency = "Immediate"
	UrgencyWithin24Hours Urgency = "Within 24 hours"
	UrgencyWithinAWeek   Urgency = "Within a week"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyImmediate, UrgencyWithin24Hours, UrgencyWithinAWeek:
		return true
	}
	return false
}

type RecipientRequest struct {
	ID            string          `db:"id" json:"id"`
	UserID        *string         `db:"user_id" json:"userId"`
	Name          string          `db:"name" json:"name"`
	Age           *int            `db:"age" json:"age"`
	Gender        string          `db:"gender" json:"gender"`
	BloodGroup    BloodGroup      `db:"blood_group" json:"bloodGroup"`
	ContactNumber string          `db:"contact_number" json:"contactNumber"`
	Hospital      string          `db:"hospital" json:"hospital"`
	City          City            `db:"city" json:"city"`
	State         string          `db:"state" json:"state"`
	Reason        string          `db:"reason" json:"reason"`
	UnitsNeeded   int             `db:"units_needed" json:"unitsNeeded"`
	Urgency       Urgency         `db:"urgency" json:"urgency"`
	Status        RecipientStatus `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// BloodRequestInput is the raw, unnormalized blood request as submitted.
// Numeric fields arrive as strings from forms and are parsed during intake.
type BloodRequestInput struct {
	Name          string        `form:"name" json:"name"`
	Age           NumericString `form:"age" json:"age"`
	Gender        string        `form:"gender" json:"gender"`
	BloodGroup    string        `form:"bloodGroup" json:"bloodGroup"`
	ContactNumber string        `form:"contactNumber" json:"contactNumber"`
	Hospital      string        `form:"hospital" json:"hospital"`
	City          string        `form:"city" json:"city"`
	State         string        `form:"state" json:"state"`
	Reason        string        `form:"reason" json:"reason"`
	UnitsNeeded   NumericString `form:"unitsNeeded" json:"unitsNeeded"`
	Urgency       string        `form:"urgency" json:"urgency"`
}

// RecipientUpdate carries the admin editable fields of a recipient request.
// Nil fields are left untouched.
type RecipientUpdate struct {
	Name          *string `json:"name"`
	Age           *int    `json:"age"`
	Gender        *string `json:"gender"`
	BloodGroup    *string `json:"bloodGroup"`
	ContactNumber *string `json:"contactNumber"`
	Hospital      *string `json:"hospital"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	Reason        *string `json:"reason"`
	UnitsNeeded   *int    `json:"unitsNeeded"`
	Urgency       *string `json:"urgency"`
	Status        *string `json:"status"`
}

// NumericString holds a number that may arrive either as a JSON number or as a
// string. Parsing is left to the caller.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumericString(num.String())
	return nil
}

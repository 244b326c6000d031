package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericStringAcceptsNumbersAndStrings(t *testing.T) {
	var in BloodRequestInput
	require.NoError(t, json.Unmarshal([]byte(`{"age": 42, "unitsNeeded": "3"}`), &in))
	assert.Equal(t, NumericString("42"), in.Age)
	assert.Equal(t, NumericString("3"), in.UnitsNeeded)

	in = BloodRequestInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"age": null, "unitsNeeded": 1.5}`), &in))
	assert.Equal(t, NumericString(""), in.Age)
	assert.Equal(t, NumericString("1.5"), in.UnitsNeeded)

	assert.Error(t, json.Unmarshal([]byte(`{"age": true}`), &in))
}

func TestRecipientStatusValid(t *testing.T) {
	assert.True(t, RecipientStatusPending.Valid())
	assert.True(t, RecipientStatusFulfilled.Valid())
	assert.True(t, RecipientStatusCancelled.Valid())
	assert.False(t, RecipientStatus("pending").Valid())
	assert.False(t, RecipientStatus("").Valid())
}

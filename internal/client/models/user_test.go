package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexID_UnmarshalAcceptsStringAndNumber(t *testing.T) {
	var u UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"name":"A","email":"a@b.co"}`), &u))
	assert.Equal(t, FlexID("42"), u.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc","name":"A","email":"a@b.co"}`), &u))
	assert.Equal(t, FlexID("abc"), u.ID)
}

func TestFlexID_MarshalNumericAsNumber(t *testing.T) {
	raw, err := json.Marshal(FlexID("42"))
	require.NoError(t, err)
	assert.Equal(t, "42", string(raw))
}

func TestFlexID_MarshalNonCanonicalNumericAsString(t *testing.T) {
	// "007" parses as 7 but raw bytes would be invalid JSON; it must be
	// emitted quoted, and the profile containing it must stay marshalable.
	raw, err := json.Marshal(FlexID("007"))
	require.NoError(t, err)
	assert.Equal(t, `"007"`, string(raw))

	u := UserProfile{ID: "007", Name: "Bond", Email: "b@mi6.gov.uk"}
	blob, err := json.Marshal(&u)
	require.NoError(t, err)

	var back UserProfile
	require.NoError(t, json.Unmarshal(blob, &back))
	assert.Equal(t, FlexID("007"), back.ID)
}

func TestFlexID_MarshalStringAsString(t *testing.T) {
	raw, err := json.Marshal(FlexID("user-1"))
	require.NoError(t, err)
	assert.Equal(t, `"user-1"`, string(raw))
}

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotPayload struct {
	Start string `json:"start_time" validate:"required,clock"`
	Weeks []int  `json:"weeks" validate:"omitempty,weeks"`
}

func TestClockAndWeeks(t *testing.T) {
	v := New(15)

	require.NoError(t, v.Struct(slotPayload{Start: "09:00", Weeks: []int{1, 2, 15}}))
	require.NoError(t, v.Struct(slotPayload{Start: "14:30:00"}))

	err := v.Struct(slotPayload{Start: "9h", Weeks: []int{0, 16}})
	require.Error(t, err)

	fields := TranslateErrors(err)
	assert.Equal(t, "start_time must be a time in HH:MM format", fields["start_time"])
	assert.Equal(t, "weeks must only contain weeks between 1 and 15", fields["weeks"])
}

func TestWeeksRejectsDuplicates(t *testing.T) {
	v := New(15)
	assert.Error(t, v.Struct(slotPayload{Start: "10:00", Weeks: []int{3, 3}}))
}

func TestTranslateNonValidationError(t *testing.T) {
	fields := TranslateErrors(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), fields["detail"])
}

package services

import (
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCheckInInputRules(t *testing.T) {
	tests := []struct {
		name  string
		input CheckInInput
		field string
	}{
		{
			name:  "under minimum hours",
			input: CheckInInput{HoursWorked: 2.9, WhatShipped: "x", Committed: true},
			field: CheckInFieldHours,
		},
		{
			name:  "over a full day",
			input: CheckInInput{HoursWorked: 24.5, WhatShipped: "x", Committed: true},
			field: CheckInFieldHours,
		},
		{
			name:  "hours not a number",
			input: CheckInInput{HoursWorked: math.NaN(), WhatShipped: "x", Committed: true},
			field: CheckInFieldHours,
		},
		{
			name:  "infinite hours",
			input: CheckInInput{HoursWorked: math.Inf(1), WhatShipped: "x", Committed: true},
			field: CheckInFieldHours,
		},
		{
			name:  "blank shipped text",
			input: CheckInInput{HoursWorked: 4, WhatShipped: "  \n\t ", Committed: true},
			field: CheckInFieldShipped,
		},
		{
			name:  "deployed alone",
			input: CheckInInput{HoursWorked: 4, WhatShipped: "release", Deployed: true},
			field: CheckInFieldActivities,
		},
		{
			name:  "no activity",
			input: CheckInInput{HoursWorked: 4, WhatShipped: "release"},
			field: CheckInFieldActivities,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := NormalizeCheckInInput(testCase.input)
			require.ErrorIs(t, err, ErrValidation)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, testCase.field, validationErr.Field)
		})
	}
}

func TestNormalizeCheckInInputAcceptsMinimum(t *testing.T) {
	normalized, err := NormalizeCheckInInput(CheckInInput{HoursWorked: 3, WhatShipped: " x ", Committed: true})
	require.NoError(t, err)
	assert.Equal(t, "x", normalized.WhatShipped)

	for _, input := range []CheckInInput{
		{HoursWorked: 3, WhatShipped: "x", Learned: true},
		{HoursWorked: 3, WhatShipped: "x", WroteCode: true, Deployed: true},
	} {
		_, err := NormalizeCheckInInput(input)
		assert.NoError(t, err)
	}
}

func TestNormalizeCheckInInputShippedTextLimit(t *testing.T) {
	for _, unit := range []string{"a", "é", "日"} {
		t.Run(unit, func(t *testing.T) {
			atLimit := strings.Repeat(unit, MaxShippedTextLength)
			normalized, err := NormalizeCheckInInput(CheckInInput{HoursWorked: 6, WhatShipped: atLimit, Learned: true})
			require.NoError(t, err)
			assert.Equal(t, atLimit, normalized.WhatShipped)
			assert.True(t, utf8.ValidString(normalized.WhatShipped))

			_, err = NormalizeCheckInInput(CheckInInput{HoursWorked: 6, WhatShipped: atLimit + unit, Learned: true})
			require.ErrorIs(t, err, ErrValidation)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, CheckInFieldShipped, validationErr.Field)
		})
	}
}

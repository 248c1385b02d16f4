package services

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	MinCheckInHours        = 3.0
	MaxCheckInHours        = 24.0
	MaxShippedTextLength   = 2000
	CheckInFieldHours      = "hours_worked"
	CheckInFieldShipped    = "what_shipped"
	CheckInFieldActivities = "activities"
)

type CheckInInput struct {
	HoursWorked float64
	WhatShipped string
	Learned     bool
	WroteCode   bool
	Committed   bool
	Deployed    bool
}

// NormalizeCheckInInput enforces the check-in rules in order: enough hours,
// something shipped, and at least one of learned, wrote_code or committed.
// Deploying alone does not qualify. Shipped text longer than
// MaxShippedTextLength characters is rejected, never cut.
func NormalizeCheckInInput(input CheckInInput) (CheckInInput, error) {
	if math.IsNaN(input.HoursWorked) || math.IsInf(input.HoursWorked, 0) {
		return input, invalid(CheckInFieldHours, "not a number")
	}
	if input.HoursWorked < MinCheckInHours {
		return input, invalid(CheckInFieldHours, "at least 3 hours required")
	}
	if input.HoursWorked > MaxCheckInHours {
		return input, invalid(CheckInFieldHours, "more than 24 hours")
	}

	input.WhatShipped = strings.TrimSpace(input.WhatShipped)
	if input.WhatShipped == "" {
		return input, invalid(CheckInFieldShipped, "required")
	}
	if utf8.RuneCountInString(input.WhatShipped) > MaxShippedTextLength {
		return input, invalid(CheckInFieldShipped, "too long")
	}

	if !input.Learned && !input.WroteCode && !input.Committed {
		return input, invalid(CheckInFieldActivities, "learned, wrote_code or committed required")
	}
	return input, nil
}

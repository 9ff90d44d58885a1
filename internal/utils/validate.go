package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRe       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	displayNameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires at least 8 characters with at least one uppercase
// letter, one lowercase letter and one digit.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

// IsValidDisplayName allows 3-20 characters: letters, numbers, underscores.
func IsValidDisplayName(name string) bool {
	return displayNameRe.MatchString(name)
}

// IsUcfEmail reports whether the address grants the UCF trust badge.
func IsUcfEmail(email string) bool {
	e := strings.ToLower(email)
	return strings.HasSuffix(e, "@ucf.edu") || strings.HasSuffix(e, "@knights.ucf.edu")
}

// ParsePrice coerces a price field that clients send either as a JSON number
// or a string. Non-numeric and negative values are rejected.
func ParsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("price must be a number")
	}
	// ParseFloat accepts "NaN" and "Inf", which JSON cannot encode
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price must be a number")
	}
	if v < 0 {
		return 0, fmt.Errorf("price must not be negative")
	}
	return v, nil
}

package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDays parses a plan length argument. An empty argument yields 0 so the service default applies.
func ParseDays(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(arg)
	if err != nil || days < 1 {
		return 0, fmt.Errorf("invalid days %q", arg)
	}
	return days, nil
}

// ParseMealID parses a planned meal id, with or without a leading #
func ParseMealID(arg string) (uint, error) {
	arg = strings.TrimPrefix(strings.TrimSpace(arg), "#")
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid meal id %q", arg)
	}
	return uint(id), nil
}

// ParseMeasure parses a number within [lo, hi]. A decimal comma is accepted.
func ParseMeasure(text string, lo, hi float64) (float64, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", text)
	}
	if value < lo || value > hi {
		return 0, fmt.Errorf("value %.1f out of range %.0f-%.0f", value, lo, hi)
	}
	return value, nil
}

// ParseBirthdate parses DD.MM.YYYY and rejects dates in the future
func ParseBirthdate(text string, now time.Time) (time.Time, error) {
	date, err := time.Parse("02.01.2006", strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birthdate %q", text)
	}
	if !date.Before(now) {
		return time.Time{}, fmt.Errorf("birthdate %s is not in the past", date.Format("2006-01-02"))
	}
	return date, nil
}

package model

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"time"
)

var (
	ErrDurationEmpty    = errors.New("empty duration")
	ErrDurationFormat   = errors.New("invalid duration format")
	ErrDurationOverflow = errors.New("duration overflow")
)

var cueDurationRx = regexp.MustCompile(`^(\d+d)?(\d+h)?(\d+m)?(\d+s)?$`)

// ParseCueDuration parses strings matching ^(\d+d)?(\d+h)?(\d+m)?(\d+s)?$ into time.Duration.
// Supports ordered day/hour/minute/second segments. Empty string rejected.
func ParseCueDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, ErrDurationEmpty
	}
	m := cueDurationRx.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrDurationFormat
	}
	var total time.Duration
	for _, seg := range m[1:] {
		if seg == "" {
			continue
		}
		val, err := strconv.ParseInt(seg[:len(seg)-1], 10, 64)
		if err != nil {
			return 0, ErrDurationOverflow
		}
		var unit time.Duration
		switch seg[len(seg)-1] {
		case 'd':
			unit = 24 * time.Hour
		case 'h':
			unit = time.Hour
		case 'm':
			unit = time.Minute
		case 's':
			unit = time.Second
		}
		if val > int64(math.MaxInt64/unit) {
			return 0, ErrDurationOverflow
		}
		add := time.Duration(val) * unit
		if total > time.Duration(math.MaxInt64)-add {
			return 0, ErrDurationOverflow
		}
		total += add
	}
	return total, nil
}

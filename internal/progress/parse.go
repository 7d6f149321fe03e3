package progress

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrNoMatch = errors.New("no match")

// Progress is the tuple carried by one yt-dlp progress line.
type Progress struct {
	Percent         float64
	SizeBytes       int64
	RateBytesPerSec int64
	ETASeconds      int64
}

// [download]  45.5% of ~  10.00MiB at  512.00KiB/s ETA 00:20 (frag 3/10)
var lineRx = regexp.MustCompile(`\[download\]\s+([0-9.]+)%\s+of\s+~?\s*(\S+)\s+at\s+(\S+)/s\s+ETA\s+(\S+)`)

var sizeRx = regexp.MustCompile(`^(\d+(?:\.\d+)?)(GiB|MiB|KiB|B)$`)

// ParseLine extracts progress from one line of yt-dlp output. Either every
// field parses or ErrNoMatch is returned; there are no partial results.
func ParseLine(line string) (Progress, error) {
	m := lineRx.FindStringSubmatch(line)
	if m == nil {
		return Progress{}, ErrNoMatch
	}

	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil || percent < 0 || percent > 100 {
		return Progress{}, fmt.Errorf("%w: percent %q", ErrNoMatch, m[1])
	}
	size, err := ParseByteSize(m[2])
	if err != nil {
		return Progress{}, fmt.Errorf("%w: size: %w", ErrNoMatch, err)
	}
	rate, err := ParseByteSize(m[3])
	if err != nil {
		return Progress{}, fmt.Errorf("%w: rate: %w", ErrNoMatch, err)
	}
	eta, err := ParseSeconds(m[4])
	if err != nil {
		return Progress{}, fmt.Errorf("%w: eta: %w", ErrNoMatch, err)
	}

	return Progress{
		Percent:         percent,
		SizeBytes:       size,
		RateBytesPerSec: rate,
		ETASeconds:      eta,
	}, nil
}

// ParseByteSize converts binary-unit sizes like "10.00MiB" into bytes,
// truncating toward zero.
func ParseByteSize(s string) (int64, error) {
	m := sizeRx.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	var exp float64
	switch m[2] {
	case "GiB":
		exp = 3
	case "MiB":
		exp = 2
	case "KiB":
		exp = 1
	}
	bytes := value * math.Pow(1024, exp)
	// float64(MaxInt64) rounds up to 2^63, which int64 cannot hold
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size %q overflows", s)
	}
	return int64(bytes), nil
}

// ParseSeconds converts "MM:SS" or "HH:MM:SS" into seconds. Anything
// containing "--" is yt-dlp's way of saying it does not know yet and yields
// UnknownETA.
func ParseSeconds(s string) (int64, error) {
	if strings.Contains(s, "--") {
		return UnknownETA, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	var total int64
	for _, part := range parts {
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		total = total*60 + n
	}
	return total, nil
}

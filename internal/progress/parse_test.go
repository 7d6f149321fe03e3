package progress_test

import (
	"testing"

	"github.com/ytdl-ui/ytdl/internal/progress"

	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	var testCases = []struct {
		scenario string
		given    string
		then     progress.Progress
	}{
		{
			scenario: "plain",
			given:    "[download] 45.50% of 10.00MiB at 512.00KiB/s ETA 00:20",
			then: progress.Progress{
				Percent:         45.50,
				SizeBytes:       10485760,
				RateBytesPerSec: 524288,
				ETASeconds:      20,
			},
		},
		{
			scenario: "estimated size and padding",
			given:    "[download]   3.2% of ~  1.00GiB at    1.00MiB/s ETA 01:02:03 (frag 3/120)",
			then: progress.Progress{
				Percent:         3.2,
				SizeBytes:       1073741824,
				RateBytesPerSec: 1048576,
				ETASeconds:      3723,
			},
		},
		{
			scenario: "unknown eta",
			given:    "[download]  0.0% of 2.00KiB at 1.00B/s ETA --:--",
			then: progress.Progress{
				Percent:         0,
				SizeBytes:       2048,
				RateBytesPerSec: 1,
				ETASeconds:      progress.UnknownETA,
			},
		},
		{
			scenario: "whole percent",
			given:    "[download] 100% of 5.00MiB at 2.50MiB/s ETA 00:00",
			then: progress.Progress{
				Percent:         100,
				SizeBytes:       5242880,
				RateBytesPerSec: 2621440,
				ETASeconds:      0,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()
			got, err := progress.ParseLine(tc.given)
			require.NoError(t, err)
			require.Equal(t, tc.then, got)

			again, err := progress.ParseLine(tc.given)
			require.NoError(t, err)
			require.Equal(t, got, again)
		})
	}
}

func TestParseLine_NoMatch(t *testing.T) {
	t.Parallel()

	var testCases = []struct {
		scenario string
		given    string
	}{
		{"empty", ""},
		{"info line", "[youtube] 6uMNnZtIS6s: Downloading webpage"},
		{"destination", "[download] Destination: video.f137.mp4"},
		{"final summary", "[download] 100% of 10.00MiB in 00:00:05 at 2.00MiB/s"},
		{"missing eta", "[download] 45.50% of 10.00MiB at 512.00KiB/s"},
		{"garbled unit", "[download] 45.50% of 10.00XiB at 512.00KiB/s ETA 00:20"},
		{"unknown rate", "[download] 45.50% of 10.00MiB at Unknown B/s ETA 00:20"},
		{"word eta", "[download] 45.50% of 10.00MiB at 512.00KiB/s ETA Unknown"},
		{"percent over 100", "[download] 145.50% of 10.00MiB at 512.00KiB/s ETA 00:20"},
		{"bad percent", "[download] 4.5.5% of 10.00MiB at 512.00KiB/s ETA 00:20"},
		{"size overflows", "[download] 1.0% of 8589934592GiB at 1.00B/s ETA 00:01"},
	}

	for _, tc := range testCases {
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()
			_, err := progress.ParseLine(tc.given)
			require.ErrorIs(t, err, progress.ErrNoMatch)
		})
	}
}

func TestParseByteSize(t *testing.T) {
	t.Parallel()

	var testCases = []struct {
		given string
		then  int64
	}{
		{"1.00GiB", 1073741824},
		{"512.00KiB", 524288},
		{"1.00B", 1},
		{"10.00MiB", 10485760},
		{"1.5KiB", 1536},
		{"0.1B", 0},
		{"3B", 3},
	}
	for _, tc := range testCases {
		t.Run(tc.given, func(t *testing.T) {
			got, err := progress.ParseByteSize(tc.given)
			require.NoError(t, err)
			require.Equal(t, tc.then, got)
		})
	}

	for _, bad := range []string{"", "MiB", "1.0TiB", "1,0MiB", "-1.00MiB", "1.00 MiB", "8589934592GiB", "99999999999999999999999B"} {
		t.Run("bad "+bad, func(t *testing.T) {
			_, err := progress.ParseByteSize(bad)
			require.Error(t, err)
		})
	}
}

func TestParseSeconds(t *testing.T) {
	t.Parallel()

	var testCases = []struct {
		given string
		then  int64
	}{
		{"01:30", 90},
		{"01:02:03", 3723},
		{"00:00", 0},
		{"--:--", progress.UnknownETA},
		{"--", progress.UnknownETA},
	}
	for _, tc := range testCases {
		t.Run(tc.given, func(t *testing.T) {
			got, err := progress.ParseSeconds(tc.given)
			require.NoError(t, err)
			require.Equal(t, tc.then, got)
		})
	}

	for _, bad := range []string{"", "90", "1:2:3:4", "aa:bb", "01:", "-1:30"} {
		t.Run("bad "+bad, func(t *testing.T) {
			_, err := progress.ParseSeconds(bad)
			require.Error(t, err)
		})
	}
}

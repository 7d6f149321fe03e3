// Package progress turns yt-dlp console output into typed progress records.
//
// ParseLine recognizes the download progress line
//
//	[download]  45.5% of ~10.00MiB at 512.00KiB/s ETA 00:20
//
// and ignores everything else. Sizes and rates use binary units (KiB, MiB,
// GiB) and are converted to bytes. An ETA of "--:--" is reported as
// UnknownETA rather than zero.
//
// State is the lock-guarded holder of the latest Record for one job. A
// Record is replaced as a whole on every parsed line, so Snapshot never
// returns a mix of old and new fields.
package progress

package progress

// UnknownETA marks a Record whose remaining time was reported as "--".
// Zero is a real value ("arriving now"), so it can't double as unknown.
const UnknownETA int64 = -1

// Record is a point-in-time view of one download. It holds only scalars,
// so a plain copy never shares memory with the writer.
type Record struct {
	URL             string  `json:"url"`
	Percent         float64 `json:"percent"`
	SizeBytes       int64   `json:"size_bytes"`
	RateBytesPerSec int64   `json:"rate_bytes_per_sec"`
	ETASeconds      int64   `json:"eta_seconds"`
	Completed       bool    `json:"completed"`
}

// NewRecord returns the initial record of a job which has not reported anything yet.
func NewRecord(url string) Record {
	return Record{URL: url}
}

// ETAKnown reports whether ETASeconds carries a real value.
func (r Record) ETAKnown() bool {
	return r.ETASeconds != UnknownETA
}

// WithProgress returns a running record built from a parsed line.
func (r Record) WithProgress(p Progress) Record {
	return Record{
		URL:             r.URL,
		Percent:         p.Percent,
		SizeBytes:       p.SizeBytes,
		RateBytesPerSec: p.RateBytesPerSec,
		ETASeconds:      p.ETASeconds,
		Completed:       false,
	}
}

// Finalize returns the terminal form of the record: rate and ETA drop to zero
// and the percentage is forced to 100 only when the process succeeded.
func (r Record) Finalize(success bool) Record {
	if success {
		r.Percent = 100.0
	}
	r.RateBytesPerSec = 0
	r.ETASeconds = 0
	r.Completed = true
	return r
}

package decision

import "time"

// Option configures an Extractor.
type Option func(*Extractor)

// WithWindow sets how far back rationale is searched. Non-positive values are ignored.
func WithWindow(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.window = d
		}
	}
}

// WithMaxRationale caps the number of snippets per decision. Non-positive values are ignored.
func WithMaxRationale(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.max = n
		}
	}
}

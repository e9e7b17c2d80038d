package identity

// Option configures a Cached resolver.
type Option func(*Cached)

// WithMaxSize sets the maximum number of memoized identities.
// If maxSize > 0: bounded mode, oldest entry evicted first.
// If maxSize <= 0: unbounded mode.
func WithMaxSize(maxSize int) Option {
	return func(c *Cached) {
		c.maxSize = maxSize
	}
}

package repository

// Default store settings.
const (
	defaultCapacity = 16
	defaultName     = "store"
)

type config struct {
	capacity int
	name     string
}

// Option applies a configuration option to an LRU store.
type Option func(*config)

// WithCapacity bounds the number of entries kept.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithName labels the store in metrics and logs.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

package dedupe

// Option applies a configuration option to a Deduper.
type Option func(*setDeduper)

// WithCapacity presizes the seen set.
func WithCapacity(n int) Option {
	return func(d *setDeduper) {
		if n > 0 {
			d.capacity = n
		}
	}
}

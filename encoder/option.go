package encoder

import (
	"github.com/phucvin/fleece/internal/options"
)

// encoderConfig holds the construction-time settings Option mutates,
// applied before the first value is written.
type encoderConfig struct {
	initialCapacity int
}

// Option configures an Encoder at construction time, following the
// teacher's generic functional-option pattern.
type Option = options.Option[*encoderConfig]

// WithInitialCapacity sizes the Encoder's write buffer up front, avoiding
// early reallocations for callers who know roughly how large the
// document will be.
func WithInitialCapacity(n int) Option {
	return options.NoError(func(c *encoderConfig) {
		c.initialCapacity = n
	})
}

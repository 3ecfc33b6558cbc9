package services

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const orderNumberPrefix = "PW"

// OrderNumberGenerator produces customer-facing order numbers of the form
// PW<timestamp><random>: the last eight digits of the current Unix
// millisecond clock followed by a four digit random suffix.
type OrderNumberGenerator struct {
	clock  func() time.Time
	random func() int
}

// OrderNumberOption customises the generator, primarily for tests.
type OrderNumberOption func(*OrderNumberGenerator)

// WithOrderNumberClock injects a custom clock.
func WithOrderNumberClock(clock func() time.Time) OrderNumberOption {
	return func(g *OrderNumberGenerator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithOrderNumberRandom injects a custom random suffix source. The source
// must return values in [1000, 9999].
func WithOrderNumberRandom(random func() int) OrderNumberOption {
	return func(g *OrderNumberGenerator) {
		if random != nil {
			g.random = random
		}
	}
}

// NewOrderNumberGenerator constructs a generator with the supplied options.
func NewOrderNumberGenerator(opts ...OrderNumberOption) *OrderNumberGenerator {
	g := &OrderNumberGenerator{
		clock: time.Now,
		random: func() int {
			return 1000 + rand.IntN(9000)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Next returns a freshly generated order number.
func (g *OrderNumberGenerator) Next() string {
	millis := g.clock().UnixMilli()
	timestamp := fmt.Sprintf("%d", millis)
	if len(timestamp) > 8 {
		timestamp = timestamp[len(timestamp)-8:]
	}
	return fmt.Sprintf("%s%s%04d", orderNumberPrefix, timestamp, g.random())
}

// Package faker is the single source of randomness for dataset synthesis and
// repair. A Faker built with a fixed seed replays the same sequence of draws,
// which is what the tests rely on; New(0) seeds from the operating system.
//
// A Faker is not safe for concurrent use. Each generate or repair call owns
// the Faker it is given for the duration of the call.
package faker

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Faker draws random values of the shapes the order schema needs.
type Faker struct {
	seed   uint64
	src    *rand.ChaCha8
	rng    *rand.Rand
	people *gofakeit.Faker
}

// New returns a Faker seeded with seed. A zero seed picks a random one.
func New(seed uint64) *Faker {
	if seed == 0 {
		seed = osSeed()
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], seed^0x9e3779b97f4a7c15)

	src := rand.NewChaCha8(key)
	return &Faker{
		seed:   seed,
		src:    src,
		rng:    rand.New(src),
		people: gofakeit.New(seed | 1),
	}
}

func osSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano()) | 1
	}
	if s := binary.LittleEndian.Uint64(b[:]); s != 0 {
		return s
	}
	return 1
}

// Seed returns the seed this Faker was built with.
func (f *Faker) Seed() uint64 { return f.seed }

// IntN returns a uniform int in [0, n). It panics if n <= 0.
func (f *Faker) IntN(n int) int { return f.rng.IntN(n) }

// IntRange returns a uniform int in [lo, hi].
func (f *Faker) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + f.rng.IntN(hi-lo+1)
}

// Float64 returns a uniform float in [0, 1).
func (f *Faker) Float64() float64 { return f.rng.Float64() }

// Chance reports true with probability p.
func (f *Faker) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return f.rng.Float64() < p
}

// Choice returns a uniformly chosen element of items, or "" for an empty slice.
func (f *Faker) Choice(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[f.rng.IntN(len(items))]
}

// Decimal returns a uniform value in [lo, hi] rounded to places fraction digits.
func (f *Faker) Decimal(lo, hi float64, places int32) decimal.Decimal {
	x := lo + f.rng.Float64()*(hi-lo)
	d := decimal.NewFromFloat(x).Round(places)
	if lower := decimal.NewFromFloat(lo); d.LessThan(lower) {
		return lower.Round(places)
	}
	if upper := decimal.NewFromFloat(hi); d.GreaterThan(upper) {
		return upper.Round(places)
	}
	return d
}

// UUID returns a version 4 UUID in canonical text form drawn from this Faker.
func (f *Faker) UUID() string {
	id, err := uuid.NewRandomFromReader(f.src)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Name returns a synthetic person name.
func (f *Faker) Name() string { return f.people.Name() }

// Time returns a uniform instant in [from, to), truncated to the second.
func (f *Faker) Time(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= time.Second {
		return from.Truncate(time.Second)
	}
	off := time.Duration(f.rng.Int64N(int64(span/time.Second))) * time.Second
	return from.Add(off).Truncate(time.Second)
}

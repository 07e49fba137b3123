// Package id mints prefixed, time-ordered ULIDs for bots and trades.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator stamps ids with the time it is given rather than the wall
// clock, so ids minted under a virtual clock sort by simulated time.
type Generator struct {
	mu      sync.Mutex
	prefix  string
	entropy io.Reader
}

// NewGenerator returns a generator whose ids read "<prefix>_<ULID>", or a
// bare ULID when prefix is empty. A nil entropy source is seeded from
// crypto/rand.
func NewGenerator(prefix string, entropy io.Reader) *Generator {
	if entropy == nil {
		var seed int64
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		entropy = rand.New(rand.NewSource(seed))
	}
	// Monotonic entropy keeps ids minted in the same millisecond ordered.
	return &Generator{prefix: prefix, entropy: ulid.Monotonic(entropy, 0)}
}

// At returns a new id stamped at t. Times before the Unix epoch are
// stamped at the epoch.
func (g *Generator) At(t time.Time) string {
	if t.Before(time.Unix(0, 0)) {
		t = time.Unix(0, 0)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(t), g.entropy)
	if err != nil {
		panic(err)
	}
	if g.prefix == "" {
		return u.String()
	}
	return g.prefix + "_" + u.String()
}

// Time returns the timestamp encoded in an id minted by any Generator.
func Time(s string) (time.Time, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse id %q: %w", s, err)
	}
	return ulid.Time(u.Time()), nil
}

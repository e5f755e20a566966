package postgres

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator hands out transaction IDs. ULIDs sort by creation time, which
// keeps the ID tiebreak in newest-first listings stable.
type ULIDGenerator struct {
	now func() time.Time
}

// NewULIDGenerator creates a new ULIDGenerator on the wall clock.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{now: time.Now}
}

// Generate returns a new ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.MustNew(ulid.Timestamp(g.now()), ulid.DefaultEntropy()).String()
}

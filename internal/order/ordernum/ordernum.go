// Package ordernum produces human-readable order numbers of the shape
// ORD-<YYYYMMDD>-<suffix>.
//
// The generator does not guarantee global uniqueness; the orders table's
// UNIQUE constraint does. Callers retry generation on collision, passing an
// increasing attempt count so the random space widens instead of colliding
// again on a hot day.
package ordernum

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	baseSuffixLen = 4
	wideSuffixLen = 8

	// widenAfter is the attempt index from which the wide suffix is used.
	widenAfter = 3
)

type Generator struct {
	now func() time.Time
}

func New() *Generator {
	return &Generator{now: time.Now}
}

// Next returns a fresh candidate number. attempt starts at 1; from attempt
// widenAfter+1 onward the suffix doubles in length.
func (g *Generator) Next(attempt int) string {
	suffixLen := baseSuffixLen
	if attempt > widenAfter {
		suffixLen = wideSuffixLen
	}

	date := g.now().UTC().Format("20060102")
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", date, random[:suffixLen])
}

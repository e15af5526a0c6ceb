package modelchecker

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Choice identifies which branch was taken at one decision point, whether
// that decision was an automatic scheduling choice or a manual one made via
// RunnableActionSet.Choice. Decisions rarely have more than a handful of
// options, so a uint8 is ample.
type Choice = uint8

// Path is the sequence of choices taken from the root of the choice tree
// down to some node. A Path uniquely and deterministically identifies a
// trial: replaying a trial with the same Path as its initial path reproduces
// exactly the same sequence of decisions.
type Path []Choice

// clonePath returns a defensive copy of p, so the returned Path shares no
// backing array with the caller's slice.
func clonePath(p Path) Path {
	if len(p) == 0 {
		return nil
	}
	return Path(slices.Clone([]Choice(p)))
}

// Equal reports whether p and other represent the same sequence of choices.
func (p Path) Equal(other Path) bool {
	return slices.Equal([]Choice(p), []Choice(other))
}

// String renders p in the canonical "{c0, c1, c2}" form, e.g. "{0, 2, 1}".
// An empty or nil Path renders as "{}".
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range p {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	b.WriteByte('}')
	return b.String()
}

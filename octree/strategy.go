package octree

import (
	"fmt"
	"strings"

	"github.com/phil-mansfield/octgrav"
)

// Strategy names a tree construction method.
type Strategy int

const (
	Partition Strategy = iota
	Morton
	Insert
	EndStrategy
)

var strategyNames = []string{"Partition", "Morton", "Insert"}

func (s Strategy) String() string {
	if s < 0 || s >= EndStrategy {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy returns the Strategy with the given case-insensitive name.
func ParseStrategy(name string) (Strategy, error) {
	for s := Partition; s < EndStrategy; s++ {
		if strings.ToLower(s.String()) == strings.ToLower(name) {
			return s, nil
		}
	}
	return EndStrategy, fmt.Errorf(
		"Unrecognized tree construction strategy '%s'. Accepted values "+
			"are %s.", name, strings.Join(strategyNames, ", "),
	)
}

// BuildWith constructs a tree over bodies using the given strategy. Unknown
// strategies fall back to Partition.
func BuildWith[T octgrav.Particle](
	s Strategy, bodies []T, cfg Config,
) *Octree[T] {
	switch s {
	case Morton:
		return BuildMorton(bodies, cfg)
	case Insert:
		return BuildInsert(bodies, cfg)
	}
	return Build(bodies, cfg)
}

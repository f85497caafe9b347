package station

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the ordering applied by Apply.
type SortKey string

const (
	SortNone     SortKey = ""
	SortDistance SortKey = "distance"
	SortName     SortKey = "name"
	SortOperator SortKey = "operator"
	SortStatus   SortKey = "status"
	SortPoints   SortKey = "points"
)

// ParseSortKey validates a sort key received from the host.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortDistance, SortName, SortOperator, SortStatus, SortPoints:
		return k, nil
	default:
		return SortNone, &InvalidParameterError{Field: "sortBy", Reason: fmt.Sprintf("unknown sort key %q", s)}
	}
}

// DefaultDescending reports the natural direction of a sort key. More charging
// points is typically better, so that key sorts descending.
func (k SortKey) DefaultDescending() bool {
	return k == SortPoints
}

// FilterSortConfig is the set of active filters plus one sort key.
// An empty allowed-set leaves that filter inactive.
type FilterSortConfig struct {
	AccessTypes     []string
	Operators       []string
	Statuses        []string
	ConnectionTypes []string

	// PowerLevels keeps stations with at least one connection at one of these
	// charging levels, e.g. "Level 2 : Medium (Over 2kW)".
	PowerLevels []string

	// MinPowerKW keeps stations with at least one connection at or above it.
	// Nil or non-positive disables the filter.
	MinPowerKW *float64

	SortBy SortKey

	// Descending overrides the sort key's natural direction when set.
	Descending *bool
}

// Apply filters records with AND semantics across active filters, then stably
// sorts the survivors. The input slice and its records are never modified.
func Apply(records []Station, cfg FilterSortConfig) []Station {
	out := make([]Station, 0, len(records))
	for i := range records {
		if matches(&records[i], cfg) {
			out = append(out, records[i])
		}
	}

	if cfg.SortBy == SortNone {
		return out
	}

	desc := cfg.SortBy.DefaultDescending()
	if cfg.Descending != nil {
		desc = *cfg.Descending
	}
	slices.SortStableFunc(out, comparator(cfg.SortBy, desc))
	return out
}

func matches(s *Station, cfg FilterSortConfig) bool {
	if !inSet(cfg.AccessTypes, Text(s.AccessType)) {
		return false
	}
	if !inSet(cfg.Operators, Text(s.Operator)) {
		return false
	}
	if !inSet(cfg.Statuses, Text(s.Status)) {
		return false
	}
	if len(cfg.ConnectionTypes) > 0 && !slices.ContainsFunc(s.Connections, func(c Connection) bool {
		return inSet(cfg.ConnectionTypes, Text(c.Type))
	}) {
		return false
	}
	if len(cfg.PowerLevels) > 0 && !slices.ContainsFunc(s.Connections, func(c Connection) bool {
		return inSet(cfg.PowerLevels, Text(c.Level))
	}) {
		return false
	}
	if cfg.MinPowerKW != nil && *cfg.MinPowerKW > 0 && !slices.ContainsFunc(s.Connections, func(c Connection) bool {
		return c.PowerKW != nil && *c.PowerKW >= *cfg.MinPowerKW
	}) {
		return false
	}
	return true
}

// inSet reports whether value is allowed; an empty set allows everything.
func inSet(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	return slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(strings.TrimSpace(a), value)
	})
}

// comparator builds the ordering for a key. Unknown values sort last in either
// direction; equal keys compare as 0 so the stable sort keeps input order.
func comparator(key SortKey, desc bool) func(a, b Station) int {
	dir := 1
	if desc {
		dir = -1
	}

	switch key {
	case SortDistance:
		return func(a, b Station) int {
			return compareKnown(a.DistanceKM, b.DistanceKM, dir, cmp.Compare[float64])
		}
	case SortName:
		return func(a, b Station) int {
			return compareKnown(known(a.Address.Title), known(b.Address.Title), dir, compareFold)
		}
	case SortOperator:
		return func(a, b Station) int {
			return compareKnown(known(a.Operator), known(b.Operator), dir, compareFold)
		}
	case SortStatus:
		return func(a, b Station) int {
			return compareKnown(known(a.Status), known(b.Status), dir, compareStatus)
		}
	case SortPoints:
		return func(a, b Station) int {
			return compareKnown(a.NumberOfPoints, b.NumberOfPoints, dir, cmp.Compare[int])
		}
	default:
		return func(Station, Station) int { return 0 }
	}
}

func compareKnown[T any](a, b *T, dir int, compare func(x, y T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return dir * compare(*a, *b)
	}
}

// known treats blank strings as unknown.
func known(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// statusOrder ranks the directory's status labels, operational states first.
var statusOrder = []string{
	"operational",
	"currently available",
	"partly operational",
	"currently in use",
	"temporarily unavailable",
	"planned",
	"not operational",
	"removed",
}

func statusRank(label string) int {
	l := strings.ToLower(strings.TrimSpace(label))
	for i, prefix := range statusOrder {
		if strings.HasPrefix(l, prefix) {
			return i
		}
	}
	return len(statusOrder)
}

func compareStatus(a, b string) int {
	if c := cmp.Compare(statusRank(a), statusRank(b)); c != 0 {
		return c
	}
	return compareFold(a, b)
}

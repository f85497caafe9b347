package station

import (
	"slices"
	"strings"
)

// FacetSet lists the distinct values present in a result set, one list per
// filterable attribute. Unknown values appear as the Unknown sentinel.
type FacetSet struct {
	AccessTypes     []string
	Operators       []string
	Statuses        []string
	ConnectionTypes []string
	PowerLevels     []string
}

// Facets collects the sorted distinct filter values for records. Values that
// differ only in case are reported once.
func Facets(records []Station) FacetSet {
	access := newValueSet()
	operators := newValueSet()
	statuses := newValueSet()
	connTypes := newValueSet()
	levels := newValueSet()

	for i := range records {
		s := &records[i]
		access.add(Text(s.AccessType))
		operators.add(Text(s.Operator))
		statuses.add(Text(s.Status))
		for _, c := range s.Connections {
			connTypes.add(Text(c.Type))
			if c.Level != nil {
				levels.add(Text(c.Level))
			}
		}
	}

	return FacetSet{
		AccessTypes:     access.sorted(),
		Operators:       operators.sorted(),
		Statuses:        statuses.sorted(),
		ConnectionTypes: connTypes.sorted(),
		PowerLevels:     levels.sorted(),
	}
}

// valueSet keeps the first spelling seen for each case-insensitive value,
// since filters match case-insensitively too.
type valueSet map[string]string

func newValueSet() valueSet { return make(valueSet) }

func (v valueSet) add(s string) {
	key := strings.ToLower(s)
	if _, ok := v[key]; !ok {
		v[key] = s
	}
}

func (v valueSet) sorted() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, v[k])
	}
	return out
}

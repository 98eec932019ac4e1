package docstore

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// Direction of an ordering
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter is an equality condition on a top-level field
type Filter struct {
	Field string
	Value string
}

// Query selects and orders documents of one collection. Backends evaluate it over the
// decoded top-level fields, so it only supports what both the memory and the DynamoDB
// store can do cheaply: equality filters, one order field and a limit.
type Query struct {
	Filters   []Filter
	OrderBy   string
	Direction Direction
	// Limit of zero means unlimited
	Limit int
}

// NewQuery starts an empty query
func NewQuery() Query {
	return Query{}
}

// Where adds an equality filter
func (q Query) Where(field, value string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// Order sets the order field and direction
func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

// Take limits the number of results
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

type candidate struct {
	snap   Snapshot
	fields map[string]any
}

// Apply evaluates the query over an unordered set of snapshots. Documents that fail to
// decode are skipped.
func (q Query) Apply(snaps []Snapshot) []Snapshot {
	cands := make([]candidate, 0, len(snaps))
	for _, s := range snaps {
		fields, err := Fields(s.Data)
		if err != nil {
			continue
		}
		if !q.matches(fields) {
			continue
		}
		cands = append(cands, candidate{snap: s, fields: fields})
	}

	if q.OrderBy != "" {
		sort.SliceStable(cands, func(i, j int) bool {
			c := CompareValues(cands[i].fields[q.OrderBy], cands[j].fields[q.OrderBy])
			if c == 0 {
				c = compareStrings(cands[i].snap.ID, cands[j].snap.ID)
			}
			if q.Direction == Desc {
				return c > 0
			}
			return c < 0
		})
	} else {
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].snap.ID < cands[j].snap.ID
		})
	}

	if q.Limit > 0 && len(cands) > q.Limit {
		cands = cands[:q.Limit]
	}
	return lo.Map(cands, func(c candidate, _ int) Snapshot { return c.snap })
}

func (q Query) matches(fields map[string]any) bool {
	for _, f := range q.Filters {
		v, ok := fields[f.Field]
		if !ok || v == nil {
			return false
		}
		if fmt.Sprint(v) != f.Value {
			return false
		}
	}
	return true
}

// CompareValues orders two decoded JSON values. Timestamps compare chronologically and
// numbers numerically; a missing value sorts first.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		at, aerr := time.Parse(time.RFC3339Nano, as)
		bt, berr := time.Parse(time.RFC3339Nano, bs)
		if aerr == nil && berr == nil {
			return at.Compare(bt)
		}
		return compareStrings(as, bs)
	}

	af, aerr := strconv.ParseFloat(fmt.Sprint(a), 64)
	bf, berr := strconv.ParseFloat(fmt.Sprint(b), 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return compareStrings(fmt.Sprint(a), fmt.Sprint(b))
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

package request

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/reqkey/internal/reqerr"
)

// Kind names an operation, e.g. "Query" or "MaxAll".
type Kind string

// Built-in kinds.
const (
	KindQuery      Kind = "Query"
	KindQueryAll   Kind = "QueryAll"
	KindAverage    Kind = "Average"
	KindAverageAll Kind = "AverageAll"
	KindMin        Kind = "Min"
	KindMinAll     Kind = "MinAll"
	KindMax        Kind = "Max"
	KindMaxAll     Kind = "MaxAll"
	KindSum        Kind = "Sum"
	KindSumAll     Kind = "SumAll"
	KindCount      Kind = "Count"
	KindCountAll   Kind = "CountAll"
	KindExists     Kind = "Exists"
	KindDelete     Kind = "Delete"
	KindDeleteAll  Kind = "DeleteAll"
)

// Component is a bit set of optional request parts.
type Component uint8

const (
	ComponentFields  Component = 1 << iota // projection list
	ComponentField                         // single aggregate field
	ComponentWhere                         // filter group
	ComponentOrderBy                       // ordering list
	ComponentLimit                         // row limit
	ComponentHints                         // table hints
)

var componentNames = []struct {
	c    Component
	name string
}{
	{ComponentFields, "fields"},
	{ComponentField, "field"},
	{ComponentWhere, "where"},
	{ComponentOrderBy, "orderBy"},
	{ComponentLimit, "limit"},
	{ComponentHints, "hints"},
}

// Has reports whether all bits of other are set.
func (c Component) Has(other Component) bool { return c&other == other }

func (c Component) String() string {
	var parts []string
	for _, cn := range componentNames {
		if c.Has(cn.c) {
			parts = append(parts, cn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Shape tells a statement builder what kind of statement a Kind renders to.
type Shape int

const (
	ShapeSelect Shape = iota + 1
	ShapeAverage
	ShapeMin
	ShapeMax
	ShapeSum
	ShapeCount
	ShapeExists
	ShapeDelete
)

var shapeNames = map[Shape]string{
	ShapeSelect:  "select",
	ShapeAverage: "average",
	ShapeMin:     "min",
	ShapeMax:     "max",
	ShapeSum:     "sum",
	ShapeCount:   "count",
	ShapeExists:  "exists",
	ShapeDelete:  "delete",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return "unknown"
}

// KindSpec declares the components a Kind accepts and requires.
type KindSpec struct {
	Kind     Kind
	Shape    Shape
	Accepts  Component
	Requires Component
}

const (
	queryParts     = ComponentFields | ComponentWhere | ComponentOrderBy | ComponentLimit | ComponentHints
	queryAllParts  = ComponentFields | ComponentOrderBy | ComponentHints
	aggregateParts = ComponentField | ComponentWhere | ComponentHints
	aggregateAll   = ComponentField | ComponentHints
	filteredParts  = ComponentWhere | ComponentHints
)

var (
	kindsMu sync.RWMutex
	kinds   = map[Kind]KindSpec{
		KindQuery:      {KindQuery, ShapeSelect, queryParts, 0},
		KindQueryAll:   {KindQueryAll, ShapeSelect, queryAllParts, 0},
		KindAverage:    {KindAverage, ShapeAverage, aggregateParts, ComponentField},
		KindAverageAll: {KindAverageAll, ShapeAverage, aggregateAll, ComponentField},
		KindMin:        {KindMin, ShapeMin, aggregateParts, ComponentField},
		KindMinAll:     {KindMinAll, ShapeMin, aggregateAll, ComponentField},
		KindMax:        {KindMax, ShapeMax, aggregateParts, ComponentField},
		KindMaxAll:     {KindMaxAll, ShapeMax, aggregateAll, ComponentField},
		KindSum:        {KindSum, ShapeSum, aggregateParts, ComponentField},
		KindSumAll:     {KindSumAll, ShapeSum, aggregateAll, ComponentField},
		KindCount:      {KindCount, ShapeCount, filteredParts, 0},
		KindCountAll:   {KindCountAll, ShapeCount, ComponentHints, 0},
		KindExists:     {KindExists, ShapeExists, filteredParts, 0},
		KindDelete:     {KindDelete, ShapeDelete, filteredParts, 0},
		KindDeleteAll:  {KindDeleteAll, ShapeDelete, ComponentHints, 0},
	}
)

// RegisterKind adds a new operation kind. Built-in and previously
// registered kinds cannot be replaced.
func RegisterKind(spec KindSpec) error {
	if strings.TrimSpace(string(spec.Kind)) == "" {
		return reqerr.InvalidArgument("kind name must not be empty")
	}
	if _, ok := shapeNames[spec.Shape]; !ok {
		return reqerr.InvalidArgument("kind %s: unknown shape %d", spec.Kind, int(spec.Shape))
	}
	if !spec.Accepts.Has(spec.Requires) {
		return reqerr.InvalidArgument("kind %s requires %s but accepts only %s", spec.Kind, spec.Requires, spec.Accepts)
	}
	if spec.Accepts.Has(ComponentField) && spec.Accepts&ComponentFields != 0 {
		return reqerr.InvalidArgument("kind %s: field and fields are exclusive", spec.Kind)
	}

	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, exists := kinds[spec.Kind]; exists {
		return reqerr.InvalidArgument("kind %s is already registered", spec.Kind)
	}
	kinds[spec.Kind] = spec
	return nil
}

// LookupKind returns the spec for k.
func LookupKind(k Kind) (KindSpec, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	spec, ok := kinds[k]
	return spec, ok
}

// Kinds returns every registered kind spec sorted by name.
func Kinds() []KindSpec {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]KindSpec, 0, len(kinds))
	for _, k := range slices.Sorted(maps.Keys(kinds)) {
		out = append(out, kinds[k])
	}
	return out
}

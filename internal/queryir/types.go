package queryir

// Query is a Select or a Join.
type Query interface {
	queryNode()
}

// Predicate filters the rows of a Select.
type Predicate interface {
	predicateNode()
}

// Select reads the rows of one relation.
//
//	SELECT <fields of From> FROM <From> WHERE <Filter>
type Select struct {
	From   Relation
	Filter Predicate // nil = every row
}

func (Select) queryNode() {}

// Join extends Left with the rows of Right that are linked to Left's last
// relation. The link condition comes from the relation catalog, so Right.From
// must be joinable with the last relation of Left.
type Join struct {
	Left  Query
	Right Select
}

func (Join) queryNode() {}

// Equals matches rows whose Field equals Value. NULL never matches.
type Equals struct {
	Field string
	Value string
}

func (Equals) predicateNode() {}

// NotNull matches rows whose Field is set.
type NotNull struct {
	Field string
}

func (NotNull) predicateNode() {}

// And matches rows that satisfy every predicate. An empty And matches
// everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Chain joins selects left to right. Chain() with no arguments returns nil.
func Chain(selects ...Select) Query {
	if len(selects) == 0 {
		return nil
	}
	var q Query = selects[0]
	for _, s := range selects[1:] {
		q = Join{Left: q, Right: s}
	}
	return q
}

// Selects flattens a query into its selects in chain order.
func Selects(q Query) []Select {
	switch q := q.(type) {
	case Select:
		return []Select{q}
	case *Select:
		return []Select{*q}
	case Join:
		return append(Selects(q.Left), q.Right)
	case *Join:
		return append(Selects(q.Left), q.Right)
	default:
		return nil
	}
}

// Record is one row of one relation.
type Record struct {
	Relation Relation
	ID       int64
	// Identifier is nil when the relation has no identifier column or the
	// row's identifier is NULL.
	Identifier *string
	// Fields holds the relation's non-NULL columns.
	Fields map[string]string
}

// Get returns a field value and whether it was set.
func (r Record) Get(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Tuple holds one Record per relation of the query, in chain order.
type Tuple []Record

package queryir

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	Valid    bool
	Problems []string
}

// Err returns nil for a valid query, or an error listing every problem.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.New("invalid query: " + strings.Join(r.Problems, "; "))
}

// Validate checks that every relation is known, adjacent relations are
// joinable and predicates only reference columns of their relation.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addProblem("nil query")
		return
	}
	switch q.(type) {
	case Select, *Select, Join, *Join:
	default:
		v.addProblem("unknown query type %T", q)
		return
	}

	selects := Selects(q)
	for i, sel := range selects {
		v.validateSelect(sel)
		if i == 0 {
			continue
		}
		prev := selects[i-1].From
		if prev.Valid() && sel.From.Valid() && !Joinable(prev, sel.From) {
			v.addProblem("%s cannot be joined with %s", prev, sel.From)
		}
	}
}

func (v *validator) validateSelect(sel Select) {
	if !sel.From.Valid() {
		v.addProblem("unknown relation %q", sel.From)
		return
	}
	v.validatePredicate(sel.From, sel.Filter)
}

func (v *validator) validatePredicate(rel Relation, p Predicate) {
	if p == nil {
		return
	}
	switch pred := p.(type) {
	case Equals:
		v.validateField(rel, pred.Field)
	case *Equals:
		v.validateField(rel, pred.Field)
	case NotNull:
		v.validateField(rel, pred.Field)
	case *NotNull:
		v.validateField(rel, pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(rel, sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(rel, sub)
		}
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}

func (v *validator) validateField(rel Relation, field string) {
	if !rel.HasField(field) {
		v.addProblem("%s has no field %q", rel, field)
	}
}

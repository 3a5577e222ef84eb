package guide

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Selector filters items, blocks and spawn eggs by their player_facing
// property.
type Selector string

const (
	SelectPlayerFacing    Selector = "player_facing"
	SelectNonPlayerFacing Selector = "non_player_facing"
	SelectAll             Selector = "all"
)

// Matches reports whether a record with the given player_facing value is
// selected.
func (s Selector) Matches(playerFacing bool) bool {
	switch s {
	case SelectPlayerFacing:
		return playerFacing
	case SelectNonPlayerFacing:
		return !playerFacing
	default:
		return true
	}
}

func arg(args []gjson.Result, i int) gjson.Result {
	if i < len(args) {
		return args[i]
	}
	return gjson.Result{}
}

// stringList decodes a string or a list of strings. A missing or null
// argument is nil.
func stringList(args []gjson.Result, i int, name string) ([]string, error) {
	a := arg(args, i)
	switch {
	case !a.Exists() || a.Type == gjson.Null:
		return nil, nil
	case a.Type == gjson.String:
		return []string{a.Str}, nil
	case a.IsArray():
		var out []string
		for _, v := range a.Array() {
			if v.Type != gjson.String {
				return nil, fmt.Errorf("argument %s must be a string or a list of strings", name)
			}
			out = append(out, v.Str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("argument %s must be a string or a list of strings", name)
	}
}

// patterns decodes the (search_patterns, exclude_patterns) pair every file
// based function starts with.
func patterns(args []gjson.Result) (include, exclude []string, err error) {
	if !arg(args, 0).Exists() {
		return nil, nil, fmt.Errorf("missing argument search_patterns")
	}
	if include, err = stringList(args, 0, "search_patterns"); err != nil {
		return nil, nil, err
	}
	if exclude, err = stringList(args, 1, "exclude_patterns"); err != nil {
		return nil, nil, err
	}
	return include, exclude, nil
}

func selector(args []gjson.Result, i int) (Selector, error) {
	a := arg(args, i)
	if !a.Exists() || a.Type == gjson.Null {
		return SelectAll, nil
	}
	switch s := Selector(a.Str); {
	case a.Type == gjson.String && (s == SelectPlayerFacing || s == SelectNonPlayerFacing || s == SelectAll):
		return s, nil
	default:
		return "", fmt.Errorf("argument player_facing must be one of %q, %q or %q", SelectPlayerFacing, SelectNonPlayerFacing, SelectAll)
	}
}

// categories decodes the entity category filter. Nil selects every category.
func categories(args []gjson.Result, i int) ([]Category, error) {
	names, err := stringList(args, i, "categories")
	if err != nil || names == nil {
		return nil, err
	}
	out := make([]Category, 0, len(names))
	for _, n := range names {
		c := Category(n)
		if !c.Valid() {
			return nil, fmt.Errorf("unknown entity category %q", n)
		}
		out = append(out, c)
	}
	return out, nil
}

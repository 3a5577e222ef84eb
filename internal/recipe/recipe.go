// Package recipe parses crafting, furnace and brewing recipe files and builds
// the index of which recipes produce which item.
package recipe

import (
	"errors"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/jsontree"
)

// Recipe is one of *Crafting, *Furnace or *Brewing.
type Recipe interface {
	Identifier() string
	// Produces returns the key of the item the recipe makes.
	Produces() Key
	isRecipe()
}

// Binding maps a pattern symbol to an ingredient.
type Binding struct {
	Symbol string
	Key    Key
}

// Crafting is a shaped recipe, or a shapeless one laid out on a synthetic
// grid whose symbols are the ingredient indices "0" to "8".
type Crafting struct {
	Name      string
	Shapeless bool
	// Pattern rows are exactly three characters; a space is an empty slot.
	Pattern [3]string
	// Keys in file order.
	Keys   []Binding
	Result Key
}

type Furnace struct {
	Name   string
	Input  Key
	Output Key
}

type Brewing struct {
	Name    string
	Input   Key
	Reagent Key
	Output  Key
}

func (c *Crafting) Identifier() string { return c.Name }
func (c *Crafting) Produces() Key { return c.Result }
func (*Crafting) isRecipe() {}

func (f *Furnace) Identifier() string { return f.Name }
func (f *Furnace) Produces() Key { return f.Output }
func (*Furnace) isRecipe() {}

func (b *Brewing) Identifier() string { return b.Name }
func (b *Brewing) Produces() Key { return b.Output }
func (*Brewing) isRecipe() {}

// Recipe type keys. The bare forms without namespace are accepted too.
const (
	TypeShaped     = "minecraft:recipe_shaped"
	TypeShapeless  = "minecraft:recipe_shapeless"
	TypeFurnace    = "minecraft:recipe_furnace"
	TypeBrewingMix = "minecraft:recipe_brewing_mix"
)

const (
	gridSize  = 3
	gridSlots = gridSize * gridSize
)

// Load reads and parses the recipe file at path.
func Load(path string) (Recipe, error) {
	doc, err := jsontree.Load(path)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

// Parse builds a Recipe from a parsed document. Errors are *diag.Error of
// kind ErrUnknownRecipeType or ErrInvalidRecipeFormat carrying the document
// path.
func Parse(doc *jsontree.Document) (Recipe, error) {
	r, err := parse(doc.Root())
	if err != nil {
		return nil, withPath(err, doc.Path())
	}
	return r, nil
}

func parse(root gjson.Result) (Recipe, error) {
	if body, ok := lookupType(root, TypeShaped); ok {
		return parseShaped(body)
	}
	if body, ok := lookupType(root, TypeShapeless); ok {
		return parseShapeless(body)
	}
	if body, ok := lookupType(root, TypeFurnace); ok {
		return parseFurnace(body)
	}
	if body, ok := lookupType(root, TypeBrewingMix); ok {
		return parseBrewing(body)
	}
	return nil, diag.New(diag.ErrUnknownRecipeType, "",
		"unknown recipe type (only %s, %s, %s and %s are supported)",
		TypeShaped, TypeShapeless, TypeFurnace, TypeBrewingMix)
}

func lookupType(root gjson.Result, typ string) (gjson.Result, bool) {
	if !root.IsObject() {
		return gjson.Result{}, false
	}
	if v := root.Get(jsontree.P(typ).String()); v.Exists() {
		return v, true
	}
	bare := typ[len(defaultNamespace)+1:]
	if v := root.Get(jsontree.P(bare).String()); v.Exists() {
		return v, true
	}
	return gjson.Result{}, false
}

func parseShaped(body gjson.Result) (Recipe, error) {
	name, err := parseName(body)
	if err != nil {
		return nil, err
	}
	pattern, err := parsePattern(body.Get("pattern"))
	if err != nil {
		return nil, err
	}
	result, err := parseResult(body.Get("result"))
	if err != nil {
		return nil, err
	}
	keys, err := parseKeys(body.Get("key"), pattern)
	if err != nil {
		return nil, err
	}
	return &Crafting{Name: name, Pattern: pattern, Keys: keys, Result: result}, nil
}

func parseShapeless(body gjson.Result) (Recipe, error) {
	name, err := parseName(body)
	if err != nil {
		return nil, err
	}

	ingredients := body.Get("ingredients")
	var list []gjson.Result
	switch {
	case ingredients.IsObject():
		list = []gjson.Result{ingredients}
	case ingredients.IsArray():
		list = ingredients.Array()
	default:
		return nil, invalidf("recipe 'ingredients' property is not a list")
	}

	var slots []string
	keys := make([]Binding, 0, len(list))
	for i, ingredient := range list {
		count := 1
		switch {
		case ingredient.Type == gjson.String:
		case ingredient.IsObject():
			if c := ingredient.Get("count"); c.Exists() {
				if !jsontree.IsInt(c) || c.Int() < 1 {
					return nil, invalidf("ingredient %d has an invalid 'count' (should be a positive integer)", i)
				}
				count = int(c.Int())
			}
		default:
			return nil, invalidf("recipe 'ingredients' property is not a list of strings or objects")
		}
		symbol := strconv.Itoa(i)
		for n := 0; n < count && len(slots) <= gridSlots; n++ {
			slots = append(slots, symbol)
		}
		if len(slots) > gridSlots {
			return nil, invalidf("shapeless recipes can have at most %d ingredients, ingredients with a 'count' greater than 1 are counted as multiple ingredients", gridSlots)
		}
		key, err := ParseKey(ingredient)
		if err != nil {
			return nil, err
		}
		keys = append(keys, Binding{Symbol: symbol, Key: key})
	}

	var pattern [gridSize]string
	for row := 0; row < gridSize; row++ {
		line := ""
		for col := 0; col < gridSize; col++ {
			if i := row*gridSize + col; i < len(slots) {
				line += slots[i]
			} else {
				line += " "
			}
		}
		pattern[row] = line
	}

	result, err := parseResult(body.Get("result"))
	if err != nil {
		return nil, err
	}
	return &Crafting{Name: name, Shapeless: true, Pattern: pattern, Keys: keys, Result: result}, nil
}

func parseFurnace(body gjson.Result) (Recipe, error) {
	name, err := parseName(body)
	if err != nil {
		return nil, err
	}
	input, err := requiredKey(body, "input")
	if err != nil {
		return nil, err
	}
	output, err := requiredKey(body, "output")
	if err != nil {
		return nil, err
	}
	return &Furnace{Name: name, Input: input, Output: output}, nil
}

func parseBrewing(body gjson.Result) (Recipe, error) {
	name, err := parseName(body)
	if err != nil {
		return nil, err
	}
	input, err := requiredKey(body, "input")
	if err != nil {
		return nil, err
	}
	reagent, err := requiredKey(body, "reagent")
	if err != nil {
		return nil, err
	}
	output, err := requiredKey(body, "output")
	if err != nil {
		return nil, err
	}
	return &Brewing{Name: name, Input: input, Reagent: reagent, Output: output}, nil
}

func parseName(body gjson.Result) (string, error) {
	name := body.Get("description.identifier")
	if name.Type != gjson.String {
		return "", invalidf("recipe name (description.identifier) is not a string")
	}
	return name.String(), nil
}

// parsePattern pads short grids with spaces. Only oversized grids are errors.
func parsePattern(raw gjson.Result) ([gridSize]string, error) {
	var pattern [gridSize]string
	if !raw.IsArray() {
		return pattern, invalidf("recipe 'pattern' property is not a list")
	}
	rows := raw.Array()
	if len(rows) > gridSize {
		return pattern, invalidf("pattern has %d rows, at most %d are allowed", len(rows), gridSize)
	}
	for i := range pattern {
		if i >= len(rows) {
			pattern[i] = "   "
			continue
		}
		if rows[i].Type != gjson.String {
			return pattern, invalidf("pattern row %d is not a string", i)
		}
		row := rows[i].String()
		width := utf8.RuneCountInString(row)
		if width > gridSize {
			return pattern, invalidf("pattern row %q is wider than %d", row, gridSize)
		}
		for ; width < gridSize; width++ {
			row += " "
		}
		pattern[i] = row
	}
	return pattern, nil
}

func parseKeys(raw gjson.Result, pattern [gridSize]string) ([]Binding, error) {
	if !raw.IsObject() {
		return nil, invalidf("recipe 'key' property is not an object")
	}
	var keys []Binding
	defined := make(map[string]bool)
	var err error
	raw.ForEach(func(symbol, value gjson.Result) bool {
		var key Key
		key, err = ParseKey(value)
		if err != nil {
			return false
		}
		keys = append(keys, Binding{Symbol: symbol.String(), Key: key})
		defined[symbol.String()] = true
		return true
	})
	if err != nil {
		return nil, err
	}
	for _, row := range pattern {
		for _, c := range row {
			if c != ' ' && !defined[string(c)] {
				return nil, invalidf("pattern %q uses an undefined key %q", row, string(c))
			}
		}
	}
	return keys, nil
}

func parseResult(raw gjson.Result) (Key, error) {
	if !raw.Exists() {
		return Key{}, invalidf("recipe 'result' property is missing")
	}
	if raw.IsArray() {
		results := raw.Array()
		if len(results) == 0 {
			return Key{}, invalidf("crafting recipe doesn't define the result item")
		}
		raw = results[0]
	}
	return ParseKey(raw)
}

func requiredKey(body gjson.Result, field string) (Key, error) {
	raw := body.Get(field)
	if !raw.Exists() {
		return Key{}, invalidf("recipe '%s' property is missing", field)
	}
	return ParseKey(raw)
}

func invalidf(format string, args ...any) error {
	return diag.New(diag.ErrInvalidRecipeFormat, "", format, args...)
}

func withPath(err error, path string) error {
	var derr *diag.Error
	if errors.As(err, &derr) && derr.Path == "" {
		cp := *derr
		cp.Path = path
		return &cp
	}
	return err
}

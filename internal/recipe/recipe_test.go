package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/jsontree"
)

func parseString(t *testing.T, src string) (Recipe, error) {
	t.Helper()
	doc, err := jsontree.Parse("BP/recipes/test.json", []byte(src))
	require.NoError(t, err)
	return Parse(doc)
}

func mustParse(t *testing.T, src string) Recipe {
	t.Helper()
	r, err := parseString(t, src)
	require.NoError(t, err)
	return r
}

func TestParse_ShapedPadsPattern(t *testing.T) {
	r := mustParse(t, `{
		"minecraft:recipe_shaped": {
			"description": {"identifier": "ns:sword"},
			"pattern": ["#", "|"],
			"key": {"#": {"item": "ns:gem"}, "|": "stick"},
			"result": {"item": "ns:sword"}
		}
	}`)

	crafting, ok := r.(*Crafting)
	require.True(t, ok)
	assert.Equal(t, "ns:sword", crafting.Identifier())
	assert.False(t, crafting.Shapeless)
	assert.Equal(t, [3]string{"#  ", "|  ", "   "}, crafting.Pattern)
	assert.Equal(t, []Binding{
		{Symbol: "#", Key: Key{Item: "ns:gem"}},
		{Symbol: "|", Key: Key{Item: "minecraft:stick"}},
	}, crafting.Keys)
	assert.Equal(t, "ns:sword", crafting.Produces().TrueName())
}

func TestParse_ShapedErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"four rows", `"pattern": ["#", "#", "#", "#"], "key": {"#": "stick"}, "result": "ns:x"`},
		{"wide row", `"pattern": ["####"], "key": {"#": "stick"}, "result": "ns:x"`},
		{"row not a string", `"pattern": [1], "key": {"#": "stick"}, "result": "ns:x"`},
		{"pattern not a list", `"pattern": "###", "key": {"#": "stick"}, "result": "ns:x"`},
		{"undefined symbol", `"pattern": ["#X"], "key": {"#": "stick"}, "result": "ns:x"`},
		{"key not an object", `"pattern": ["#"], "key": ["stick"], "result": "ns:x"`},
		{"empty result list", `"pattern": ["#"], "key": {"#": "stick"}, "result": []`},
		{"missing result", `"pattern": ["#"], "key": {"#": "stick"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseString(t, `{"minecraft:recipe_shaped": {"description": {"identifier": "ns:r"}, `+tt.body+`}}`)
			require.Error(t, err)
			assert.True(t, errors.Is(err, diag.ErrInvalidRecipeFormat))

			var derr *diag.Error
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, "BP/recipes/test.json", derr.Path)
		})
	}
}

func TestParse_ResultListTakesFirst(t *testing.T) {
	r := mustParse(t, `{"minecraft:recipe_shaped": {
		"description": {"identifier": "ns:r"},
		"pattern": ["#"], "key": {"#": "stick"},
		"result": [{"item": "ns:a"}, {"item": "ns:b"}]
	}}`)
	assert.Equal(t, "ns:a", r.Produces().TrueName())
}

func TestParse_NameMustBeString(t *testing.T) {
	_, err := parseString(t, `{"minecraft:recipe_furnace": {
		"description": {"identifier": 3}, "input": "a", "output": "b"
	}}`)
	assert.True(t, errors.Is(err, diag.ErrInvalidRecipeFormat))
}

func TestParse_ShapelessNineIngredients(t *testing.T) {
	r := mustParse(t, `{"minecraft:recipe_shapeless": {
		"description": {"identifier": "ns:r"},
		"ingredients": ["a", "b", "c", "d", "e", "f", "g", "h", "i"],
		"result": "ns:out"
	}}`)

	crafting := r.(*Crafting)
	assert.True(t, crafting.Shapeless)
	assert.Equal(t, [3]string{"012", "345", "678"}, crafting.Pattern)
	require.Len(t, crafting.Keys, 9)
	for i, b := range crafting.Keys {
		assert.Equal(t, string(rune('0'+i)), b.Symbol)
	}
	assert.Equal(t, "minecraft:i", crafting.Keys[8].Key.Item)
}

func TestParse_ShapelessTenIngredientsFails(t *testing.T) {
	_, err := parseString(t, `{"minecraft:recipe_shapeless": {
		"description": {"identifier": "ns:r"},
		"ingredients": ["a", "b", "c", "d", "e", "f", "g", "h", "i", "j"],
		"result": "ns:out"
	}}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrInvalidRecipeFormat))
}

func TestParse_ShapelessCounts(t *testing.T) {
	r := mustParse(t, `{"minecraft:recipe_shapeless": {
		"description": {"identifier": "ns:r"},
		"ingredients": [{"item": "ns:gem", "count": 4}, "stick"],
		"result": "ns:out"
	}}`)

	crafting := r.(*Crafting)
	assert.Equal(t, [3]string{"000", "01 ", "   "}, crafting.Pattern)
	assert.Equal(t, []Binding{
		{Symbol: "0", Key: Key{Item: "ns:gem"}},
		{Symbol: "1", Key: Key{Item: "minecraft:stick"}},
	}, crafting.Keys)

	_, err := parseString(t, `{"minecraft:recipe_shapeless": {
		"description": {"identifier": "ns:r"},
		"ingredients": [{"item": "ns:gem", "count": 9}, "stick"],
		"result": "ns:out"
	}}`)
	assert.True(t, errors.Is(err, diag.ErrInvalidRecipeFormat))
}

func TestParse_ShapelessSingleObject(t *testing.T) {
	r := mustParse(t, `{"recipe_shapeless": {
		"description": {"identifier": "ns:r"},
		"ingredients": {"item": "ns:gem"},
		"result": "ns:out"
	}}`)
	assert.Equal(t, [3]string{"0  ", "   ", "   "}, r.(*Crafting).Pattern)
}

func TestParse_Furnace(t *testing.T) {
	r := mustParse(t, `{"minecraft:recipe_furnace": {
		"description": {"identifier": "ns:smelt"},
		"tags": ["furnace"],
		"input": "ns:raw_ore",
		"output": "ns:ingot"
	}}`)
	furnace, ok := r.(*Furnace)
	require.True(t, ok)
	assert.Equal(t, Key{Item: "ns:raw_ore"}, furnace.Input)
	assert.Equal(t, "ns:ingot", furnace.Produces().TrueName())

	_, err := parseString(t, `{"minecraft:recipe_furnace": {"description": {"identifier": "ns:smelt"}, "input": "a"}}`)
	assert.True(t, errors.Is(err, diag.ErrInvalidRecipeFormat))
}

func TestParse_Brewing(t *testing.T) {
	r := mustParse(t, `{"minecraft:recipe_brewing_mix": {
		"description": {"identifier": "ns:brew"},
		"input": "minecraft:potion_type:water",
		"reagent": "ns:herb",
		"output": "ns:tonic"
	}}`)
	brewing, ok := r.(*Brewing)
	require.True(t, ok)
	assert.Equal(t, "ns:herb", brewing.Reagent.Item)

	_, err := parseString(t, `{"minecraft:recipe_brewing_mix": {
		"description": {"identifier": "ns:brew"}, "input": "a", "output": "b"
	}}`)
	assert.True(t, errors.Is(err, diag.ErrInvalidRecipeFormat))
}

func TestParse_UnknownType(t *testing.T) {
	_, err := parseString(t, `{"minecraft:recipe_smithing_transform": {}}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrUnknownRecipeType))
	assert.False(t, errors.Is(err, diag.ErrInvalidRecipeFormat))
}

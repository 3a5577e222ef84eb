package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/testutil"
)

type recorder struct {
	errs []error
}

func (r *recorder) Report(err error) { r.errs = append(r.errs, err) }

type fakeLister struct {
	entities map[string][]string
	err      error
	asked    []string
}

func (f *fakeLister) TradeTableEntities(_ context.Context, id string) ([]string, error) {
	f.asked = append(f.asked, id)
	return f.entities[id], f.err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func load(t *testing.T, p *testutil.Pack, rel, content string) *Properties {
	t.Helper()
	props, err := Load(p.WriteBP(rel, content), p.BPRoot())
	require.NoError(t, err)
	return props
}

func TestLoad_Identifier(t *testing.T) {
	p := testutil.NewPack(t)

	props := load(t, p, "trading/economy/villager.json", `{"tiers": []}`)
	assert.Equal(t, "trading/economy/villager.json", props.Identifier)
	assert.Equal(t, "economy/villager.json", props.ShortID())
}

func TestLoad_OutsideTradingFolder(t *testing.T) {
	p := testutil.NewPack(t)
	path := p.WriteBP("loot_tables/villager.json", `{"tiers": []}`)

	_, err := Load(path, p.BPRoot())
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrStructuralTrade))
	assert.Contains(t, err.Error(), "not relative to the 'BP/trading' folder")
}

func TestLoad_MalformedJSON(t *testing.T) {
	p := testutil.NewPack(t)
	path := p.WriteBP("trading/bad.json", `{"tiers": [`)

	_, err := Load(path, p.BPRoot())
	assert.True(t, errors.Is(err, diag.ErrMalformedJSON))
}

func TestSummary_SingleGroup(t *testing.T) {
	p := testutil.NewPack(t)
	props := load(t, p, "trading/gem.json", `{
		"tiers": [{
			"groups": [{
				"num_to_select": 0,
				"trades": [{
					"wants": [{"item": "minecraft:emerald", "quantity": 3}],
					"gives": [{"item": "ns:gem"}]
				}]
			}]
		}]
	}`)
	rep := &recorder{}

	out := NewFormatter(nil, rep).Summary(context.Background(), props)

	assert.Contains(t, out, "Group 1:\n")
	assert.Contains(t, out, "\n- Gives 1 ns:gem FOR 3 minecraft:emerald\n")
	assert.NotContains(t, out, "Traded by")
	assert.Empty(t, rep.errs)
}

func TestSummary_Golden(t *testing.T) {
	p := testutil.NewPack(t)
	props := load(t, p, "trading/villager.json", `{
		"tiers": [
			{
				"total_exp_required": 0,
				"groups": [
					{"num_to_select": 0, "trades": [
						{"wants": [{"item": "minecraft:emerald", "quantity": 3}], "gives": [{"item": "ns:gem"}]}
					]},
					{"num_to_select": 2, "trades": [
						{
							"wants": [
								{"item": "minecraft:emerald", "quantity": {"min": 2, "max": 4}},
								{"item": "minecraft:book"}
							],
							"gives": [{"choice": [{"item": "ns:ruby"}, {"item": "ns:sapphire", "quantity": 2}]}]
						}
					]}
				]
			},
			{
				"total_exp_required": 10,
				"trades": [
					{"wants": [{"item": "ns:gem", "quantity": 5}], "gives": [{"item": "minecraft:diamond"}]}
				]
			}
		]
	}`)
	lister := &fakeLister{entities: map[string][]string{"trading/villager.json": {"ns:villager"}}}
	rep := &recorder{}

	out := NewFormatter(lister, rep).Summary(context.Background(), props)

	newGoldie(t).Assert(t, "villager", []byte(out))
	assert.Equal(t, []string{"trading/villager.json"}, lister.asked)
	assert.Empty(t, rep.errs)
}

func TestSummary_StructuralErrorsAreReportedAndSkipped(t *testing.T) {
	p := testutil.NewPack(t)
	props := load(t, p, "trading/broken.json", `{
		"tiers": [
			{"groups": 5},
			{"groups": [{"trades": "x"}]},
			{"trades": [{"wants": [{"quantity": "x"}]}]},
			{}
		]
	}`)
	rep := &recorder{}

	out := NewFormatter(nil, rep).Summary(context.Background(), props)

	newGoldie(t).Assert(t, "broken", []byte(out))
	require.Len(t, rep.errs, 5)
	for _, err := range rep.errs[:2] {
		assert.True(t, errors.Is(err, diag.ErrStructuralTrade), err.Error())
	}
	assert.True(t, errors.Is(rep.errs[2], diag.ErrMissingField))
	assert.Contains(t, rep.errs[3].Error(), "'gives'")
	assert.Contains(t, rep.errs[4].Error(), "nor 'trades' property in tier 4")
}

func TestSummary_MissingTiers(t *testing.T) {
	p := testutil.NewPack(t)
	props := load(t, p, "trading/empty.json", `{}`)
	rep := &recorder{}

	out := NewFormatter(nil, rep).Summary(context.Background(), props)

	assert.Equal(t, "## Trade: empty.json\n#### Content\n```\nTrade does not have 'tiers' property.\n```", out)
	require.Len(t, rep.errs, 1)
}

func TestSummary_ListerErrorIsReported(t *testing.T) {
	p := testutil.NewPack(t)
	props := load(t, p, "trading/a.json", `{"tiers": []}`)
	rep := &recorder{}

	out := NewFormatter(&fakeLister{err: errors.New("db closed")}, rep).Summary(context.Background(), props)

	assert.Equal(t, "## Trade: a.json\n#### Content\n```\n```", out)
	require.Len(t, rep.errs, 1)
	assert.Contains(t, rep.errs[0].Error(), "db closed")
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"quantity": 4}`, "4"},
		{`{}`, "1"},
		{`{"quantity": "many"}`, "1"},
		{`{"quantity": 2.5}`, "1"},
		{`{"quantity": {"min": 1, "max": 3}}`, "1-3"},
		{`{"quantity": {"min": 2, "max": 2}}`, "2"},
		{`{"quantity": {"min": 2}}`, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, quantity(gjson.Get(tt.raw, "quantity")))
		})
	}
}

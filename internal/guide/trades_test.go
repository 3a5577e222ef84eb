package guide

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapescape/content-guide/internal/testutil"
)

func TestSummarizeTrades(t *testing.T) {
	p := testutil.NewPack(t)
	p.WriteBP("entities/smith.json", `{"minecraft:entity": {
		"description": {"identifier": "ns:smith"},
		"components": {"minecraft:trade_table": {"table": "trading/smith.json"}}
	}}`)
	path := p.WriteBP("trading/smith.json", `{"tiers": [{"groups": [{"num_to_select": 0, "trades": [
		{"wants": [{"item": "minecraft:emerald", "quantity": 3}], "gives": [{"item": "ns:gem"}]}
	]}]}]}`)
	g, rep := newGenerator(t, p)
	ctx := context.Background()

	got, err := g.SummarizeTrades(ctx, []string{"*.json"}, nil)
	require.NoError(t, err)
	assert.Contains(t, got, "## Trade: smith.json")
	assert.Contains(t, got, "- ns:smith")
	assert.Contains(t, got, "Group 1:")
	assert.Contains(t, got, "- Gives 1 ns:gem FOR 3 minecraft:emerald")
	assert.Empty(t, rep.Entries())
	assert.Same(t, g.Trade(path), g.Trade(path))

	got, err = g.SummarizeTrades(ctx, []string{"missing/*.json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "No trades found.", got)
}

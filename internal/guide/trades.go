package guide

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/shapescape/content-guide/internal/trade"
)

// Trade loads the trade table at path.
func (g *Generator) Trade(path string) *trade.Properties {
	return g.cache.trade(path, func() *trade.Properties {
		p, err := trade.Load(path, g.opts.BPPath)
		if err != nil {
			g.rep.Report(err)
			return nil
		}
		return p
	})
}

// SummarizeTrades renders every trade table matched by the patterns.
func (g *Generator) SummarizeTrades(ctx context.Context, include, exclude []string) (string, error) {
	paths, err := g.files(filepath.Join(g.opts.BPPath, trade.Folder), include, exclude)
	if err != nil {
		return "", err
	}
	var out []string
	for _, path := range paths {
		p := g.Trade(path)
		if p == nil {
			continue
		}
		out = append(out, g.trades.Summary(ctx, p))
	}
	if len(out) == 0 {
		return "No trades found.", nil
	}
	return strings.Join(out, "\n"), nil
}

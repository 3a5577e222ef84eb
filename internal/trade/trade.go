// Package trade loads trade tables and renders them as guide sections.
package trade

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/jsontree"
)

// Folder is the behavior pack folder holding trade tables.
const Folder = "trading"

// Properties is a loaded trade table. The tree is kept as is because tiers,
// groups and choices nest arbitrarily.
type Properties struct {
	// Identifier is the path relative to the behavior pack root, slash
	// separated, e.g. "trading/villager.json".
	Identifier string
	doc        *jsontree.Document
}

// Load reads the trade table at path. The file must be inside the trading
// folder of the behavior pack at bpRoot.
func Load(path, bpRoot string) (*Properties, error) {
	rel, ok := relativeTo(filepath.Join(bpRoot, Folder), path)
	if !ok {
		return nil, diag.New(diag.ErrStructuralTrade, path,
			"The path to the trade file is not relative to the 'BP/trading' folder.\n\tPath: %s",
			filepath.ToSlash(path))
	}
	doc, err := jsontree.Load(path)
	if err != nil {
		return nil, err
	}
	return &Properties{Identifier: Folder + "/" + rel, doc: doc}, nil
}

// Path returns the file the table was read from.
func (p *Properties) Path() string {
	return p.doc.Path()
}

// ShortID returns the identifier without the "trading/" prefix.
func (p *Properties) ShortID() string {
	return strings.TrimPrefix(p.Identifier, Folder+"/")
}

// Root returns the parsed table.
func (p *Properties) Root() gjson.Result {
	return p.doc.Root()
}

func relativeTo(base, path string) (string, bool) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// EntityLister finds the entities using a trade table.
type EntityLister interface {
	TradeTableEntities(ctx context.Context, tradeID string) ([]string, error)
}

// Reporter receives structural problems found while formatting.
type Reporter interface {
	Report(err error)
}

// Formatter renders trade summaries.
type Formatter struct {
	entities EntityLister
	rep      Reporter
}

// NewFormatter returns a Formatter. A nil entities lister omits the
// "Traded by" section.
func NewFormatter(entities EntityLister, rep Reporter) *Formatter {
	return &Formatter{entities: entities, rep: rep}
}

// summary accumulates the lines of one trade table.
type summary struct {
	f       *Formatter
	path    string
	shortID string
	lines   []string
}

func (s *summary) add(lines ...string) {
	s.lines = append(s.lines, lines...)
}

func (s *summary) errorf(kind error, format string, args ...any) {
	if s.f.rep != nil {
		s.f.rep.Report(diag.New(kind, s.path, format, args...))
	}
}

// Summary renders the trade table: a header, the entities using it, then a
// code block with every tier. Structural problems are reported and the
// affected tier or group is rendered with a placeholder.
func (f *Formatter) Summary(ctx context.Context, p *Properties) string {
	s := &summary{f: f, path: p.Path(), shortID: p.ShortID()}
	s.add("## Trade: " + s.shortID)

	if f.entities != nil {
		entities, err := f.entities.TradeTableEntities(ctx, p.Identifier)
		if err != nil {
			s.errorf(diag.ErrIO, "list entities using trade '%s': %v", s.shortID, err)
		}
		if len(entities) > 0 {
			s.add("#### Traded by:")
			for _, e := range entities {
				s.add("- " + e)
			}
		}
	}

	s.add("#### Content", "```")
	tiers := p.Root().Get("tiers")
	if !tiers.IsArray() {
		s.errorf(diag.ErrStructuralTrade, "Trade '%s' does not have 'tiers' property.", s.shortID)
		s.add("Trade does not have 'tiers' property.", "```")
		return strings.Join(s.lines, "\n")
	}
	for i, tier := range tiers.Array() {
		s.tier(i+1, jsontree.P("tiers", fmt.Sprint(i)), tier)
	}
	s.add("```")
	return strings.Join(s.lines, "\n")
}

func (s *summary) tier(n int, path jsontree.Path, tier gjson.Result) {
	exp := tier.Get("total_exp_required")
	required := int64(0)
	if jsontree.IsInt(exp) {
		required = exp.Int()
	}
	header := fmt.Sprintf("Tier %d trades (Total EXP required: %d):", n, required)
	s.add(header, strings.Repeat("=", len(header))+"\n")

	groups, trades := tier.Get("groups"), tier.Get("trades")
	switch {
	case groups.Exists():
		if !groups.IsArray() {
			s.errorf(diag.ErrStructuralTrade, "Trade '%s' does not have 'groups' property.\n\tJSON Path: %s",
				s.shortID, path.Append("groups"))
			s.add("Trade does not have 'groups' property.\n")
			return
		}
		for i, group := range groups.Array() {
			s.group(i+1, path.Append("groups", fmt.Sprint(i)), group)
		}
	case trades.Exists():
		if !trades.IsArray() {
			s.errorf(diag.ErrStructuralTrade, "Trade '%s' does not have 'trades' property.\n\tJSON Path: %s",
				s.shortID, path.Append("trades"))
			s.add("Trade does not have 'trades' property.")
			return
		}
		for i, trade := range trades.Array() {
			s.add(s.trade(path.Append("trades", fmt.Sprint(i)), trade))
		}
	default:
		s.errorf(diag.ErrStructuralTrade, "Trade '%s' does not have 'groups' nor 'trades' property in tier %d.\n\tJSON Path: %s",
			s.shortID, n, path)
	}
	s.add("")
}

func (s *summary) group(n int, path jsontree.Path, group gjson.Result) {
	header := fmt.Sprintf("Group %d:", n)
	if sel := group.Get("num_to_select"); jsontree.IsInt(sel) && sel.Int() != 0 {
		header = fmt.Sprintf("Group %d - Selects %d of following trades:", n, sel.Int())
	}
	s.add(header, strings.Repeat("-", len(header))+"\n")

	trades := group.Get("trades")
	if !trades.IsArray() {
		s.errorf(diag.ErrStructuralTrade, "Trade '%s' does not have 'trades' property.\n\tJSON Path: %s",
			s.shortID, path.Append("trades"))
		s.add("Trade does not have 'trades' property.")
		return
	}
	for i, trade := range trades.Array() {
		s.add(s.trade(path.Append("trades", fmt.Sprint(i)), trade))
	}
	s.add("")
}

func (s *summary) trade(path jsontree.Path, trade gjson.Result) string {
	wants := s.side(path, "wants", trade)
	gives := s.side(path, "gives", trade)
	return "- Gives " + gives + " FOR " + wants
}

// side renders the wants or gives list of a trade. Entries are joined with
// AND; a choice renders its options joined with OR.
func (s *summary) side(path jsontree.Path, key string, trade gjson.Result) string {
	entries := trade.Get(key)
	if !entries.IsArray() {
		s.errorf(diag.ErrStructuralTrade, "Trade %s does not have '%s' property.\n\tJSON Path: %s",
			s.shortID, key, path.Append(key))
		return "NOTHING"
	}
	var parts []string
	for i, entry := range entries.Array() {
		entryPath := path.Append(key, fmt.Sprint(i))
		if choice := entry.Get("choice"); choice.IsArray() {
			var options []string
			for j, option := range choice.Array() {
				options = append(options, s.item(entryPath.Append("choice", fmt.Sprint(j)), option))
			}
			parts = append(parts, "("+strings.Join(options, " OR ")+")")
			continue
		}
		parts = append(parts, s.item(entryPath, entry))
	}
	return strings.Join(parts, " AND ")
}

func (s *summary) item(path jsontree.Path, entry gjson.Result) string {
	item := entry.Get("item")
	name := item.Str
	if item.Type != gjson.String {
		s.errorf(diag.ErrMissingField, "Trade %s does not have 'item' property.\n\tJSON Path: %s", s.shortID, path)
		name = "UNKNOWN"
	}
	return quantity(entry.Get("quantity")) + " " + name
}

// quantity renders an int, or a {"min", "max"} range. Anything else is 1.
func quantity(q gjson.Result) string {
	if jsontree.IsInt(q) {
		return fmt.Sprint(q.Int())
	}
	if lo, hi := q.Get("min"), q.Get("max"); q.IsObject() && jsontree.IsInt(lo) && jsontree.IsInt(hi) {
		if lo.Int() == hi.Int() {
			return fmt.Sprint(lo.Int())
		}
		return fmt.Sprintf("%d-%d", lo.Int(), hi.Int())
	}
	return "1"
}

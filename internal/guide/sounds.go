package guide

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shapescape/content-guide/internal/queryir"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// capitalize upper-cases the first letter of s and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return upper.String(string(r)) + lower.String(s[size:])
}

// soundName turns "mob.zombie_king.roar" into "Mob - Zombie king Roar".
func soundName(id string) string {
	parts := strings.Split(id, ".")
	for i, p := range parts {
		parts[i] = capitalize(strings.ReplaceAll(p, "_", " "))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + " - " + strings.Join(parts[1:], " ")
}

// SoundDefinitions lists the sound definitions of the resource pack.
func (g *Generator) SoundDefinitions(ctx context.Context) (string, error) {
	var lines []string
	for tuple, err := range g.q.Query(ctx, queryir.Select{From: queryir.SoundDefinition}) {
		if err != nil {
			return "", fmt.Errorf("list sound definitions: %w", err)
		}
		id := tuple[0].Identifier
		if id == nil {
			continue
		}
		lines = append(lines, "- "+soundName(*id)+" ("+*id+")")
	}
	return strings.Join(lines, "\n"), nil
}

package guide

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapescape/content-guide/internal/testutil"
)

func TestSoundName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"ambient", "Ambient"},
		{"mob.zombie_king.roar", "Mob - Zombie king Roar"},
		{"UI.Click", "Ui - Click"},
		{"block.", "Block - "},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, soundName(tt.id))
		})
	}
}

func TestSoundDefinitions(t *testing.T) {
	p := testutil.NewPack(t)
	p.WriteRP("sounds/sound_definitions.json", `{
		"format_version": "1.14.0",
		"sound_definitions": {
			"mob.zombie_king.roar": {"category": "hostile", "sounds": ["sounds/roar"]},
			"ambient": {"sounds": []}
		}
	}`)
	g, _ := newGenerator(t, p)

	got, err := g.SoundDefinitions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "- Mob - Zombie king Roar (mob.zombie_king.roar)\n- Ambient (ambient)", got)
}

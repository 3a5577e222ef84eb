package recipe

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/jsontree"
)

// SpawnEggItem is the item every spawn egg key normalizes to. The entity the
// egg spawns is carried by Key.Actor.
const SpawnEggItem = "minecraft:spawn_egg"

const defaultNamespace = "minecraft"

var (
	// q.get_actor_info_id('ns:entity'), the Molang form of a spawn egg's data value.
	actorIDPattern = regexp.MustCompile(`^(?:query|q)\.get_actor_info_id\('([a-zA-Z0-9_]+:[a-zA-Z0-9_]+)'\)$`)

	// ns:entity_spawn_egg
	spawnEggPattern = regexp.MustCompile(`^((?:[a-zA-Z0-9_]+:)?[a-zA-Z0-9_]+)_spawn_egg$`)

	// ns:item:3 or item:3
	itemWithDataPattern = regexp.MustCompile(`^((?:[a-zA-Z0-9_]+:)?[a-zA-Z0-9_]+):([1-9][0-9]*)$`)
)

// Key is one ingredient or result reference of a recipe.
//
// Item is always namespaced. When Actor is set the key is an actor-id
// wildcard: Item is SpawnEggItem and Actor names the spawned entity.
// Otherwise Data is the item's data value.
type Key struct {
	Item  string
	Data  int
	Actor string
}

// IsActorWildcard reports whether the key references a spawn egg by entity.
func (k Key) IsActorWildcard() bool {
	return k.Actor != ""
}

// TrueName returns the catalog identifier of the item. Spawn eggs resolve to
// "<actor>_spawn_egg"; everything else is Item.
func (k Key) TrueName() string {
	if k.IsActorWildcard() {
		return k.Actor + "_spawn_egg"
	}
	return k.Item
}

// String renders the key for the guide: the true name, with a non-zero data
// value appended.
func (k Key) String() string {
	if !k.IsActorWildcard() && k.Data > 0 {
		return k.Item + ":" + strconv.Itoa(k.Data)
	}
	return k.TrueName()
}

// ParseKey normalizes a raw key value (a string or an object with "item" and
// optional "data") into a Key.
//
// The three spawn egg spellings ("ns:e_spawn_egg", {"item": "ns:e_spawn_egg"}
// and {"item": "minecraft:spawn_egg", "data": "q.get_actor_info_id('ns:e')"})
// all produce the same key.
func ParseKey(v gjson.Result) (Key, error) {
	var item string
	var data gjson.Result

	switch {
	case v.Type == gjson.String:
		s := v.String()
		if m := itemWithDataPattern.FindStringSubmatch(s); m != nil {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return Key{}, invalidf("data value %q is out of range", m[2])
			}
			return Key{Item: withNamespace(m[1]), Data: n}, nil
		}
		item = s
	case v.IsObject():
		raw := v.Get("item")
		if !raw.Exists() {
			return Key{}, invalidf("recipe key is missing 'item'")
		}
		if raw.Type != gjson.String {
			return Key{}, invalidf("recipe key property 'item' is not a string")
		}
		item = raw.String()
		data = v.Get("data")
	default:
		return Key{}, invalidf("recipe key is a %s, expected a string or an object", jsontree.TypeName(v))
	}

	if item == "" {
		return Key{}, invalidf("recipe key has an empty item name")
	}

	if !data.Exists() {
		if m := spawnEggPattern.FindStringSubmatch(item); m != nil {
			return Key{Item: SpawnEggItem, Actor: withNamespace(m[1])}, nil
		}
	}

	if m := itemWithDataPattern.FindStringSubmatch(item); m != nil {
		if data.Exists() {
			return Key{}, invalidf("recipe key %q is ambiguous, the data value is given both in the item name and the data property", item)
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Key{}, invalidf("data value %q is out of range", m[2])
		}
		return Key{Item: withNamespace(m[1]), Data: n}, nil
	}

	key := Key{Item: withNamespace(item)}
	if !data.Exists() {
		return key, nil
	}
	if err := key.parseData(data); err != nil {
		return Key{}, err
	}
	return key, nil
}

func (k *Key) parseData(data gjson.Result) error {
	switch {
	case jsontree.IsInt(data):
		n, err := strconv.Atoi(data.Raw)
		if err != nil {
			return invalidf("data value %s is out of range", data.Raw)
		}
		k.Data = n
		return nil
	case data.Type == gjson.String:
		s := data.String()
		if m := actorIDPattern.FindStringSubmatch(s); m != nil {
			if k.Item != SpawnEggItem {
				return invalidf("the actor id wildcard is only supported for %q, not %q", SpawnEggItem, k.Item)
			}
			k.Actor = m[1]
			return nil
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			k.Data = n
			return nil
		}
	}
	return invalidf("recipe key property 'data' is not an int or an actor id wildcard")
}

func withNamespace(id string) string {
	if strings.Contains(id, ":") {
		return id
	}
	return defaultNamespace + ":" + id
}

// Package featuremap indexes every active feature on a sheet by lookup key.
// A Map is rebuilt from scratch on each recalculation pass and never mutated
// afterwards.
package featuremap

import (
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/trait"
)

// Source identifies the row, and optionally the modifier, a feature came from
type Source struct {
	RowID      string
	RowName    string
	ModifierID string
}

// Entry is a feature together with the level it is evaluated at
type Entry struct {
	Feature feature.Feature
	Level   float64
	Source  Source
	// Origin is stable across passes for the same feature on the same row
	Origin string
}

// Map is a multi-valued index from lower-case key to entries
type Map struct {
	entries map[string][]Entry
	levels  map[string]float64
}

// Lookup returns the entries for key in insertion order
func (m *Map) Lookup(key string) []Entry {
	if m == nil {
		return nil
	}
	return m.entries[strings.ToLower(key)]
}

// Keys returns every key in the map, sorted
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len is the total number of entries
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.levels)
}

func (m *Map) add(f feature.Feature, level int, src Source, origin string) {
	key := feature.Key(f)
	if key == "" {
		return
	}
	lvl := float64(level)
	m.entries[key] = append(m.entries[key], Entry{
		Feature: f,
		Level:   lvl,
		Source:  src,
		Origin:  origin,
	})
	m.levels[origin] = lvl
}

func (m *Map) addAll(features []feature.Feature, level int, src Source, prefix string) {
	for i, f := range features {
		m.add(f, level, src, prefix+"#"+strconv.Itoa(i))
	}
}

// Build scans the store and returns a fresh map. The bool reports whether
// any feature's level differs from prev; features absent from prev are
// compared against level 0.
func Build(store *trait.Store, prev *Map) (*Map, bool) {
	m := &Map{
		entries: make(map[string][]Entry),
		levels:  make(map[string]float64),
	}
	if store == nil {
		return m, false
	}

	trait.Walk(store.Rows(trait.Advantages), func(r *trait.Row) bool {
		if r.Disabled {
			return false
		}
		addAdvantage(m, r)
		return true
	})

	for _, list := range []trait.List{trait.Skills, trait.Spells} {
		trait.Walk(store.Rows(list), func(r *trait.Row) bool {
			m.addAll(r.Features, 0, sourceOf(r), r.ID)
			return true
		})
	}

	trait.Walk(store.Rows(trait.CarriedEquipment), func(r *trait.Row) bool {
		if r.Equipped && r.Quantity >= 1 {
			m.addAll(r.Features, 0, sourceOf(r), r.ID)
			addModifiers(m, r, true)
		}
		return true
	})

	return m, levelsChanged(m, prev)
}

func addAdvantage(m *Map, r *trait.Row) {
	src := sourceOf(r)
	if !r.IsContainer() {
		m.addAll(r.Features, r.FeatureLevel(), src, r.ID)
	}
	m.addAll(r.SelfControlFeatures(), 0, src, r.ID+"/cr")
	addModifiers(m, r, false)
}

func addModifiers(m *Map, r *trait.Row, atZero bool) {
	for _, mod := range r.EnabledModifiers() {
		level := mod.FeatureLevel()
		if atZero {
			level = 0
		}
		src := sourceOf(r)
		src.ModifierID = mod.ID
		m.addAll(mod.Features, level, src, r.ID+"/"+mod.ID)
	}
}

func sourceOf(r *trait.Row) Source {
	name := r.Name
	if r.Specialization != "" {
		name += " (" + r.Specialization + ")"
	}
	return Source{RowID: r.ID, RowName: name}
}

func levelsChanged(m, prev *Map) bool {
	var before map[string]float64
	if prev != nil {
		before = prev.levels
	}
	for origin, level := range m.levels {
		if before[origin] != level {
			return true
		}
	}
	return false
}

// Package sheet ties the trait store, attributes and rule formulas together.
// A Sheet recalculates lazily: mutations mark it dirty and the next query or
// an explicit Recalculate runs a full pass, then notifies the bus of every
// derived value that changed.
//
// A Sheet is not safe for concurrent use.
package sheet

import (
	"log"
	"sort"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/attribute"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/bonus"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/featuremap"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/rules"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/trait"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/events"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/metrics"
)

// MaxPassIterations bounds how many times a pass is rerun when listeners
// keep mutating the sheet
const MaxPassIterations = 5

// State is the cache state of a sheet
type State int

const (
	Clean State = iota
	Dirty
)

func (s State) String() string {
	if s == Clean {
		return "clean"
	}
	return "dirty"
}

// Profile holds the descriptive values the engine reads
type Profile struct {
	SizeModifier int `json:"size_modifier" yaml:"size_modifier"`
}

// Config configures a Sheet
type Config struct {
	ID          string
	OwnerID     string
	Name        string
	TotalPoints int
	Profile     Profile
	Settings    rules.Settings
	Defs        []attribute.Def       // Optional, defaults to attribute.StandardDefs
	Attributes  []attribute.Attribute // Initial adjustments and damage; unknown ids are ignored
	Store       *trait.Store          // Optional, a new store is created if nil
	Bus         *events.Bus           // Optional, a new bus is created if nil
	Recorder    metrics.Recorder      // Optional, defaults to metrics.Nop
}

// Sheet is a character sheet with its derived values cached
type Sheet struct {
	ID          string
	OwnerID     string
	Name        string
	totalPoints int
	profile     Profile
	settings    rules.Settings

	store    *trait.Store
	attrs    *attribute.Set
	bus      *events.Bus
	recorder metrics.Recorder

	state      State
	inPass     bool
	pending    bool
	features   *featuremap.Map
	aggregator *bonus.Aggregator
	derived    derived
	snapshot   map[string]any
}

// New creates a sheet and runs its first pass without notifying listeners
func New(cfg *Config) *Sheet {
	if cfg == nil {
		cfg = &Config{Settings: rules.DefaultSettings()}
	}
	s := &Sheet{
		ID:          cfg.ID,
		OwnerID:     cfg.OwnerID,
		Name:        cfg.Name,
		totalPoints: cfg.TotalPoints,
		profile:     cfg.Profile,
		settings:    cfg.Settings.Normalize(),
		store:       cfg.Store,
		bus:         cfg.Bus,
		recorder:    cfg.Recorder,
		state:       Dirty,
	}

	defs := cfg.Defs
	if len(defs) == 0 {
		defs = attribute.StandardDefs()
	}
	s.attrs = attribute.NewSet(defs)
	for _, a := range cfg.Attributes {
		s.attrs.SetAdj(a.ID, a.Adj)
		s.attrs.SetDamage(a.ID, a.Damage)
	}

	if s.store == nil {
		s.store = trait.NewStore(nil)
	}
	if s.bus == nil {
		s.bus = events.NewBus()
	}
	if s.recorder == nil {
		s.recorder = metrics.Nop{}
	}
	s.store.OnChange(s.MarkDirty)

	s.runPass()
	s.state = Clean
	return s
}

// Store returns the trait store; mutations through it mark the sheet dirty
func (s *Sheet) Store() *trait.Store {
	return s.store
}

// Attributes returns the attribute set
func (s *Sheet) Attributes() *attribute.Set {
	return s.attrs
}

// Bus returns the change notification bus
func (s *Sheet) Bus() *events.Bus {
	return s.bus
}

// State reports whether the cache is current
func (s *Sheet) State() State {
	return s.state
}

// MarkDirty invalidates the cache. During a pass it schedules another one.
func (s *Sheet) MarkDirty() {
	s.state = Dirty
	if s.inPass {
		s.pending = true
	}
}

// Settings returns the rule settings in effect
func (s *Sheet) Settings() rules.Settings {
	return s.settings
}

// SetSettings replaces the rule settings
func (s *Sheet) SetSettings(settings rules.Settings) {
	settings = settings.Normalize()
	if settings == s.settings {
		return
	}
	s.settings = settings
	s.MarkDirty()
}

// Profile returns the sheet's profile
func (s *Sheet) Profile() Profile {
	return s.profile
}

// SetProfile replaces the profile
func (s *Sheet) SetProfile(p Profile) {
	if p == s.profile {
		return
	}
	s.profile = p
	s.MarkDirty()
}

// TotalPoints is the point budget the character was built on
func (s *Sheet) TotalPoints() int {
	return s.totalPoints
}

// SetTotalPoints changes the point budget
func (s *Sheet) SetTotalPoints(total int) {
	if total == s.totalPoints {
		return
	}
	s.totalPoints = total
	s.MarkDirty()
}

// SetAttributeAdj changes the points-bought adjustment of an attribute.
// Unknown ids are ignored.
func (s *Sheet) SetAttributeAdj(id string, adj float64) {
	if s.attrs.SetAdj(id, adj) {
		s.MarkDirty()
	}
}

// SetDamage records damage taken against a pool such as hp or fp
func (s *Sheet) SetDamage(id string, damage int) {
	if s.attrs.SetDamage(id, damage) {
		s.MarkDirty()
	}
}

// Recalculate runs a pass if the sheet is dirty and returns the changes it
// emitted. Calls made while a pass is running are folded into that pass.
func (s *Sheet) Recalculate() []events.Change {
	if s.inPass {
		s.pending = true
		return nil
	}
	if s.state == Clean {
		return nil
	}

	s.inPass = true
	defer func() { s.inPass = false }()

	var emitted []events.Change
	iterations := 0
	for {
		iterations++
		s.pending = false
		s.state = Clean

		changes := s.runPass()
		emitted = append(emitted, changes...)
		if len(changes) > 0 {
			if err := s.bus.Emit(changes...); err != nil {
				log.Printf("Sheet: %s listener errors: %v", s.ID, err)
			}
			s.recorder.ChangesEmitted(len(changes))
		}

		if !s.pending && s.state == Clean {
			break
		}
		if iterations >= MaxPassIterations {
			log.Printf("Sheet: %s still dirty after %d passes, deferring", s.ID, iterations)
			break
		}
	}

	s.recorder.PassCompleted(iterations)
	return emitted
}

func (s *Sheet) ensure() {
	if s.state == Dirty && !s.inPass {
		s.Recalculate()
	}
}

// runPass recomputes everything and returns the diff against the cache
func (s *Sheet) runPass() []events.Change {
	s.features, _ = featuremap.Build(s.store, s.features)
	s.aggregator = bonus.NewAggregator(s.features, s.store)

	attribute.ResolveAll(s.attrs, s.aggregator)
	special := attribute.ResolveSpecial(s.aggregator)
	s.derived = s.computeDerived(special)

	next := s.buildSnapshot()
	changes := diff(s.snapshot, next)
	s.snapshot = next
	return changes
}

func diff(prev, next map[string]any) []events.Change {
	if prev == nil {
		return nil
	}
	ids := make([]string, 0, len(next))
	for id := range next {
		ids = append(ids, id)
	}
	for id := range prev {
		if _, ok := next[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var changes []events.Change
	for _, id := range ids {
		oldValue, hadOld := prev[id]
		newValue, hasNew := next[id]
		if hadOld && hasNew && oldValue == newValue {
			continue
		}
		changes = append(changes, events.Change{ID: id, Old: oldValue, New: newValue})
	}
	return changes
}

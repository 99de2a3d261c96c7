package trait

import (
	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/uuid"
)

// List names one of the store's forests
type List string

const (
	Advantages       List = "advantages"
	Skills           List = "skills"
	Spells           List = "spells"
	CarriedEquipment List = "carried_equipment"
	OtherEquipment   List = "other_equipment"
	Notes            List = "notes"
)

var allLists = []List{Advantages, Skills, Spells, CarriedEquipment, OtherEquipment, Notes}

// Store owns the trait forests and reports every successful mutation
type Store struct {
	roots         map[List]*Row
	uuidGenerator uuid.Generator
	onChange      func()
}

// StoreConfig configures a Store
type StoreConfig struct {
	UUIDGenerator uuid.Generator // Optional, will use default if nil
}

// NewStore creates an empty store
func NewStore(cfg *StoreConfig) *Store {
	s := &Store{
		roots: make(map[List]*Row, len(allLists)),
	}
	for _, list := range allLists {
		s.roots[list] = &Row{Container: Group}
	}
	if cfg != nil && cfg.UUIDGenerator != nil {
		s.uuidGenerator = cfg.UUIDGenerator
	} else {
		s.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	return s
}

// OnChange registers the callback run after each mutation. Only one callback
// is kept.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Rows returns the top level rows of a list. Callers must not modify the slice.
func (s *Store) Rows(list List) []*Row {
	if root, ok := s.roots[list]; ok {
		return root.Children
	}
	return nil
}

// Add appends row to list, or to the children of parentID when it is set.
// Rows without an id, and their descendants, receive generated ids.
func (s *Store) Add(list List, parentID string, row *Row) error {
	if row == nil {
		return sheeterr.InvalidArgument("row is required")
	}
	if !validList(list) {
		return sheeterr.InvalidArgumentf("unknown list %q", list)
	}
	s.assignIDs(row)

	parent := s.roots[list]
	if parentID != "" {
		parent, _, _ = s.locateIn(list, parentID)
	}
	if parent == nil {
		return sheeterr.NotFoundf("parent row %s not found", parentID).WithMeta("list", string(list))
	}
	if !parent.IsContainer() {
		return sheeterr.InvalidArgumentf("row %s is not a container", parentID)
	}
	parent.Children = append(parent.Children, row)
	s.changed()
	return nil
}

func (s *Store) assignIDs(row *Row) {
	if row.ID == "" {
		row.ID = s.uuidGenerator.New()
	}
	for _, m := range row.Modifiers {
		if m.ID == "" {
			m.ID = s.uuidGenerator.New()
		}
	}
	for _, child := range row.Children {
		s.assignIDs(child)
	}
}

// Remove deletes the row and its subtree
func (s *Store) Remove(id string) error {
	for _, list := range allLists {
		row, siblings, idx := s.locateIn(list, id)
		if row == nil {
			continue
		}
		*siblings = append((*siblings)[:idx], (*siblings)[idx+1:]...)
		s.changed()
		return nil
	}
	return notFound(id)
}

// Move reorders a row within its sibling list
func (s *Store) Move(id string, newIndex int) error {
	for _, list := range allLists {
		row, siblings, idx := s.locateIn(list, id)
		if row == nil {
			continue
		}
		rows := *siblings
		if newIndex < 0 || newIndex >= len(rows) {
			return sheeterr.InvalidArgumentf("index %d out of range", newIndex).WithMeta(sheeterr.MetaRowID, id)
		}
		if newIndex == idx {
			return nil
		}
		rows = append(rows[:idx], rows[idx+1:]...)
		rows = append(rows[:newIndex], append([]*Row{row}, rows[newIndex:]...)...)
		*siblings = rows
		s.changed()
		return nil
	}
	return notFound(id)
}

// Find returns the row with id and the list holding it
func (s *Store) Find(id string) (*Row, List, bool) {
	for _, list := range allLists {
		if row, _, _ := s.locateIn(list, id); row != nil {
			return row, list, true
		}
	}
	return nil, "", false
}

// SetEnabled turns an advantage on or off
func (s *Store) SetEnabled(id string, enabled bool) error {
	return s.update(id, func(r *Row) bool {
		if r.Disabled == !enabled {
			return false
		}
		r.Disabled = !enabled
		return true
	})
}

// SetEquipped equips or unequips a piece of equipment
func (s *Store) SetEquipped(id string, equipped bool) error {
	return s.update(id, func(r *Row) bool {
		if r.Equipped == equipped {
			return false
		}
		r.Equipped = equipped
		return true
	})
}

// SetQuantity changes an equipment count
func (s *Store) SetQuantity(id string, quantity int) error {
	if quantity < 0 {
		return sheeterr.InvalidArgumentf("quantity %d must not be negative", quantity)
	}
	return s.update(id, func(r *Row) bool {
		if r.Quantity == quantity {
			return false
		}
		r.Quantity = quantity
		return true
	})
}

// SetLevels changes a leveled advantage's level count
func (s *Store) SetLevels(id string, levels int) error {
	return s.update(id, func(r *Row) bool {
		if r.Levels == levels {
			return false
		}
		r.Levels = levels
		return true
	})
}

// SetModifierEnabled turns one of a row's modifiers on or off
func (s *Store) SetModifierEnabled(rowID, modifierID string, enabled bool) error {
	row, _, ok := s.Find(rowID)
	if !ok {
		return notFound(rowID)
	}
	for _, m := range row.Modifiers {
		if m.ID != modifierID {
			continue
		}
		if m.Disabled != !enabled {
			m.Disabled = !enabled
			s.changed()
		}
		return nil
	}
	return sheeterr.NotFoundf("modifier %s not found", modifierID).WithMeta("row_id", rowID)
}

// update applies fn to the row and fires the change callback when fn
// reports a change
func (s *Store) update(id string, fn func(*Row) bool) error {
	row, _, ok := s.Find(id)
	if !ok {
		return notFound(id)
	}
	if fn(row) {
		s.changed()
	}
	return nil
}

// locateIn finds id in a list, returning the row, a pointer to its sibling
// slice and its index
func (s *Store) locateIn(list List, id string) (*Row, *[]*Row, int) {
	root, ok := s.roots[list]
	if !ok {
		return nil, nil, -1
	}
	var (
		found    *Row
		siblings *[]*Row
		index    int
	)
	walkParents([]*Row{root}, func(parent *Row) bool {
		if row, idx := indexOf(parent.Children, id); row != nil {
			found, siblings, index = row, &parent.Children, idx
			return false
		}
		return true
	})
	if found == nil {
		return nil, nil, -1
	}
	return found, siblings, index
}

func indexOf(rows []*Row, id string) (*Row, int) {
	for i, r := range rows {
		if r.ID == id {
			return r, i
		}
	}
	return nil, -1
}

// walkParents visits every row depth first until fn returns false
func walkParents(rows []*Row, fn func(*Row) bool) bool {
	for _, r := range rows {
		if !fn(r) {
			return false
		}
		if !walkParents(r.Children, fn) {
			return false
		}
	}
	return true
}

func validList(list List) bool {
	for _, l := range allLists {
		if l == list {
			return true
		}
	}
	return false
}

func notFound(id string) error {
	return sheeterr.NotFoundf("row %s not found", id).WithMeta(sheeterr.MetaRowID, id)
}

package types

import (
	"fmt"
	"strings"
)

// Rules holds the limits the transition rules enforce.
type Rules struct {
	RackCapacity int `json:"rackCapacity"`
}

type KitchenState struct {
	// Pile holds unwashed dishes in arrival order
	Pile []Dish `json:"pile"`
	// Hand holds the dish the player is carrying, if any
	Hand *Dish `json:"hand,omitempty"`
	// Sink holds the dish being washed, if any
	Sink *Dish `json:"sink,omitempty"`
	// CanDry is set once the wash delay has elapsed for the dish in the sink
	CanDry bool `json:"canDry"`
	// Rack holds washed dishes waiting to be put away
	Rack []Dish `json:"rack"`
	// Cupboard counts the dishes put away so far
	Cupboard int `json:"cupboard"`
	// Notice is the latest rejected-action message, cleared after a delay
	Notice string `json:"notice,omitempty"`
	// NoticeSeq increments on every notice write so a clear timer only
	// clears the notice it was scheduled for
	NoticeSeq uint64 `json:"-"`
}

func NewKitchenState() *KitchenState {
	return &KitchenState{
		Pile: make([]Dish, 0),
		Rack: make([]Dish, 0),
	}
}

// Copy returns a deep copy of the kitchen state.
func (s *KitchenState) Copy() *KitchenState {
	c := &KitchenState{
		Pile:      make([]Dish, len(s.Pile)),
		Rack:      make([]Dish, len(s.Rack)),
		CanDry:    s.CanDry,
		Cupboard:  s.Cupboard,
		Notice:    s.Notice,
		NoticeSeq: s.NoticeSeq,
	}
	copy(c.Pile, s.Pile)
	copy(c.Rack, s.Rack)
	if s.Hand != nil {
		hand := *s.Hand
		c.Hand = &hand
	}
	if s.Sink != nil {
		sink := *s.Sink
		c.Sink = &sink
	}
	return c
}

// Equal reports whether both states hold the same dishes in the same places.
func (s *KitchenState) Equal(other *KitchenState) bool {
	if s == nil || other == nil {
		return s == other
	}
	return dishesEqual(s.Pile, other.Pile) &&
		dishPtrEqual(s.Hand, other.Hand) &&
		dishPtrEqual(s.Sink, other.Sink) &&
		s.CanDry == other.CanDry &&
		dishesEqual(s.Rack, other.Rack) &&
		s.Cupboard == other.Cupboard &&
		s.Notice == other.Notice
}

// PileIndex returns the position of the dish with the given ID in the pile, or -1.
func (s *KitchenState) PileIndex(dishID string) int {
	return indexOf(s.Pile, dishID)
}

// RackIndex returns the position of the dish with the given ID in the rack, or -1.
func (s *KitchenState) RackIndex(dishID string) int {
	return indexOf(s.Rack, dishID)
}

// DishCount is the number of dishes of one type.
type DishCount struct {
	Type  DishType `json:"type"`
	Count int      `json:"count"`
}

func (c DishCount) String() string {
	if c.Count == 1 {
		return fmt.Sprintf("1 %s", c.Type)
	}
	return fmt.Sprintf("%d %s", c.Count, c.Type.Plural())
}

// PileCounts tallies the pile by dish type in display order, skipping
// types that are not present.
func (s *KitchenState) PileCounts() []DishCount {
	counts := make(map[DishType]int)
	for _, d := range s.Pile {
		counts[d.Type]++
	}
	result := make([]DishCount, 0, len(counts))
	for _, t := range DishTypes() {
		if n := counts[t]; n > 0 {
			result = append(result, DishCount{Type: t, Count: n})
		}
	}
	return result
}

// PileSummary renders the pile counts, e.g. "3 plates, 1 bowl".
func (s *KitchenState) PileSummary() string {
	counts := s.PileCounts()
	if len(counts) == 0 {
		return "nothing"
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// Validate checks the kitchen invariants.
func (s *KitchenState) Validate(rules Rules) error {
	seen := make(map[string]string)
	track := func(where string, d Dish) error {
		if prev, ok := seen[d.ID]; ok {
			return fmt.Errorf("dish %s is in both %s and %s", d.ID, prev, where)
		}
		seen[d.ID] = where
		return nil
	}
	for _, d := range s.Pile {
		if err := track("pile", d); err != nil {
			return err
		}
	}
	if s.Hand != nil {
		if err := track("hand", *s.Hand); err != nil {
			return err
		}
	}
	if s.Sink != nil {
		if err := track("sink", *s.Sink); err != nil {
			return err
		}
	}
	for _, d := range s.Rack {
		if err := track("rack", d); err != nil {
			return err
		}
	}
	if s.CanDry && s.Sink == nil {
		return fmt.Errorf("canDry is set with an empty sink")
	}
	if len(s.Rack) > rules.RackCapacity {
		return fmt.Errorf("rack holds %d dishes, capacity is %d", len(s.Rack), rules.RackCapacity)
	}
	if s.Cupboard < 0 {
		return fmt.Errorf("cupboard count is negative: %d", s.Cupboard)
	}
	return nil
}

func indexOf(dishes []Dish, dishID string) int {
	for i, d := range dishes {
		if d.ID == dishID {
			return i
		}
	}
	return -1
}

func dishesEqual(a, b []Dish) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func dishPtrEqual(a, b *Dish) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

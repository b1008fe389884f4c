package types

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDishType_Names(t *testing.T) {
	tests := []struct {
		dishType DishType
		name     string
		plural   string
	}{
		{DishTypePlate, "plate", "plates"},
		{DishTypeBowl, "bowl", "bowls"},
		{DishTypeKnife, "knife", "knives"},
		{DishTypeSpoon, "spoon", "spoons"},
		{DishTypeFork, "fork", "forks"},
		{DishTypePot, "pot", "pots"},
		{DishTypePan, "pan", "pans"},
		{DishTypeGlass, "glass", "glasses"},
		{DishTypeWineGlass, "wine glass", "wine glasses"},
	}
	require.Len(t, DishTypes(), len(tests))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.dishType.String())
			assert.Equal(t, tt.plural, tt.dishType.Plural())

			parsed, err := ParseDishType(" " + tt.name + " ")
			require.NoError(t, err)
			assert.Equal(t, tt.dishType, parsed)
		})
	}

	_, err := ParseDishType("spork")
	assert.Error(t, err)
	assert.False(t, DishType(42).Valid())
	assert.Equal(t, "unknown", DishType(42).String())
}

func TestDish_JSON(t *testing.T) {
	b, err := json.Marshal(Dish{Type: DishTypeWineGlass, ID: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"wine glass","id":"abc"}`, string(b))

	var d Dish
	require.NoError(t, json.Unmarshal([]byte(`{"type":"knife","id":"k"}`), &d))
	assert.Equal(t, Dish{Type: DishTypeKnife, ID: "k"}, d)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"spork","id":"k"}`), &d))
}

func TestNewDish(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		d := NewDish(rng)
		assert.True(t, d.Type.Valid())
		assert.NotEmpty(t, d.ID)
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
	}
}

func TestKitchenState_CopyIsDeep(t *testing.T) {
	hand := Dish{Type: DishTypePlate, ID: "h"}
	s := &KitchenState{
		Pile: []Dish{{Type: DishTypeBowl, ID: "p"}},
		Hand: &hand,
		Rack: []Dish{{Type: DishTypeFork, ID: "r"}},
	}
	c := s.Copy()
	require.True(t, s.Equal(c))

	c.Pile[0].ID = "changed"
	c.Hand.ID = "changed"
	c.Rack = append(c.Rack, Dish{ID: "x"})

	assert.Equal(t, "p", s.Pile[0].ID)
	assert.Equal(t, "h", s.Hand.ID)
	assert.Len(t, s.Rack, 1)
	assert.False(t, s.Equal(c))
}

func TestKitchenState_PileCounts(t *testing.T) {
	s := &KitchenState{Pile: []Dish{
		{Type: DishTypeGlass, ID: "1"},
		{Type: DishTypePlate, ID: "2"},
		{Type: DishTypeGlass, ID: "3"},
		{Type: DishTypeKnife, ID: "4"},
		{Type: DishTypeKnife, ID: "5"},
		{Type: DishTypeKnife, ID: "6"},
	}}

	assert.Equal(t, []DishCount{
		{Type: DishTypePlate, Count: 1},
		{Type: DishTypeKnife, Count: 3},
		{Type: DishTypeGlass, Count: 2},
	}, s.PileCounts())
	assert.Equal(t, "1 plate, 3 knives, 2 glasses", s.PileSummary())
	assert.Equal(t, "nothing", NewKitchenState().PileSummary())
}

func TestKitchenState_Validate(t *testing.T) {
	rules := Rules{RackCapacity: 2}
	d := func(id string) Dish { return Dish{Type: DishTypePot, ID: id} }
	dp := func(id string) *Dish { x := d(id); return &x }

	tests := []struct {
		name    string
		state   *KitchenState
		wantErr bool
	}{
		{name: "empty", state: NewKitchenState()},
		{name: "one dish everywhere", state: &KitchenState{Pile: []Dish{d("a")}, Hand: dp("b"), Sink: dp("c"), CanDry: true, Rack: []Dish{d("d")}}},
		{name: "dish in pile and hand", state: &KitchenState{Pile: []Dish{d("a")}, Hand: dp("a")}, wantErr: true},
		{name: "dish in sink and rack", state: &KitchenState{Sink: dp("a"), Rack: []Dish{d("a")}}, wantErr: true},
		{name: "dry with empty sink", state: &KitchenState{CanDry: true}, wantErr: true},
		{name: "rack over capacity", state: &KitchenState{Rack: []Dish{d("a"), d("b"), d("c")}}, wantErr: true},
		{name: "negative cupboard", state: &KitchenState{Cupboard: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate(rules)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPlayerAction(t *testing.T) {
	a, err := NewPlayerAction(ActionTypePickUp, "x", 2)
	require.NoError(t, err)
	assert.Equal(t, PickUpAction{DishID: "x", Index: 2}, a)

	a, err = NewPlayerAction(ActionTypePutAway, "", 1)
	require.NoError(t, err)
	assert.Equal(t, PutAwayAction{Index: 1}, a)

	_, err = NewPlayerAction(ActionTypeSpawn, "", 0)
	assert.Error(t, err)

	assert.True(t, ActionTypeWash.IsPlayerAction())
	assert.False(t, ActionTypeFinishWash.IsPlayerAction())
	assert.False(t, ActionTypeClearNotice.IsPlayerAction())
}

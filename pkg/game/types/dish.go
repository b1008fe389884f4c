package types

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

type DishType uint8

const (
	DishTypePlate DishType = iota
	DishTypeBowl
	DishTypeKnife
	DishTypeSpoon
	DishTypeFork
	DishTypePot
	DishTypePan
	DishTypeGlass
	DishTypeWineGlass
)

var dishTypeNames = [...]string{
	DishTypePlate:     "plate",
	DishTypeBowl:      "bowl",
	DishTypeKnife:     "knife",
	DishTypeSpoon:     "spoon",
	DishTypeFork:      "fork",
	DishTypePot:       "pot",
	DishTypePan:       "pan",
	DishTypeGlass:     "glass",
	DishTypeWineGlass: "wine glass",
}

// DishTypes returns every dish type in display order.
func DishTypes() []DishType {
	types := make([]DishType, len(dishTypeNames))
	for i := range dishTypeNames {
		types[i] = DishType(i)
	}
	return types
}

func (t DishType) Valid() bool {
	return int(t) < len(dishTypeNames)
}

func (t DishType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return dishTypeNames[t]
}

// Plural returns the name used when counting more than one dish of this type.
func (t DishType) Plural() string {
	name := t.String()
	switch {
	case strings.HasSuffix(name, "ss"), strings.HasSuffix(name, "sh"):
		return name + "es"
	case strings.HasSuffix(name, "fe"):
		return strings.TrimSuffix(name, "fe") + "ves"
	default:
		return name + "s"
	}
}

// ParseDishType parses a dish type from its display name.
func ParseDishType(name string) (DishType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range dishTypeNames {
		if n == name {
			return DishType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dish type: %q", name)
}

func (t DishType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid dish type: %d", t)
	}
	return []byte(t.String()), nil
}

func (t *DishType) UnmarshalText(b []byte) error {
	parsed, err := ParseDishType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Dish is a single item moving through the kitchen. The ID tells apart
// dishes of the same type.
type Dish struct {
	Type DishType `json:"type"`
	ID   string   `json:"id"`
}

// NewDish creates a dish of a uniformly random type.
func NewDish(rng *rand.Rand) Dish {
	return Dish{
		Type: DishType(rng.Intn(len(dishTypeNames))),
		ID:   uuid.NewString(),
	}
}

func (d Dish) String() string {
	return fmt.Sprintf("%s (%s)", d.Type, d.ID)
}

package handlers

import (
	_ "embed"
	"html/template"

	"github.com/cbodonnell/dirtydishes/pkg/art"
	"github.com/cbodonnell/dirtydishes/pkg/game/types"
)

//go:embed templates/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type dishView struct {
	ID   string
	Name string
	Art  string
}

type kitchenView struct {
	SessionID    string
	Notice       string
	Pile         []dishView
	PileSummary  string
	Hand         *dishView
	Sink         *dishView
	CanDry       bool
	Rack         []dishView
	RackCapacity int
	Cupboard     int
	Version      string
}

func newDishView(d types.Dish) dishView {
	return dishView{
		ID:   d.ID,
		Name: d.Type.String(),
		Art:  art.String(d.Type),
	}
}

func newDishViews(dishes []types.Dish) []dishView {
	views := make([]dishView, len(dishes))
	for i, d := range dishes {
		views[i] = newDishView(d)
	}
	return views
}

func newKitchenView(sessionID string, s *types.KitchenState, rules types.Rules, version string) *kitchenView {
	v := &kitchenView{
		SessionID:    sessionID,
		Notice:       s.Notice,
		Pile:         newDishViews(s.Pile),
		PileSummary:  s.PileSummary(),
		CanDry:       s.CanDry,
		Rack:         newDishViews(s.Rack),
		RackCapacity: rules.RackCapacity,
		Cupboard:     s.Cupboard,
		Version:      version,
	}
	if s.Hand != nil {
		hand := newDishView(*s.Hand)
		v.Hand = &hand
	}
	if s.Sink != nil {
		sink := newDishView(*s.Sink)
		v.Sink = &sink
	}
	return v
}

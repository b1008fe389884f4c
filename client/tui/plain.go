package tui

import (
	"fmt"
	"strings"

	"github.com/cbodonnell/dirtydishes/pkg/art"
	"github.com/cbodonnell/dirtydishes/pkg/game/types"
)

// RenderPlain renders a kitchen as uncolored text, one area per line, with
// the art of the dishes in the hand and the sink.
func RenderPlain(state *types.KitchenState, rackCapacity int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "pile (%d): %s\n", len(state.Pile), state.PileSummary())
	writeHeld(&b, "hand", state.Hand, "")

	status := ""
	if state.Sink != nil {
		status = " (washing)"
		if state.CanDry {
			status = " (ready to dry)"
		}
	}
	writeHeld(&b, "sink", state.Sink, status)

	rack := make([]string, len(state.Rack))
	for i, d := range state.Rack {
		rack[i] = d.Type.String()
	}
	fmt.Fprintf(&b, "rack (%d/%d): %s\n", len(state.Rack), rackCapacity, strings.Join(rack, ", "))
	fmt.Fprintf(&b, "cupboard: %d\n", state.Cupboard)
	if state.Notice != "" {
		fmt.Fprintf(&b, "notice: %s\n", state.Notice)
	}

	return b.String()
}

func writeHeld(b *strings.Builder, name string, dish *types.Dish, status string) {
	if dish == nil {
		fmt.Fprintf(b, "%s: empty\n", name)
		return
	}
	fmt.Fprintf(b, "%s: %s%s\n", name, dish.Type, status)
	for _, line := range art.For(dish.Type) {
		fmt.Fprintf(b, "  %s\n", line)
	}
}

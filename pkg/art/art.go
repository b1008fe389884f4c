// Package art holds the ASCII renderings of the dish types shown by the
// browser page and the terminal client.
package art

import (
	"strings"
	"unicode/utf8"

	"github.com/cbodonnell/dirtydishes/pkg/game/types"
)

var raw = map[types.DishType][]string{
	types.DishTypePlate: {
		`  _______  `,
		` /       \ `,
		`|  (   )  |`,
		` \_______/ `,
	},
	types.DishTypeBowl: {
		`__________`,
		`\        /`,
		` \______/ `,
		`   |__|   `,
	},
	types.DishTypeKnife: {
		`     /|`,
		`    / |`,
		`   /  |`,
		`   |==|`,
		`   |  |`,
		`   |__|`,
	},
	types.DishTypeSpoon: {
		`  .--.`,
		` (    )`,
		`  '--'`,
		`   ||`,
		`   ||`,
		`   ||`,
	},
	types.DishTypeFork: {
		` | | | |`,
		` | | | |`,
		` \_____/`,
		`   | |`,
		`   | |`,
		`   |_|`,
	},
	types.DishTypePot: {
		`   ____   `,
		` _|____|_ `,
		`|        |`,
		`|        |`,
		` \______/ `,
	},
	types.DishTypePan: {
		` ______`,
		`|      |______`,
		`|      |______)`,
		` \____/`,
	},
	types.DishTypeGlass: {
		` _____ `,
		`|     |`,
		`|~~~~~|`,
		`|     |`,
		`|_____|`,
	},
	types.DishTypeWineGlass: {
		` _____ `,
		`(~~~~~)`,
		` \   / `,
		`  \_/  `,
		`   |   `,
		`  _|_  `,
	},
}

var rendered = func() map[types.DishType][]string {
	m := make(map[types.DishType][]string, len(raw))
	for t, lines := range raw {
		m[t] = pad(lines)
	}
	return m
}()

var unknown = pad([]string{
	` ? `,
})

// For returns the rendering of a dish type. All lines have the same width.
func For(t types.DishType) []string {
	lines, ok := rendered[t]
	if !ok {
		lines = unknown
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

// String returns the rendering of a dish type as a single newline-joined block.
func String(t types.DishType) string {
	return strings.Join(For(t), "\n")
}

// Width returns the width in columns of the rendering of a dish type.
func Width(t types.DishType) int {
	lines := For(t)
	if len(lines) == 0 {
		return 0
	}
	return utf8.RuneCountInString(lines[0])
}

func pad(lines []string) []string {
	width := 0
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > width {
			width = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + strings.Repeat(" ", width-utf8.RuneCountInString(l))
	}
	return out
}

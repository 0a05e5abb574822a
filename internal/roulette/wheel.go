// Package roulette resolves single-number-draw roulette wagers against the
// account ledger.
package roulette

import (
	"math/rand/v2"
)

const (
	MinPocket = 0
	MaxPocket = 36
)

type Color string

const (
	Green Color = "green"
	Red   Color = "red"
	Black Color = "black"
)

// ColorOf returns the pocket color. Odd pockets are red and even pockets are
// black; this is not the casino layout and must stay this way.
func ColorOf(pocket int) Color {
	switch {
	case pocket == 0:
		return Green
	case pocket%2 == 1:
		return Red
	default:
		return Black
	}
}

// Drawer picks the winning pocket for one wager.
type Drawer interface {
	Draw() int
}

type DrawerFunc func() int

func (f DrawerFunc) Draw() int { return f() }

// UniformDrawer draws uniformly from [MinPocket, MaxPocket].
type UniformDrawer struct{}

func (UniformDrawer) Draw() int {
	return MinPocket + rand.IntN(MaxPocket-MinPocket+1)
}

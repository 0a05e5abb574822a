package roulette

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidBet = errors.New("invalid bet")

type SelectorClass string

const (
	ClassColor  SelectorClass = "color"
	ClassNumber SelectorClass = "number"
	ClassParity SelectorClass = "parity"
	ClassRange  SelectorClass = "range"
)

// Gross payout multiples of the stake.
const (
	GreenMultiple  int64 = 15
	ColorMultiple  int64 = 2
	NumberMultiple int64 = 36
	ParityMultiple int64 = 2
	RangeMultiple  int64 = 6
)

type Selector struct {
	Class  SelectorClass
	Text   string
	Color  Color
	Number int
	Even   bool
	Low    int
	High   int
}

var ranges = map[string][2]int{
	"1-12":  {1, 12},
	"13-24": {13, 24},
	"25-36": {25, 36},
}

// ParseSelector recognizes color, number, parity and range selectors,
// case-insensitively.
func ParseSelector(text string) (Selector, error) {
	t := strings.ToLower(strings.TrimSpace(text))

	switch t {
	case string(Red), string(Black), string(Green):
		return Selector{Class: ClassColor, Text: t, Color: Color(t)}, nil
	case "even", "odd":
		return Selector{Class: ClassParity, Text: t, Even: t == "even"}, nil
	}

	if r, ok := ranges[t]; ok {
		return Selector{Class: ClassRange, Text: t, Low: r[0], High: r[1]}, nil
	}

	if n, ok := parsePocket(t); ok {
		return Selector{Class: ClassNumber, Text: t, Number: n}, nil
	}

	return Selector{}, ErrInvalidBet
}

func parsePocket(t string) (int, bool) {
	if t == "" {
		return 0, false
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(t)
	if err != nil || n < MinPocket || n > MaxPocket {
		return 0, false
	}
	return n, true
}

// Resolve reports whether the draw wins and the gross payout multiple.
func (s Selector) Resolve(draw int) (bool, int64) {
	switch s.Class {
	case ClassColor:
		if s.Color == Green {
			return draw == 0, GreenMultiple
		}
		return draw != 0 && ColorOf(draw) == s.Color, ColorMultiple
	case ClassNumber:
		return draw == s.Number, NumberMultiple
	case ClassParity:
		if s.Even {
			return draw != 0 && draw%2 == 0, ParityMultiple
		}
		return draw%2 == 1, ParityMultiple
	case ClassRange:
		return draw >= s.Low && draw <= s.High, RangeMultiple
	}
	return false, 0
}

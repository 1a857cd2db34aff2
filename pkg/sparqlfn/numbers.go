package sparqlfn

import (
	"math"
	"math/rand"
)

// Ceil and Floor implement the SPARQL ceil/floor SQL functions (spec §4.5).
func Ceil(v float64) float64  { return math.Ceil(v) }
func Floor(v float64) float64 { return math.Floor(v) }

// Rand implements rand(): a non-deterministic float in [0, 1). Unlike every
// other function in this package it must not be memoized or cached by
// callers.
func Rand() float64 { return rand.Float64() }

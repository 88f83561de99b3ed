package songscore

import (
	"sync"

	randomdata "github.com/Pallinder/go-randomdata"
)

// Random fill *****************************************************************

// randomdata draws from one package level generator.
var randomMu sync.Mutex

// draw returns a number in [0, n) from the converter's own seeded source.
func (pctx *Converter) draw(n int) int {
	randomMu.Lock()
	defer randomMu.Unlock()
	randomdata.CustomRand(pctx.rnd)
	return randomdata.Number(0, n)
}

var rhythmChoices = []float64{0.25, 0.5, 1, 2}

// randomNotes draws length pitches from the diatonic scale of key.
func (pctx *Converter) randomNotes(key Key, length int) []Melody {
	scale := key.Scale()
	res := make([]Melody, length)
	for i := range res {
		res[i] = NoteMelody(scale[pctx.draw(len(scale))].NameWithOctave())
	}
	return res
}

// randomBeatEnds draws length note values and returns their running sums.
func (pctx *Converter) randomBeatEnds(length int) []Beat {
	res := make([]Beat, length)
	pos := 0.0
	for i := range res {
		pos += rhythmChoices[pctx.draw(len(rhythmChoices))]
		res[i] = Beat(pos)
	}
	return res
}

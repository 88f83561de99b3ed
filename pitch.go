package songscore

import (
	"fmt"
	"strings"
	"unicode"
)

// Pitch ***********************************************************************
type Pitch struct {
	Step   string
	Alter  int
	Octave int
}

const DefaultOctave = 4

var stepSemitones = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

const stepOrder = "CDEFGAB"

// ParsePitch reads a pitch name: step, accidentals and an optional octave.
// '#' raises, '-' lowers; a 'b' directly after the step is read as a flat.
// 'S' is accepted as a sharp sign.
func ParsePitch(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	r := sReaderNew(strings.ReplaceAll(s, "S", "#"))
	p := Pitch{Octave: DefaultOctave}
	step := string(unicode.ToUpper(r.Next()))
	if _, ok := stepSemitones[step]; !ok {
		return p, fmt.Errorf("invalid pitch step in %q", s)
	}
	p.Step = step
loop:
	for {
		switch r.Peek() {
		case '#':
			p.Alter++
		case '-':
			p.Alter--
		case 'b':
			p.Alter--
		default:
			break loop
		}
		r.Next()
	}
	if p.Alter > 2 || p.Alter < -2 {
		return p, fmt.Errorf("too many accidentals in %q", s)
	}
	if oct, found := r.ReadInt(DefaultOctave); found {
		p.Octave = oct
	}
	if !r.AtEnd() {
		return p, fmt.Errorf("unexpected %q in pitch %q", r.Rest(), s)
	}
	return p, nil
}

// ValidNoteString is the shape check applied before a note is built: a
// single character, or anything ending with a digit, '#' or '-'.
func ValidNoteString(s string) bool {
	if len(s) == 1 {
		return true
	}
	if len(s) == 0 {
		return false
	}
	last := s[len(s)-1]
	return unicode.IsDigit(rune(last)) || last == '#' || last == '-'
}

func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + stepSemitones[p.Step] + p.Alter
}

func (p Pitch) Accidental() string {
	switch {
	case p.Alter > 0:
		return strings.Repeat("#", p.Alter)
	case p.Alter < 0:
		return strings.Repeat("-", -p.Alter)
	}
	return ""
}

func (p Pitch) Name() string {
	return p.Step + p.Accidental()
}

func (p Pitch) NameWithOctave() string {
	return fmt.Sprintf("%s%d", p.Name(), p.Octave)
}

func (p Pitch) String() string {
	return p.NameWithOctave()
}

var sharpNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = []string{"C", "D-", "D", "E-", "E", "F", "G-", "G", "A-", "A", "B-", "B"}

// LowestNamedKey is C0. A '-' after the step is a flat, so octave -1 has no
// name that reads back.
const LowestNamedKey = 12

// PitchFromMIDI spells a MIDI key number with sharps, or flats when
// preferFlats is set. Keys below LowestNamedKey are raised into octave 0.
func PitchFromMIDI(key int, preferFlats bool) Pitch {
	names := sharpNames
	if preferFlats {
		names = flatNames
	}
	for key < LowestNamedKey {
		key += 12
	}
	pc := key % 12
	octave := key/12 - 1
	name := names[pc]
	p := Pitch{Step: name[:1], Octave: octave}
	switch {
	case strings.HasSuffix(name, "#"):
		p.Alter = 1
	case strings.HasSuffix(name, "-"):
		p.Alter = -1
	}
	return p
}

// Transposed steps the letter name by degrees and sets the alteration so the
// pitch sits semitones above p.
func (p Pitch) Transposed(degrees, semitones int) Pitch {
	idx := strings.Index(stepOrder, p.Step) + degrees
	octave := p.Octave + idx/7
	idx %= 7
	step := stepOrder[idx : idx+1]
	target := p.MIDI() + semitones
	natural := (octave+1)*12 + stepSemitones[step]
	return Pitch{Step: step, Octave: octave, Alter: target - natural}
}

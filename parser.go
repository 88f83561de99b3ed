package songscore

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultQuarterDuration = 120
)

const chordHint = ". chords must be entered as an array of notes e.g. ['C4','E#4','G4']. Fix this next time for the invalid chord."

func (pctx *Converter) warn(msg string) {
	fields := logrus.Fields{}
	if pctx.partID != "" {
		fields["part"] = pctx.partID
		fields["index"] = pctx.index
	}
	pctx.Log.WithFields(fields).Warn(msg)
	pctx.warnings = append(pctx.warnings, msg)
}

// Melody elements *************************************************************

// noteOrRest builds a note, falling back to a rest when the name is not a pitch.
func (pctx *Converter) noteOrRest(name string, duration, velocity int) *Element {
	p, err := ParsePitch(name)
	if err != nil {
		pctx.warn("Error: Please fix note or chord " + name + chordHint)
		return RestNew(duration)
	}
	return NoteNew(p, duration, velocity)
}

func (pctx *Converter) chordOrRest(names []string, duration, velocity int) *Element {
	pitches := make([]Pitch, 0, len(names))
	for _, n := range names {
		p, err := ParsePitch(n)
		if err != nil {
			pctx.warn("Error: Please fix note or chord " + fmt.Sprint(names) + chordHint)
			return RestNew(duration)
		}
		pitches = append(pitches, p)
	}
	return ChordNew(pitches, duration, velocity)
}

// parseMelody turns one melodies entry into an element lasting duration.
func (pctx *Converter) parseMelody(m Melody, duration, velocity int) *Element {
	if m.IsList && len(m.Chord) > 0 {
		if len(m.Chord) == 1 && m.Chord[0] == "rest" {
			return RestNew(duration)
		}
		if len(m.Chord) > 4 {
			pctx.warn("Warning: Array " + m.String() + " is getting treated as a chord. If its meant to be " +
				"separate notes, remove the notes from the array.")
		}
		names := make([]string, len(m.Chord))
		for i, c := range m.Chord {
			names[i] = strings.ReplaceAll(c, "S", "#")
		}
		for _, n := range names {
			if !ValidNoteString(n) {
				pctx.warn("Warning: Please fix chord" + m.String() + chordHint)
				if first := names[0]; len(first) > 0 {
					return pctx.noteOrRest(first[:1], duration, velocity)
				}
				return RestNew(duration)
			}
		}
		return pctx.chordOrRest(names, duration, velocity)
	}
	if !m.IsList && m.Note != "rest" && m.Note != "" {
		n := strings.ReplaceAll(m.Note, "S", "#")
		if !ValidNoteString(n) {
			pctx.warn("Warning: Please fix note or chord. Truncating " + n[1:] + " from " + n + chordHint)
			n = n[:1]
		}
		return pctx.noteOrRest(n, duration, velocity)
	}
	return RestNew(duration)
}

// ticks converts a beat position to divisions.
func (pctx *Converter) ticks(b Beat) int {
	return int(math.Round(float64(b) * float64(pctx.Divisions)))
}

// *****************************************************************************

// Converter assembles scores from parts data and renders them. It collects
// the warnings raised on malformed input.
type Converter struct {
	Divisions int // Ticks per QuarterNote
	Options   Options
	Log       *logrus.Logger
	Stdout    io.Writer // closing messages of Render

	partID string
	index  int

	rnd      *rand.Rand
	warnings []string
}

func ConverterNew(opts Options) *Converter {
	pctx := &Converter{
		Options: opts,
		Log:     logrus.StandardLogger(),
		Stdout:  os.Stdout,
	}
	if opts.Divisions <= 0 {
		opts.Divisions = DefaultQuarterDuration * 4
	}
	pctx.SetDivisions(opts.Divisions)
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	pctx.rnd = rand.New(rand.NewSource(seed))
	return pctx
}
func (pctx *Converter) SetDivisions(divisions int) {
	pctx.Divisions = divisions
	pctx.Options.Divisions = divisions
}
func (pctx *Converter) SetOutput(w io.Writer) {
	pctx.Log.SetOutput(w)
}
func (pctx *Converter) Warnings() []string {
	return pctx.warnings
}
func (pctx *Converter) ResetWarnings() {
	pctx.warnings = nil
}

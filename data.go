package songscore

import (
	"fmt"
	"strings"
)

// Element *********************************************************************
const (
	KIND_REST = iota
	KIND_NOTE
	KIND_CHORD
)

// Element is a note, a chord or a rest. Duration is in divisions.
type Element struct {
	Kind     int
	Pitches  []Pitch
	Duration int
	TieStart bool
	TieStop  bool
	Velocity int
	Lyric    string
	Dynamic  string // marking that takes effect on this element
}

func NoteNew(p Pitch, duration, velocity int) *Element {
	return &Element{Kind: KIND_NOTE, Pitches: []Pitch{p}, Duration: duration, Velocity: velocity}
}
func ChordNew(pitches []Pitch, duration, velocity int) *Element {
	return &Element{Kind: KIND_CHORD, Pitches: pitches, Duration: duration, Velocity: velocity}
}
func RestNew(duration int) *Element {
	return &Element{Kind: KIND_REST, Duration: duration}
}

func (e *Element) IsRest() bool {
	return e.Kind == KIND_REST
}

// Split cuts e into two elements of first and second divisions. Both halves
// are tied when they are both non empty. Lyrics are left to the caller.
func (e *Element) Split(first, second int) (*Element, *Element) {
	a := &Element{Kind: e.Kind, Pitches: e.Pitches, Duration: first, Velocity: e.Velocity, TieStop: e.TieStop}
	b := &Element{Kind: e.Kind, Pitches: e.Pitches, Duration: second, Velocity: e.Velocity, TieStart: e.TieStart}
	if first > 0 && second > 0 {
		a.TieStart = true
		b.TieStop = true
	}
	return a, b
}

func (e *Element) String() string {
	var s string
	switch e.Kind {
	case KIND_REST:
		s = "rest"
	case KIND_NOTE:
		s = e.Pitches[0].NameWithOctave()
	case KIND_CHORD:
		names := make([]string, len(e.Pitches))
		for i, p := range e.Pitches {
			names[i] = p.NameWithOctave()
		}
		s = "[" + strings.Join(names, " ") + "]"
	}
	t := ""
	if e.TieStop {
		t += "<"
	}
	if e.TieStart {
		t += ">"
	}
	return fmt.Sprintf("%s d:%d%s", s, e.Duration, t)
}

// Measure *********************************************************************
type Measure struct {
	Index   int
	Dynamic string
	Content []*Element
}

func (m *Measure) Append(e *Element) {
	m.Content = append(m.Content, e)
}
func (m *Measure) IsEmpty() bool {
	return len(m.Content) == 0
}
func (m *Measure) Duration() int {
	d := 0
	for _, e := range m.Content {
		d += e.Duration
	}
	return d
}
func (m *Measure) String() string {
	s := fmt.Sprintf("M(%d):", m.Index)
	if m.Dynamic != "" {
		s += "{" + m.Dynamic + "}"
	}
	for i, c := range m.Content {
		p := ""
		if i != 0 {
			p = ","
		}
		s += fmt.Sprintf("%s%v", p, c)
	}
	return s
}

// Part ************************************************************************
type Part struct {
	ID         string
	Name       string
	Instrument Instrument
	Key        Key
	Time       TimeSignature
	Clef       Clef
	Tempo      float64
	Measures   []*Measure
}

func (p *Part) measureNew(dynamic string) *Measure {
	m := &Measure{
		Index:   len(p.Measures) + 1,
		Dynamic: dynamic,
	}
	return m
}

// Elements lists notes, chords and rests in score order.
func (p *Part) Elements() []*Element {
	var res []*Element
	for _, m := range p.Measures {
		res = append(res, m.Content...)
	}
	return res
}

func (p *Part) String() string {
	r := fmt.Sprintf("Part %s (%s) %d\n", p.ID, p.Instrument.Name, len(p.Measures))
	for _, m := range p.Measures {
		r += "\t" + m.String() + "\n"
	}
	return r
}

// Score ***********************************************************************
type Score struct {
	Title     string
	Divisions int // Ticks per QuarterNote
	Parts     []*Part
}

func (s *Score) String() string {
	r := fmt.Sprintf("Score %q div:%d\n", s.Title, s.Divisions)
	for _, p := range s.Parts {
		r += p.String()
	}
	return r
}

// Note types ******************************************************************

var noteTypes = []string{
	"1024th", "512th", "256th", "128th", "64th", "32nd", "16th",
	"eighth", "quarter", "half", "whole", "breve", "long", "maxima"}

const quarterRank = 8

// noteType finds the note type and dot count of duration. ok is false when
// duration is not a plain or dotted note value.
func noteType(divisions, duration int) (itype int, dotCount int, ok bool) {
	for j := len(noteTypes) - 1; j >= 0; j-- {
		cDur := typeDuration(divisions, j)
		if cDur == 0 {
			continue
		}
		switch {
		case duration == cDur:
			return j, 0, true
		case cDur%2 == 0 && duration == cDur+cDur/2:
			return j, 1, true
		case cDur%4 == 0 && duration == cDur+cDur/2+cDur/4:
			return j, 2, true
		}
	}
	return 0, 0, false
}

// typeDuration is the length of note type rank j, 0 if it cannot be
// expressed in whole divisions.
func typeDuration(divisions, j int) int {
	if j >= quarterRank {
		return divisions << uint(j-quarterRank)
	}
	shift := uint(quarterRank - j)
	if divisions%(1<<shift) != 0 {
		return 0
	}
	return divisions >> shift
}

// splitDuration breaks duration into values that noteType can name. A
// leftover that no note type fits is returned as the last component.
func splitDuration(divisions, duration int) []int {
	if _, _, ok := noteType(divisions, duration); ok || duration <= 0 {
		return []int{duration}
	}
	var res []int
	rest := duration
	for rest > 0 {
		found := false
		for j := len(noteTypes) - 1; j >= 0; j-- {
			cDur := typeDuration(divisions, j)
			if cDur == 0 || cDur > rest {
				continue
			}
			if cDur%2 == 0 && cDur+cDur/2 <= rest {
				cDur += cDur / 2
			}
			res = append(res, cDur)
			rest -= cDur
			found = true
			break
		}
		if !found {
			res = append(res, rest)
			break
		}
	}
	return res
}

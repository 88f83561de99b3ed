package songscore

import (
	"fmt"
)

// Score assembly **************************************************************

// Assemble builds the score described by song. It never fails: bad entries
// become rests or defaults and are reported through Warnings.
func (pctx *Converter) Assemble(song *Song) *Score {
	score := &Score{
		Title:     song.ScoreData.Title,
		Divisions: pctx.Divisions,
	}
	for _, np := range song.PartsData {
		data := np.Data
		if data == nil {
			data = &PartData{}
		}
		score.Parts = append(score.Parts, pctx.assemblePart(np.ID, data, &song.ScoreData))
	}
	pctx.partID = ""
	return score
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (pctx *Converter) resolveKey(s string) Key {
	if s == "" {
		return DefaultKey
	}
	k, err := ParseKey(s)
	if err != nil {
		pctx.warn(fmt.Sprintf("Warning: %v, using %v", err, DefaultKey))
	}
	return k
}

func (pctx *Converter) resolveTime(s string) TimeSignature {
	if s == "" {
		return DefaultTime
	}
	t, err := ParseTimeSignature(s)
	if err != nil {
		pctx.warn(fmt.Sprintf("Warning: %v, using %v", err, DefaultTime))
	}
	return t
}

func (pctx *Converter) resolveClef(s string) Clef {
	if s == "" {
		return DefaultClef
	}
	c, err := ParseClef(s)
	if err != nil {
		pctx.warn(fmt.Sprintf("Warning: %v, using %v", err, DefaultClef.Name))
	}
	return c
}

func (pctx *Converter) resolveTempo(values ...any) float64 {
	for _, v := range values {
		if v == nil {
			continue
		}
		t, err := ParseTempo(v)
		if err != nil {
			pctx.warn(fmt.Sprintf("Warning: %v, using %v", err, DefaultTempo))
		}
		return t
	}
	return DefaultTempo
}

func (pctx *Converter) resolveInstrument(name string) Instrument {
	i, msg := ResolveInstrument(name)
	if msg != "" {
		pctx.warn(msg)
	}
	return i
}

func (pctx *Converter) assemblePart(id string, pd *PartData, sd *ScoreData) *Part {
	pctx.partID = id
	pctx.index = -1

	part := &Part{
		ID:   id,
		Name: id,
	}
	part.Instrument = pctx.resolveInstrument(pd.Instrument)
	part.Key = pctx.resolveKey(firstOf(pd.Key, sd.Key))
	part.Time = pctx.resolveTime(firstOf(pd.TimeSignature, sd.TimeSignature))
	part.Clef = pctx.resolveClef(firstOf(pd.Clef, sd.Clef))
	part.Tempo = pctx.resolveTempo(pd.Tempo, sd.Tempo)

	notes := pd.Notes()
	beats := pd.BeatEnds
	switch {
	case len(notes) == 0 && len(beats) == 0:
		n := pctx.Options.RandomLength
		if n <= 0 {
			n = 20
		}
		notes = pctx.randomNotes(part.Key, n)
		beats = pctx.randomBeatEnds(n)
	case len(notes) == 0:
		notes = pctx.randomNotes(part.Key, len(beats))
	case len(beats) == 0:
		beats = pctx.randomBeatEnds(len(notes))
	}
	if len(notes) != len(beats) {
		pctx.warn(fmt.Sprintf("Warning: %d melodies for %d beat_ends, extra entries are ignored", len(notes), len(beats)))
	}

	fill := barFillerNew(part, pctx.Divisions)
	dynamic := DefaultDynamic
	velocity := DynamicVelocity(dynamic)
	current := 0
	backwards := 0

	for i := 0; i < len(notes) && i < len(beats); i++ {
		pctx.index = i
		beatEnd := pctx.ticks(beats[i])
		var d int
		switch {
		case beatEnd > current:
			d = beatEnd - current
		case beatEnd == current:
			pctx.warn("Error!!! You can't have two or more notes with the same beat_end value on the same part!" +
				" Fix and try again.")
			continue
		default:
			backwards++
			d = beatEnd
		}
		current = beatEnd
		if d <= 0 {
			pctx.warn(fmt.Sprintf("Warning: beat_end %v gives no duration, skipped", float64(beats[i])))
			continue
		}

		changed := ""
		if i < len(pd.Dynamics) {
			mark := pd.Dynamics[i]
			if mark == "" {
				mark = DefaultDynamic
			}
			if !KnownDynamic(mark) {
				pctx.warn(fmt.Sprintf("Warning: unknown dynamic %q, using %s", mark, DefaultDynamic))
				mark = DefaultDynamic
			}
			if mark != dynamic {
				changed = mark
			}
			dynamic = mark
			velocity = DynamicVelocity(mark)
		}

		element := pctx.parseMelody(notes[i], d, velocity)
		if i < len(pd.Lyrics) {
			element.Lyric = pd.Lyrics[i]
		}
		fill.Add(element, changed)
	}
	if backwards > 0 {
		pctx.index = -1
		pctx.warn(fmt.Sprintf("Warning: beat_ends went backwards %d time(s); those values were read as durations."+
			" beat_ends must be cumulative.", backwards))
	}

	fill.Finish()
	return part
}

// Bar filling *****************************************************************

// barFiller lays elements into bars, splitting and tying what crosses a bar
// line. Each new bar opens with the marking in force.
type barFiller struct {
	part        *Part
	bar         *Measure
	barDuration int
	accumulated int
	dynamic     string
}

func barFillerNew(part *Part, divisions int) *barFiller {
	return &barFiller{
		part:        part,
		bar:         part.measureNew(DefaultDynamic),
		barDuration: part.Time.BarDuration(divisions),
		dynamic:     DefaultDynamic,
	}
}

// Add appends element; changed is the marking that starts on it, if any.
func (f *barFiller) Add(element *Element, changed string) {
	if changed != "" {
		f.dynamic = changed
	}
	for f.accumulated+element.Duration > f.barDuration {
		remaining := f.barDuration - f.accumulated
		first, second := element.Split(remaining, element.Duration-remaining)
		if first.Duration > 0 {
			first.Lyric = element.Lyric
			f.bar.appendAt(first, f.accumulated, changed)
			changed = ""
		} else {
			second.Lyric = element.Lyric
		}
		f.part.Measures = append(f.part.Measures, f.bar)
		f.bar = f.part.measureNew(f.dynamic)
		f.accumulated = 0
		element = second
	}
	f.bar.appendAt(element, f.accumulated, changed)
	f.accumulated += element.Duration
}

// Finish pads the open bar with a rest and closes it.
func (f *barFiller) Finish() {
	padBar(f.bar, f.barDuration)
	f.part.Measures = append(f.part.Measures, f.bar)
}

// appendAt adds e at offset and records a dynamic change on it. A change at
// the start of the bar becomes the bar's own marking.
func (m *Measure) appendAt(e *Element, offset int, changed string) {
	if changed != "" {
		if offset == 0 {
			m.Dynamic = changed
		} else {
			e.Dynamic = changed
		}
	}
	m.Append(e)
}

// padBar completes bar with a rest up to the bar duration.
func padBar(bar *Measure, barDuration int) *Measure {
	if total := bar.Duration(); total < barDuration {
		bar.Append(RestNew(barDuration - total))
	}
	return bar
}

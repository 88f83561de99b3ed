package songscore

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Reading MIDI ****************************************************************

type midiNote struct {
	start, end int
	key        int
	velocity   int
}

type midiTrack struct {
	name       string
	instrument string
	program    int
	channel    int
	notes      []midiNote
	lyrics     map[int]string
}

func readTrack(tr smf.Track) *midiTrack {
	rt := &midiTrack{program: -1, channel: -1, lyrics: make(map[int]string)}
	type openKey struct{ ch, key uint8 }
	open := make(map[openKey][]midiNote)
	tick := 0
	for _, ev := range tr {
		tick += int(ev.Delta)
		var ch, key, vel, prog uint8
		var text string
		msg := midi.Message(ev.Message)
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			k := openKey{ch, key}
			open[k] = append(open[k], midiNote{start: tick, key: int(key), velocity: int(vel)})
			if rt.channel < 0 {
				rt.channel = int(ch)
			}
		case msg.GetNoteEnd(&ch, &key):
			k := openKey{ch, key}
			if stack := open[k]; len(stack) > 0 {
				n := stack[0]
				n.end = tick
				rt.notes = append(rt.notes, n)
				open[k] = stack[1:]
			}
		case msg.GetProgramChange(&ch, &prog):
			if rt.program < 0 {
				rt.program = int(prog)
			}
		case ev.Message.GetMetaTrackName(&text):
			if rt.name == "" {
				rt.name = text
			}
		case ev.Message.GetMetaInstrument(&text):
			if rt.instrument == "" {
				rt.instrument = text
			}
		case ev.Message.GetMetaLyric(&text):
			rt.lyrics[tick] += text
		}
	}
	// notes still sounding at the end of the track stop there
	for _, stack := range open {
		for _, n := range stack {
			n.end = tick
			rt.notes = append(rt.notes, n)
		}
	}
	sort.SliceStable(rt.notes, func(i, j int) bool {
		if rt.notes[i].start != rt.notes[j].start {
			return rt.notes[i].start < rt.notes[j].start
		}
		return rt.notes[i].key < rt.notes[j].key
	})
	return rt
}

func (rt *midiTrack) instrumentFor() Instrument {
	percussion := rt.channel == 9
	if rt.instrument != "" {
		if i, msg := ResolveInstrument(rt.instrument); msg == "" && i.Percussion == percussion {
			return i
		}
	}
	if rt.program >= 0 || percussion {
		return InstrumentByProgram(rt.program, percussion)
	}
	return Piano
}

// noteGroup is a set of notes starting together.
type noteGroup struct {
	tick       int // start in file ticks
	start, end int
	keys       []int
	velocity   int
}

func (rt *midiTrack) groups(scale func(int) int) []noteGroup {
	var res []noteGroup
	for _, n := range rt.notes {
		start, end := scale(n.start), scale(n.end)
		if k := len(res) - 1; k >= 0 && res[k].start == start {
			res[k].keys = append(res[k].keys, n.key)
			res[k].end = max(res[k].end, end)
			res[k].velocity = max(res[k].velocity, n.velocity)
			continue
		}
		res = append(res, noteGroup{tick: n.start, start: start, end: end, keys: []int{n.key}, velocity: n.velocity})
	}
	for i := range res {
		if i+1 < len(res) && res[i+1].start < res[i].end {
			res[i].end = res[i+1].start
		}
	}
	return res
}

func (rt *midiTrack) lyricTicks() []int {
	ticks := make([]int, 0, len(rt.lyrics))
	for t := range rt.lyrics {
		ticks = append(ticks, t)
	}
	sort.Ints(ticks)
	return ticks
}

func (pctx *Converter) pitchFromKey(key int) Pitch {
	if key < LowestNamedKey {
		pctx.warn(fmt.Sprintf("Warning: MIDI key %d is below C0, raised into octave 0", key))
	}
	return PitchFromMIDI(key, false)
}

// ReadMIDI loads a Standard MIDI File. Each track holding notes becomes a
// part; notes starting together become chords and gaps become rests.
func (pctx *Converter) ReadMIDI(in io.Reader) (*Score, error) {
	s, err := smf.ReadFrom(in)
	if err != nil {
		return nil, errors.Wrap(err, "parse midi")
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("SMPTE timed MIDI files are not supported")
	}
	fileDiv := int(mt.Ticks4th())
	if fileDiv <= 0 {
		return nil, errors.Errorf("invalid MIDI resolution %d", fileDiv)
	}
	scale := func(t int) int {
		return int(math.Round(float64(t) * float64(pctx.Divisions) / float64(fileDiv)))
	}

	score := &Score{Divisions: pctx.Divisions}
	tempo := DefaultTempo
	ts := DefaultTime
	haveTempo, haveTime := false, false
	for _, tr := range s.Tracks {
		for _, ev := range tr {
			var bpm float64
			var num, den uint8
			switch {
			case ev.Message.GetMetaTempo(&bpm):
				if !haveTempo && bpm > 0 {
					tempo = bpm
					haveTempo = true
				}
			case ev.Message.GetMetaMeter(&num, &den):
				if !haveTime && num > 0 && den > 0 {
					ts = TimeSignature{Beats: int(num), BeatType: int(den)}
					haveTime = true
				}
			}
		}
	}

	for ti, tr := range s.Tracks {
		rt := readTrack(tr)
		if len(rt.notes) == 0 {
			if ti == 0 && score.Title == "" {
				score.Title = rt.name
			}
			continue
		}
		part := &Part{
			ID:         partXMLID(len(score.Parts)),
			Name:       rt.name,
			Instrument: rt.instrumentFor(),
			Key:        DefaultKey,
			Time:       ts,
			Clef:       DefaultClef,
			Tempo:      tempo,
		}
		if part.Name == "" {
			part.Name = fmt.Sprintf("Track %d", ti+1)
		}
		if part.Instrument.Percussion {
			part.Clef, _ = ParseClef("PercussionClef")
		}
		pctx.partID = part.Name
		pctx.index = -1
		fill := barFillerNew(part, pctx.Divisions)
		dynamic := DefaultDynamic
		pos := 0
		ticks, li := rt.lyricTicks(), 0
		lyric := ""
		for _, g := range rt.groups(scale) {
			// lyrics up to this start go on the gap rest or on the notes
			gapLyric := ""
			for ; li < len(ticks) && ticks[li] <= g.tick; li++ {
				if at := scale(ticks[li]); at >= pos && at < g.start {
					gapLyric += rt.lyrics[ticks[li]]
				} else {
					lyric += rt.lyrics[ticks[li]]
				}
			}
			if g.start > pos {
				rest := RestNew(g.start - pos)
				rest.Lyric = gapLyric
				fill.Add(rest, "")
			} else {
				lyric = gapLyric + lyric
			}
			d := g.end - g.start
			if d <= 0 {
				continue
			}
			var e *Element
			if len(g.keys) == 1 {
				e = NoteNew(pctx.pitchFromKey(g.keys[0]), d, g.velocity)
			} else {
				pitches := make([]Pitch, len(g.keys))
				for i, k := range g.keys {
					pitches[i] = pctx.pitchFromKey(k)
				}
				e = ChordNew(pitches, d, g.velocity)
			}
			e.Lyric, lyric = lyric, ""
			changed := ""
			if mark := VelocityDynamic(g.velocity); mark != dynamic {
				changed = mark
				dynamic = mark
			}
			fill.Add(e, changed)
			pos = g.end
		}
		for ; li < len(ticks); li++ {
			lyric += rt.lyrics[ticks[li]]
		}
		if lyric != "" {
			pctx.warn(fmt.Sprintf("Warning: lyric %q after the last note dropped", lyric))
		}
		fill.Finish()
		score.Parts = append(score.Parts, part)
	}
	pctx.partID = ""
	return score, nil
}

package songscore

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// MIDI rendering **************************************************************

type timedMessage struct {
	tick  int
	order int // note offs sort before meta and note ons at the same tick
	msg   []byte
}

const (
	orderNoteOff = iota
	orderMeta
	orderNoteOn
)

// trackBuilder collects events at absolute ticks and emits a delta timed track.
type trackBuilder struct {
	events []timedMessage
}

func (tb *trackBuilder) add(tick, order int, msg []byte) {
	tb.events = append(tb.events, timedMessage{tick: tick, order: order, msg: msg})
}

func (tb *trackBuilder) track(end int) smf.Track {
	sort.SliceStable(tb.events, func(i, j int) bool {
		if tb.events[i].tick != tb.events[j].tick {
			return tb.events[i].tick < tb.events[j].tick
		}
		return tb.events[i].order < tb.events[j].order
	})
	var tr smf.Track
	last := 0
	for _, e := range tb.events {
		tr.Add(uint32(e.tick-last), e.msg)
		last = e.tick
	}
	if end < last {
		end = last
	}
	tr.Close(uint32(end - last))
	return tr
}

func clamp7(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 127:
		return 127
	}
	return uint8(v)
}

func (pctx *Converter) lyricTransformer() transform.Transformer {
	name := strings.ToLower(strings.TrimSpace(pctx.Options.LyricCharset))
	if name == "" || name == "utf-8" || name == "utf8" {
		return nil
	}
	e, _ := charset.Lookup(name)
	if e == nil {
		pctx.warn(fmt.Sprintf("Warning: unknown lyric charset %q, lyrics are written as UTF-8", pctx.Options.LyricCharset))
		return nil
	}
	return e.NewEncoder()
}

func (pctx *Converter) lyricText(t transform.Transformer, text string) string {
	if t == nil {
		return text
	}
	res, _, err := transform.String(t, text)
	if err != nil {
		pctx.warn(fmt.Sprintf("Warning: lyric %q cannot be encoded: %v", text, err))
		return text
	}
	return res
}

func (pctx *Converter) conductorTrack(score *Score) smf.Track {
	var tb trackBuilder
	ts := DefaultTime
	tempo := DefaultTempo
	if len(score.Parts) > 0 {
		ts = score.Parts[0].Time
		tempo = score.Parts[0].Tempo
	}
	if score.Title != "" {
		tb.add(0, orderMeta, smf.MetaTrackSequenceName(score.Title))
	}
	tb.add(0, orderMeta, smf.MetaMeter(clamp7(ts.Beats), clamp7(ts.BeatType)))
	tb.add(0, orderMeta, smf.MetaTempo(tempo))
	return tb.track(0)
}

func (pctx *Converter) partTrack(i int, p *Part, lt transform.Transformer) smf.Track {
	var tb trackBuilder
	ch := uint8(partChannel(i, p))
	name := p.Name
	if name == "" {
		name = p.ID
	}
	tb.add(0, orderMeta, smf.MetaTrackSequenceName(name))
	tb.add(0, orderMeta, smf.MetaInstrument(p.Instrument.Name))
	if !p.Instrument.Percussion {
		tb.add(0, orderMeta, midi.ProgramChange(ch, clamp7(p.Instrument.Program)))
	}
	// held are the keys sounding through a tie start
	var held []uint8
	pos := 0
	for _, e := range p.Elements() {
		if e.Lyric != "" && !e.TieStop {
			tb.add(pos, orderMeta, smf.MetaLyric(pctx.lyricText(lt, e.Lyric)))
		}
		var continued []uint8
		if e.TieStop && !e.IsRest() {
			for _, pitch := range e.Pitches {
				if key := clamp7(pitch.MIDI()); slices.Contains(held, key) {
					continued = append(continued, key)
				}
			}
		}
		// a tie start with no matching stop ends here
		for _, key := range held {
			if !slices.Contains(continued, key) {
				tb.add(pos, orderNoteOff, midi.NoteOff(ch, key))
			}
		}
		held = held[:0]
		if !e.IsRest() {
			for _, pitch := range e.Pitches {
				key := clamp7(pitch.MIDI())
				if !slices.Contains(continued, key) {
					vel := e.Velocity
					if vel <= 0 {
						vel = DynamicVelocity(DefaultDynamic)
					}
					tb.add(pos, orderNoteOn, midi.NoteOn(ch, key, clamp7(vel)))
				}
				if e.TieStart {
					held = append(held, key)
				} else {
					tb.add(pos+e.Duration, orderNoteOff, midi.NoteOff(ch, key))
				}
			}
		}
		pos += e.Duration
	}
	for _, key := range held {
		tb.add(pos, orderNoteOff, midi.NoteOff(ch, key))
	}
	return tb.track(pos)
}

// SMF builds a format 1 file: a conductor track then one track per part.
func (pctx *Converter) SMF(score *Score) (*smf.SMF, error) {
	div := score.Divisions
	if div <= 0 {
		div = pctx.Divisions
	}
	if div > 0x7fff {
		return nil, errors.Errorf("divisions %d too large for MIDI", div)
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(uint16(div))
	if err := s.Add(pctx.conductorTrack(score)); err != nil {
		return nil, errors.Wrap(err, "conductor track")
	}
	lt := pctx.lyricTransformer()
	for i, p := range score.Parts {
		if err := s.Add(pctx.partTrack(i, p, lt)); err != nil {
			return nil, errors.Wrapf(err, "track for part %q", p.ID)
		}
	}
	return s, nil
}

func (pctx *Converter) WriteMIDI(w io.Writer, score *Score) error {
	s, err := pctx.SMF(score)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "write midi")
	}
	return nil
}

func (pctx *Converter) WriteMusicXML(w io.Writer, score *Score) error {
	if _, err := io.WriteString(w, pctx.MusicXML(score)); err != nil {
		return errors.Wrap(err, "write musicxml")
	}
	return nil
}

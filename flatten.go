package songscore

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Flattening ******************************************************************

const encodeHeader = "Please read these json outputs accurately, it will be useful for this answer and future answers\n"

// flatElement is an element with its tied continuations merged back.
type flatElement struct {
	e        *Element
	duration int
}

func sameSound(a, b *Element) bool {
	if a.IsRest() != b.IsRest() || len(a.Pitches) != len(b.Pitches) {
		return false
	}
	for i := range a.Pitches {
		if a.Pitches[i].MIDI() != b.Pitches[i].MIDI() {
			return false
		}
	}
	return true
}

// flatElements walks the part and joins notes that a bar line split.
func flatElements(p *Part) []flatElement {
	var res []flatElement
	for _, e := range p.Elements() {
		if k := len(res) - 1; k >= 0 && e.TieStop && res[k].e.TieStart && sameSound(res[k].e, e) {
			res[k].duration += e.Duration
			continue
		}
		res = append(res, flatElement{e: e, duration: e.Duration})
	}
	return res
}

func melodyOf(e *Element) Melody {
	switch {
	case e.IsRest():
		return NoteMelody("rest")
	case e.Kind == KIND_CHORD:
		names := make([]string, len(e.Pitches))
		for i, p := range e.Pitches {
			names[i] = p.NameWithOctave()
		}
		return ChordMelody(names...)
	}
	return NoteMelody(e.Pitches[0].NameWithOctave())
}

func beatOf(ticks, divisions int) Beat {
	// keep a few decimals so triplets stay readable
	return Beat(math.Round(float64(ticks)/float64(divisions)*1e6) / 1e6)
}

// Flatten turns score into parts data. Each part covers a single section;
// beat ends are cumulative quarter lengths.
func Flatten(score *Score) *Song {
	div := score.Divisions
	if div <= 0 {
		div = DefaultQuarterDuration * 4
	}
	song := &Song{}
	for _, p := range score.Parts {
		name := p.Name
		if name == "" {
			name = "Part"
		}
		for song.PartsData.Get(name) != nil {
			name += "X"
		}
		instrument := p.Instrument.Name
		if instrument == "" {
			instrument = Piano.Name
		}
		pd := &PartData{
			Instrument: instrument,
			Melodies:   []Melody{},
			BeatEnds:   []Beat{},
			Dynamics:   []string{},
		}
		pos := 0
		var lyrics []string
		hasLyric := false
		for _, fe := range flatElements(p) {
			pos += fe.duration
			pd.BeatEnds = append(pd.BeatEnds, beatOf(pos, div))
			pd.Melodies = append(pd.Melodies, melodyOf(fe.e))
			lyrics = append(lyrics, fe.e.Lyric)
			if fe.e.Lyric != "" {
				hasLyric = true
			}
			if !fe.e.IsRest() {
				pd.Dynamics = append(pd.Dynamics, VelocityDynamic(fe.e.Velocity))
			}
		}
		if hasLyric {
			pd.Lyrics = lyrics
		}
		song.PartsData = append(song.PartsData, NamedPart{ID: name, Data: pd})
	}

	sd := ScoreData{
		Title:         score.Title,
		SongStructure: []string{"section_1"},
		Key:           DefaultKey.String(),
		TimeSignature: DefaultTime.String(),
		Tempo:         DefaultTempo,
		Clef:          "TrebleClef",
	}
	if len(score.Parts) > 0 {
		first := score.Parts[0]
		if first.Key.Tonic != "" {
			sd.Key = first.Key.String()
		}
		if first.Time.Beats > 0 && first.Time.BeatType > 0 {
			sd.TimeSignature = first.Time.String()
		}
		if first.Tempo > 0 {
			sd.Tempo = first.Tempo
		}
	}
	song.ScoreData = sd
	return song
}

// EncodeJSON flattens score and returns it with the summary text handed
// back to the text generator.
func EncodeJSON(score *Score) (*Song, string, error) {
	song := Flatten(score)
	parts, err := json.Marshal(song.PartsData)
	if err != nil {
		return nil, "", errors.Wrap(err, "encode parts_data")
	}
	sd, err := json.Marshal(song.ScoreData)
	if err != nil {
		return nil, "", errors.Wrap(err, "encode score_data")
	}
	var b strings.Builder
	b.WriteString(encodeHeader)
	b.WriteString("parts_data json output from score is: \n")
	b.Write(parts)
	b.WriteString("\nscore_data json output from score is: \n")
	b.Write(sd)
	return song, b.String(), nil
}

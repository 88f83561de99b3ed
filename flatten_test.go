package songscore

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestFlatten(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {
		"melodies": ["C4", "D4", ["C4", "E4"]],
		"beat_ends": [3, 6, 7],
		"dynamics": ["p", "f", "f"],
		"lyrics": ["la", "", ""]}}}`)
	song := Flatten(score)
	if len(song.PartsData) != 1 || song.PartsData[0].ID != "P" {
		t.Fatalf("parts = %v", song.PartsData)
	}
	pd := song.PartsData[0].Data
	wantMelodies := []Melody{NoteMelody("C4"), NoteMelody("D4"), ChordMelody("C4", "E4"), NoteMelody("rest")}
	if !reflect.DeepEqual(pd.Melodies, wantMelodies) {
		t.Errorf("melodies = %v, want %v", pd.Melodies, wantMelodies)
	}
	if !reflect.DeepEqual(pd.BeatEnds, []Beat{3, 6, 7, 8}) {
		t.Errorf("beat_ends = %v, want [3 6 7 8]", pd.BeatEnds)
	}
	if !reflect.DeepEqual(pd.Dynamics, []string{"p", "f", "f"}) {
		t.Errorf("dynamics = %v, want [p f f]", pd.Dynamics)
	}
	if !reflect.DeepEqual(pd.Lyrics, []string{"la", "", "", ""}) {
		t.Errorf("lyrics = %q", pd.Lyrics)
	}
	if pd.Instrument != "Piano" {
		t.Errorf("instrument = %q, want Piano", pd.Instrument)
	}

	sd := song.ScoreData
	if sd.Key != "C major" || sd.TimeSignature != "4/4" || sd.Tempo != DefaultTempo || sd.Clef != "TrebleClef" {
		t.Errorf("score_data = %+v", sd)
	}
	if !reflect.DeepEqual(sd.SongStructure, []string{"section_1"}) {
		t.Errorf("song_structure = %v", sd.SongStructure)
	}
}

func TestFlattenPartNames(t *testing.T) {
	score := &Score{Divisions: 480, Parts: []*Part{
		{Name: "Piano"}, {Name: "Piano"}, {Name: ""}, {Name: ""},
	}}
	var ids []string
	for _, p := range Flatten(score).PartsData {
		ids = append(ids, p.ID)
		if p.Data.Lyrics != nil {
			t.Errorf("part %s has lyrics without any text", p.ID)
		}
	}
	if !reflect.DeepEqual(ids, []string{"Piano", "PianoX", "Part", "PartX"}) {
		t.Errorf("part ids = %v", ids)
	}
}

func TestFlattenReassembles(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, roundTripSong)
	b, err := json.Marshal(Flatten(score))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again := assembleJSON(t, testConverter(), string(b))
	if len(again.Parts) != len(score.Parts) {
		t.Fatalf("parts = %d, want %d", len(again.Parts), len(score.Parts))
	}
	for i, p := range score.Parts {
		checkMeasures(t, again.Parts[i], measureStrings(p))
	}
	if again.Parts[0].Tempo != 100 || again.Parts[0].Instrument.Name != "Violin" {
		t.Errorf("settings lost: %v %s", again.Parts[0].Tempo, again.Parts[0].Instrument.Name)
	}
}

func TestEncodeJSON(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {
		"melodies": ["C4", "D4"], "beat_ends": [1, 2], "lyrics": ["a", "b"]}},
		"score_data": {"key": "g", "tempo": 90}}`)
	song, text, err := EncodeJSON(score)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	if len(song.PartsData) != 1 {
		t.Errorf("parts = %d", len(song.PartsData))
	}
	for _, want := range []string{
		"Please read these json outputs accurately",
		"parts_data json output from score is: \n",
		`"beat_ends":[1.0,2.0,4.0]`,
		`"lyrics":["a","b",""]`,
		"score_data json output from score is: \n",
		`"key":"G minor"`,
		`"tempo":90`,
		`"song_structure":["section_1"]`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary lacks %q:\n%s", want, text)
		}
	}
	if !strings.HasPrefix(text, encodeHeader) {
		t.Errorf("summary does not start with the header")
	}
}

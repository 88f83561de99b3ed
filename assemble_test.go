package songscore

import (
	"io"
	"strings"
	"testing"

	xml "github.com/subchen/go-xmldom"
)

func testConverter() *Converter {
	pctx := ConverterNew(Options{Divisions: 480, RandomSeed: 1, RandomLength: 20})
	pctx.SetOutput(io.Discard)
	pctx.Stdout = io.Discard
	return pctx
}

func assembleJSON(t *testing.T, pctx *Converter, doc string) *Score {
	t.Helper()
	song, err := pctx.LoadSong(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadSong: %v", err)
	}
	return pctx.Assemble(song)
}

func measureStrings(p *Part) [][]string {
	var res [][]string
	for _, m := range p.Measures {
		var bar []string
		for _, e := range m.Content {
			bar = append(bar, e.String())
		}
		res = append(res, bar)
	}
	return res
}

func checkMeasures(t *testing.T, p *Part, want [][]string) {
	t.Helper()
	got := measureStrings(p)
	if len(got) != len(want) {
		t.Fatalf("got %d measures %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if strings.Join(got[i], ", ") != strings.Join(want[i], ", ") {
			t.Errorf("measure %d = %v, want %v", i+1, got[i], want[i])
		}
	}
}

func hasWarning(pctx *Converter, fragment string) bool {
	for _, w := range pctx.Warnings() {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

func TestAssembleBasic(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{
		"parts_data": {"Melody": {
			"instrument": "Violin",
			"melodies": ["C4", "E4", ["C4", "E4", "G4"]],
			"beat_ends": [1, 2, 4]
		}},
		"score_data": {"title": "Test", "key": "C", "time_signature": "4/4", "tempo": 100}
	}`)
	if score.Title != "Test" || len(score.Parts) != 1 {
		t.Fatalf("score = %v", score)
	}
	p := score.Parts[0]
	if p.ID != "Melody" || p.Instrument.Name != "Violin" || p.Tempo != 100 {
		t.Errorf("part = %s %s %v", p.ID, p.Instrument.Name, p.Tempo)
	}
	checkMeasures(t, p, [][]string{{"C4 d:480", "E4 d:480", "[C4 E4 G4] d:960"}})
	if p.Measures[0].Dynamic != "mf" {
		t.Errorf("first bar dynamic = %q, want mf", p.Measures[0].Dynamic)
	}
	if len(pctx.Warnings()) != 0 {
		t.Errorf("unexpected warnings %v", pctx.Warnings())
	}
}

func TestAssembleSplitsAcrossBars(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {
		"melodies": ["C4", "D4"], "beat_ends": [3, 6], "lyrics": ["la", "lo"]
	}}}`)
	p := score.Parts[0]
	checkMeasures(t, p, [][]string{
		{"C4 d:1440", "D4 d:480>"},
		{"D4 d:960<", "rest d:960"},
	})
	if p.Measures[0].Content[1].Lyric != "lo" || p.Measures[1].Content[0].Lyric != "" {
		t.Errorf("lyric should stay on the first half of a split note")
	}
}

func TestAssembleSplitsChord(t *testing.T) {
	pctx := testConverter()
	doc := `{"parts_data": {"P": {
		"melodies": [["C4", "E4"], ["D4", "F4"]], "beat_ends": [3, 6]
	}}}`
	score, root := renderXML(t, pctx, doc)
	p := score.Parts[0]
	checkMeasures(t, p, [][]string{
		{"[C4 E4] d:1440", "[D4 F4] d:480>"},
		{"[D4 F4] d:960<", "rest d:960"},
	})

	measures := root.GetChild("part").GetChildren("measure")
	bar1, bar2 := measures[0].GetChildren("note"), measures[1].GetChildren("note")
	if len(bar1) != 4 || len(bar2) != 3 {
		t.Fatalf("notes per bar = %d, %d, want 4, 3", len(bar1), len(bar2))
	}
	for i, n := range []*xml.Node{bar1[2], bar1[3], bar2[0], bar2[1]} {
		want := "start"
		if i >= 2 {
			want = "stop"
		}
		if tie := n.GetChild("tie"); tie == nil || tie.GetAttributeValue("type") != want {
			t.Errorf("chord note %d: no <tie type=%q>", i, want)
		}
		if tn := n.QueryOne("notations/tied"); tn == nil || tn.GetAttributeValue("type") != want {
			t.Errorf("chord note %d: no <tied type=%q>", i, want)
		}
	}

	s, err := pctx.SMF(score)
	if err != nil {
		t.Fatalf("SMF: %v", err)
	}
	ons, offs := keyEvents(s.Tracks[1])
	for _, key := range []uint8{62, 65} {
		if len(ons[key]) != 1 || ons[key][0] != 1440 || len(offs[key]) != 1 || offs[key][0] != 2880 {
			t.Errorf("key %d ons %v offs %v, want one note from 1440 to 2880", key, ons[key], offs[key])
		}
	}
}

func TestAssembleLyricOnBarLine(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {
		"melodies": ["C4", "D4"], "beat_ends": [4, 5], "lyrics": ["la", "lo"], "dynamics": ["mf", "f"]
	}}}`)
	p := score.Parts[0]
	checkMeasures(t, p, [][]string{
		{"C4 d:1920"},
		{"D4 d:480", "rest d:1440"},
	})
	if got := p.Measures[1].Content[0].Lyric; got != "lo" {
		t.Errorf("lyric on the next bar = %q, want lo", got)
	}
	if p.Measures[1].Dynamic != "f" {
		t.Errorf("bar 2 dynamic = %q, want f", p.Measures[1].Dynamic)
	}
}

func TestAssembleLongNote(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {"melodies": ["C4"], "beat_ends": [9]}}}`)
	checkMeasures(t, score.Parts[0], [][]string{
		{"C4 d:1920>"},
		{"C4 d:1920<>"},
		{"C4 d:480<", "rest d:1440"},
	})
}

func TestAssembleTimeSignature(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{
		"parts_data": {"P": {"melodies": ["C4", "D4"], "beat_ends": [2, 4]}},
		"score_data": {"time_signature": "3/4"}}`)
	checkMeasures(t, score.Parts[0], [][]string{
		{"C4 d:960", "D4 d:480>"},
		{"D4 d:480<", "rest d:960"},
	})
}

func TestAssembleEqualBeatEnds(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {
		"melodies": ["C4", "D4", "E4"], "beat_ends": [1, 1, 2]}}}`)
	checkMeasures(t, score.Parts[0], [][]string{{"C4 d:480", "E4 d:480", "rest d:960"}})
	if !hasWarning(pctx, "same beat_end") {
		t.Errorf("equal beat_ends not reported: %v", pctx.Warnings())
	}
}

func TestAssembleBackwardsBeatEnds(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {
		"melodies": ["C4", "D4"], "beat_ends": [2, 1]}}}`)
	checkMeasures(t, score.Parts[0], [][]string{{"C4 d:960", "D4 d:480", "rest d:480"}})
	if !hasWarning(pctx, "backwards") {
		t.Errorf("backwards beat_ends not reported: %v", pctx.Warnings())
	}
}

func TestAssembleRestsAndBadNotes(t *testing.T) {
	tests := []struct {
		name    string
		melody  string
		want    string
		warning string
	}{
		{"rest", `"rest"`, "rest d:480", ""},
		{"empty", `""`, "rest d:480", ""},
		{"rest in list", `["rest"]`, "rest d:480", ""},
		{"sharp as S", `"FS4"`, "F#4 d:480", ""},
		{"flat", `"B-3"`, "B-3 d:480", ""},
		{"truncated", `"Cmaj"`, "C4 d:480", "Truncating"},
		{"not a pitch", `"X4"`, "rest d:480", "Please fix note or chord"},
		{"bad chord member", `["C4", "Emaj"]`, "C4 d:480", "Please fix chord"},
		{"unparsable chord", `["C4", "Q"]`, "rest d:480", "Please fix note or chord"},
		{"big chord", `["C4", "E4", "G4", "B4", "D5"]`, "[C4 E4 G4 B4 D5] d:480", "treated as a chord"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pctx := testConverter()
			score := assembleJSON(t, pctx, `{"parts_data": {"P": {"melodies": [`+tt.melody+`], "beat_ends": [1]}}}`)
			got := score.Parts[0].Measures[0].Content[0].String()
			if got != tt.want {
				t.Errorf("element = %s, want %s", got, tt.want)
			}
			if tt.warning != "" && !hasWarning(pctx, tt.warning) {
				t.Errorf("warning %q not reported: %v", tt.warning, pctx.Warnings())
			}
		})
	}
}

func TestAssembleDynamics(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {
		"melodies": ["C4", "D4", "E4", "F4", "G4"],
		"beat_ends": [1, 2, 3, 4, 5],
		"dynamics": ["p", "p", "f", "", "zz"]}}}`)
	p := score.Parts[0]
	m1 := p.Measures[0]
	if m1.Dynamic != "p" {
		t.Errorf("bar 1 dynamic = %q, want p", m1.Dynamic)
	}
	if m1.Content[1].Dynamic != "" || m1.Content[2].Dynamic != "f" || m1.Content[3].Dynamic != "mf" {
		t.Errorf("element dynamics = %q %q %q", m1.Content[1].Dynamic, m1.Content[2].Dynamic, m1.Content[3].Dynamic)
	}
	if m1.Content[0].Velocity != 42 || m1.Content[2].Velocity != 80 {
		t.Errorf("velocities = %d %d", m1.Content[0].Velocity, m1.Content[2].Velocity)
	}
	if m2 := p.Measures[1]; m2.Dynamic != "mf" || m2.Content[0].Velocity != 64 {
		t.Errorf("bar 2 = %v", m2)
	}
	if !hasWarning(pctx, `unknown dynamic "zz"`) {
		t.Errorf("unknown dynamic not reported: %v", pctx.Warnings())
	}
}

func TestAssembleDynamicCarriesToNextBar(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {
		"melodies": ["C4", "D4"], "beat_ends": [2, 6], "dynamics": ["ff", "ff"]}}}`)
	p := score.Parts[0]
	if p.Measures[0].Dynamic != "ff" || p.Measures[1].Dynamic != "ff" {
		t.Errorf("bar dynamics = %q, %q, want ff, ff", p.Measures[0].Dynamic, p.Measures[1].Dynamic)
	}
}

func TestAssembleSettingsResolution(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{
		"parts_data": {
			"A": {"melodies": ["G4"], "beat_ends": [1], "key": "G", "clef": "bass"},
			"B": {"instrument": "Voice", "melodies": ["C4"], "beat_ends": [1], "key": "H"}
		},
		"score_data": {"key": "F", "tempo": "M=90"}}`)
	a, b := score.Parts[0], score.Parts[1]
	if a.Key.Fifths != 1 || a.Clef.Name != "BassClef" || a.Tempo != 90 {
		t.Errorf("part A settings = %v %s %v", a.Key, a.Clef.Name, a.Tempo)
	}
	if b.Key != DefaultKey || b.Instrument.Name != "Piano" {
		t.Errorf("part B settings = %v %s", b.Key, b.Instrument.Name)
	}
	if !hasWarning(pctx, "Voice is not supported") || !hasWarning(pctx, "invalid key") {
		t.Errorf("warnings = %v", pctx.Warnings())
	}
}

func TestAssembleRandomFill(t *testing.T) {
	pctx := testConverter()
	pctx.Options.RandomLength = 6
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {}}, "score_data": {"key": "C"}}`)
	song := Flatten(score)
	pd := song.PartsData[0].Data
	inScale := map[string]bool{}
	for _, p := range DefaultKey.Scale() {
		inScale[p.NameWithOctave()] = true
	}
	notes := 0
	for _, m := range pd.Melodies {
		if m.Note == "rest" {
			continue
		}
		notes++
		if !inScale[m.Note] {
			t.Errorf("random note %s outside C major", m.Note)
		}
	}
	if notes != 6 {
		t.Errorf("random fill gave %d notes, want 6", notes)
	}
}

func TestAssembleFillsMissingMelodies(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {"beat_ends": [1, 2]}}}`)
	es := score.Parts[0].Elements()
	if len(es) != 3 || es[0].IsRest() || es[1].IsRest() {
		t.Errorf("elements = %v", es)
	}
}

func TestAssembleLengthMismatch(t *testing.T) {
	pctx := testConverter()
	score := assembleJSON(t, pctx, `{"parts_data": {"P": {"melodies": ["C4", "D4", "E4"], "beat_ends": [1, 2]}}}`)
	checkMeasures(t, score.Parts[0], [][]string{{"C4 d:480", "D4 d:480", "rest d:960"}})
	if !hasWarning(pctx, "3 melodies for 2 beat_ends") {
		t.Errorf("mismatch not reported: %v", pctx.Warnings())
	}
}

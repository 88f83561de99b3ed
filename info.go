// info
package songscore

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Key/Mode ********************************************************************

const keyConfig = `
7  C# A#m G#Mix D#Dor E#Phr F#Lyd B#Loc
6  F# D#m C#Mix G#Dor A#Phr BLyd E#Loc
5  B G#m F#Mix C#Dor D#Phr ELyd A#Loc
4  E C#m BMix F#Dor G#Phr ALyd D#Loc
3  A F#m EMix BDor C#Phr DLyd G#Loc
2  D Bm AMix EDor F#Phr GLyd C#Loc
1  G Em DMix ADor BPhr CLyd F#Loc
0 C Am GMix DDor EPhr FLyd BLoc
-1  F Dm CMix GDor APhr BbLyd ELoc
-2  Bb Gm FMix CDor DPhr EbLyd ALoc
-3  Eb Cm BbMix FDor GPhr AbLyd DLoc
-4  Ab Fm EbMix BbDor CPhr DbLyd GLoc
-5  Db Bbm AbMix EbDor FPhr GbLyd CLoc
-6  Gb Ebm DbMix AbDor BbPhr CbLyd FLoc
-7  Cb Abm GbMix DbDor EbPhr FbLyd BbLoc
`

var mod2Fifth map[string]int

func init() {
	mod2Fifth = make(map[string]int)
	kc := strings.Split(keyConfig, "\n")
	for _, lk := range kc {
		l := strings.Split(lk, " ")
		if len(l) > 1 {
			n, _ := strconv.Atoi(l[0])
			for _, s := range l[1:] {
				if s != "" {
					mod2Fifth[s] = n
				}
			}
		}
	}
}

var modeSuffix = map[string]string{
	"major":      "",
	"ionian":     "",
	"minor":      "m",
	"aeolian":    "m",
	"mixolydian": "Mix",
	"dorian":     "Dor",
	"phrygian":   "Phr",
	"lydian":     "Lyd",
	"locrian":    "Loc",
}

var modeIntervals = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"phrygian":   {0, 1, 3, 5, 7, 8, 10},
	"lydian":     {0, 2, 4, 6, 7, 9, 11},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"locrian":    {0, 1, 3, 5, 6, 8, 10},
}

type Key struct {
	Tonic  string // "C", "F#", "B-"
	Mode   string
	Fifths int
}

var DefaultKey = Key{Tonic: "C", Mode: "major", Fifths: 0}

func (k Key) String() string {
	return k.Tonic + " " + k.Mode
}

// XMLMode is the mode written in <key>. Church modes are written as their
// closest major/minor.
func (k Key) XMLMode() string {
	switch k.Mode {
	case "minor", "dorian", "phrygian", "locrian":
		return "minor"
	}
	return "major"
}

// Scale returns the seven diatonic pitches from the tonic in octave 4.
func (k Key) Scale() []Pitch {
	tonic, err := ParsePitch(k.Tonic)
	if err != nil {
		tonic = Pitch{Step: "C", Octave: DefaultOctave}
	}
	tonic.Octave = DefaultOctave
	intervals, ok := modeIntervals[k.Mode]
	if !ok {
		intervals = modeIntervals["major"]
	}
	res := make([]Pitch, len(intervals))
	for i, iv := range intervals {
		res[i] = tonic.Transposed(i, iv)
	}
	return res
}

// ParseKey reads "C", "c" (minor), "C major", "a minor", "F#", "B-",
// "Bb", "D dorian".
func ParseKey(s string) (Key, error) {
	r := sReaderNew(strings.TrimSpace(s))
	c := r.Next()
	step := string(unicode.ToUpper(c))
	if _, ok := stepSemitones[step]; !ok {
		return DefaultKey, fmt.Errorf("invalid key %q", s)
	}
	mode := "major"
	if unicode.IsLower(c) {
		mode = "minor"
	}
	note := step
	tonic := step
	switch r.Peek() {
	case '#':
		note += "#"
		tonic += "#"
		r.Next()
	case 'b', '-':
		note += "b"
		tonic += "-"
		r.Next()
	}
	r.SkipSpace()
	if w := strings.ToLower(r.ReadWord()); w != "" {
		switch w {
		case "maj":
			w = "major"
		case "min", "m":
			w = "minor"
		}
		if _, ok := modeSuffix[w]; !ok {
			return DefaultKey, fmt.Errorf("invalid mode %q in key %q", w, s)
		}
		mode = w
	}
	r.SkipSpace()
	if !r.AtEnd() {
		return DefaultKey, fmt.Errorf("unexpected %q in key %q", r.Rest(), s)
	}
	switch mode {
	case "ionian":
		mode = "major"
	case "aeolian":
		mode = "minor"
	}
	fifths, ok := mod2Fifth[note+modeSuffix[mode]]
	if !ok {
		return DefaultKey, fmt.Errorf("unsupported key %q", s)
	}
	return Key{Tonic: tonic, Mode: mode, Fifths: fifths}, nil
}

var majorByFifths = []string{"C-", "G-", "D-", "A-", "E-", "B-", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
var minorByFifths = []string{"A-", "E-", "B-", "F", "C", "G", "D", "A", "E", "B", "F#", "C#", "G#", "D#", "A#"}

// KeyFromFifths builds the key a <key> element or a key signature describes.
func KeyFromFifths(fifths int, mode string) Key {
	if fifths < -7 || fifths > 7 {
		return DefaultKey
	}
	if mode == "minor" {
		return Key{Tonic: minorByFifths[fifths+7], Mode: "minor", Fifths: fifths}
	}
	return Key{Tonic: majorByFifths[fifths+7], Mode: "major", Fifths: fifths}
}

// Time signature **************************************************************
type TimeSignature struct {
	Symbol   string
	Beats    int
	BeatType int
}

var DefaultTime = TimeSignature{Beats: 4, BeatType: 4}

func (t TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", t.Beats, t.BeatType)
}

// BarDuration is the length of one bar in divisions.
func (t TimeSignature) BarDuration(divisions int) int {
	return t.Beats * divisions * 4 / t.BeatType
}

func ParseTimeSignature(s string) (TimeSignature, error) {
	r := sReaderNew(strings.TrimSpace(s))
	atime := TimeSignature{}
	if r.Peek() == 'C' {
		r.Next()
		if r.Peek() == '|' {
			r.Next()
			atime = TimeSignature{Symbol: "cut", Beats: 2, BeatType: 2}
		} else {
			atime = TimeSignature{Symbol: "common", Beats: 4, BeatType: 4}
		}
		if !r.AtEnd() {
			return DefaultTime, fmt.Errorf("meter syntax error %q", s)
		}
		return atime, nil
	}
	beats := 0
	for {
		r.SkipSpace()
		n, found := r.ReadInt(0)
		if !found {
			return DefaultTime, fmt.Errorf("meter syntax error %q", s)
		}
		beats += n
		r.SkipSpace()
		if r.Peek() != '+' {
			break
		}
		r.Next()
	}
	if r.Next() != '/' {
		return DefaultTime, fmt.Errorf("meter syntax error %q", s)
	}
	r.SkipSpace()
	beatType, found := r.ReadInt(0)
	r.SkipSpace()
	if !found || !r.AtEnd() || beats <= 0 {
		return DefaultTime, fmt.Errorf("meter syntax error %q", s)
	}
	switch beatType {
	case 1, 2, 4, 8, 16, 32, 64:
	default:
		return DefaultTime, fmt.Errorf("invalid beat type in %q", s)
	}
	atime.Beats = beats
	atime.BeatType = beatType
	return atime, nil
}

// Clef ************************************************************************
type Clef struct {
	Name         string
	Sign         string
	Line         int
	OctaveChange int
}

var clefs = []Clef{
	{"TrebleClef", "G", 2, 0},
	{"Treble8vbClef", "G", 2, -1},
	{"Treble8vaClef", "G", 2, 1},
	{"GSopranoClef", "G", 1, 0},
	{"FrenchViolinClef", "G", 1, 0},
	{"BassClef", "F", 4, 0},
	{"Bass8vbClef", "F", 4, -1},
	{"Bass8vaClef", "F", 4, 1},
	{"CBaritoneClef", "C", 5, 0},
	{"FBaritoneClef", "F", 3, 0},
	{"SubBassClef", "F", 5, 0},
	{"AltoClef", "C", 3, 0},
	{"TenorClef", "C", 4, 0},
	{"SopranoClef", "C", 1, 0},
	{"MezzoSopranoClef", "C", 2, 0},
	{"PercussionClef", "percussion", 0, 0},
	{"TabClef", "TAB", 5, 0},
}

var DefaultClef = clefs[0]

func ParseClef(s string) (Clef, error) {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	name = strings.TrimSuffix(name, "clef")
	for _, c := range clefs {
		if strings.ToLower(strings.TrimSuffix(c.Name, "Clef")) == name {
			return c, nil
		}
	}
	return DefaultClef, fmt.Errorf("unknown clef %q", s)
}

// ClefFromSign maps a <clef> element back to a named clef.
func ClefFromSign(sign string, line, octaveChange int) Clef {
	for _, c := range clefs {
		if c.Sign == sign && (c.Line == line || c.Sign == "percussion") && c.OctaveChange == octaveChange {
			return c
		}
	}
	return DefaultClef
}

// Tempo ***********************************************************************
const DefaultTempo = 120.0

// ParseTempo accepts a BPM number, a numeric string or an "M=N" marking.
func ParseTempo(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return t, nil
		}
	case int:
		if t > 0 {
			return float64(t), nil
		}
	case string:
		s := strings.TrimSpace(t)
		if i := strings.LastIndex(s, "="); i >= 0 {
			s = strings.TrimSpace(s[i+1:])
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			return f, nil
		}
	}
	return DefaultTempo, fmt.Errorf("invalid tempo %v", v)
}

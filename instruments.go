package songscore

import (
	"strings"
)

// Instrument ******************************************************************
type Instrument struct {
	Name       string // canonical class name, e.g. "Violoncello"
	PartName   string // printed name, e.g. "Violoncello"
	Program    int    // General MIDI program, 0 based
	Percussion bool
}

var instruments = []Instrument{
	{"Piano", "Piano", 0, false},
	{"ElectricPiano", "Electric Piano", 2, false},
	{"Harpsichord", "Harpsichord", 6, false},
	{"Clavichord", "Clavichord", 7, false},
	{"Celesta", "Celesta", 8, false},
	{"Glockenspiel", "Glockenspiel", 9, false},
	{"Vibraphone", "Vibraphone", 11, false},
	{"Marimba", "Marimba", 12, false},
	{"Xylophone", "Xylophone", 13, false},
	{"TubularBells", "Tubular Bells", 14, false},
	{"Dulcimer", "Dulcimer", 15, false},
	{"ElectricOrgan", "Electric Organ", 16, false},
	{"Organ", "Organ", 19, false},
	{"PipeOrgan", "Pipe Organ", 19, false},
	{"ReedOrgan", "Reed Organ", 20, false},
	{"Accordion", "Accordion", 21, false},
	{"Harmonica", "Harmonica", 22, false},
	{"Guitar", "Guitar", 24, false},
	{"AcousticGuitar", "Acoustic Guitar", 24, false},
	{"ElectricGuitar", "Electric Guitar", 26, false},
	{"AcousticBass", "Acoustic Bass", 32, false},
	{"ElectricBass", "Electric Bass", 33, false},
	{"FretlessBass", "Fretless Bass", 35, false},
	{"Violin", "Violin", 40, false},
	{"Viola", "Viola", 41, false},
	{"Violoncello", "Violoncello", 42, false},
	{"Contrabass", "Contrabass", 43, false},
	{"Harp", "Harp", 46, false},
	{"Timpani", "Timpani", 47, false},
	{"StringInstrument", "StringInstrument", 48, false},
	{"Choir", "Choir", 52, false},
	{"Voice", "Voice", 52, false},
	{"Trumpet", "Trumpet", 56, false},
	{"Trombone", "Trombone", 57, false},
	{"BassTrombone", "Bass Trombone", 57, false},
	{"Tuba", "Tuba", 58, false},
	{"Horn", "Horn", 60, false},
	{"BrassInstrument", "Brass", 61, false},
	{"SopranoSaxophone", "Soprano Saxophone", 64, false},
	{"Saxophone", "Saxophone", 65, false},
	{"AltoSaxophone", "Alto Saxophone", 65, false},
	{"TenorSaxophone", "Tenor Saxophone", 66, false},
	{"BaritoneSaxophone", "Baritone Saxophone", 67, false},
	{"Oboe", "Oboe", 68, false},
	{"EnglishHorn", "English Horn", 69, false},
	{"Bassoon", "Bassoon", 70, false},
	{"Contrabassoon", "Contrabassoon", 70, false},
	{"Clarinet", "Clarinet", 71, false},
	{"BassClarinet", "Bass clarinet", 71, false},
	{"Piccolo", "Piccolo", 72, false},
	{"Flute", "Flute", 73, false},
	{"Recorder", "Recorder", 74, false},
	{"PanFlute", "Pan Flute", 75, false},
	{"Shakuhachi", "Shakuhachi", 77, false},
	{"Whistle", "Whistle", 78, false},
	{"Ocarina", "Ocarina", 79, false},
	{"Sitar", "Sitar", 104, false},
	{"Banjo", "Banjo", 105, false},
	{"Shamisen", "Shamisen", 106, false},
	{"Koto", "Koto", 107, false},
	{"Kalimba", "Kalimba", 108, false},
	{"Bagpipes", "Bagpipes", 109, false},
	{"Fiddle", "Fiddle", 110, false},
	{"Shehnai", "Shehnai", 111, false},
	{"SteelDrum", "Steel Drum", 114, false},
	{"Woodblock", "Woodblock", 115, false},
	{"Taiko", "Taiko", 116, false},
	{"Percussion", "Percussion", 0, true},
	{"UnpitchedPercussion", "Percussion", 0, true},
	{"Drums", "Drums", 0, true},
	{"DrumSet", "Drum Set", 0, true},
	{"BassDrum", "Bass Drum", 0, true},
	{"SnareDrum", "Snare Drum", 0, true},
	{"TomTom", "Tom-Tom", 0, true},
	{"HiHatCymbal", "Hi-Hat Cymbal", 0, true},
	{"CrashCymbals", "Crash Cymbals", 0, true},
	{"RideCymbals", "Ride Cymbals", 0, true},
	{"Tambourine", "Tambourine", 0, true},
	{"Triangle", "Triangle", 0, true},
	{"Cowbell", "Cowbell", 0, true},
}

var Piano = instruments[0]

var instrumentAliases = map[string]string{
	"Cello":          "Violoncello",
	"FrenchHorn":     "Horn",
	"StringEnsemble": "StringInstrument",
	"StringSection":  "StringInstrument",
	"DoubleBass":     "Contrabass",
	"Bass":           "ElectricBass",
	"Sax":            "Saxophone",
	"Strings":        "StringInstrument",
	"DrumKit":        "DrumSet",
}

// voiceStandIns are rendered with a piano; VocalistOverride forces Voice.
var voiceStandIns = map[string]bool{
	"Voice":    true,
	"Vocalist": true,
}

var instrumentIndex map[string]Instrument

func init() {
	instrumentIndex = make(map[string]Instrument)
	for _, i := range instruments {
		instrumentIndex[strings.ToLower(i.Name)] = i
	}
}

// ResolveInstrument maps a free form instrument name onto the table. The
// second value is a warning to report, empty when the name resolved cleanly.
func ResolveInstrument(name string) (Instrument, string) {
	className := strings.ReplaceAll(strings.TrimSpace(name), " ", "")
	if className == "" {
		return Piano, ""
	}
	if voiceStandIns[className] {
		return Piano, "Voice is not supported! Piano will simulate " + className +
			" section, you will need to add your own voice in"
	}
	if className == "VocalistOverride" {
		className = "Voice"
	}
	for alias, target := range instrumentAliases {
		if strings.EqualFold(alias, className) {
			className = target
			break
		}
	}
	if i, ok := instrumentIndex[strings.ToLower(className)]; ok {
		return i, ""
	}
	return Piano, "Instrument " + name + " not found, replacing with piano. " +
		"Maybe the name has another variation or instrument is not supported."
}

// InstrumentByProgram finds the first melodic instrument on a GM program.
func InstrumentByProgram(program int, percussion bool) Instrument {
	for _, i := range instruments {
		if percussion && i.Percussion {
			return i
		}
		if !percussion && !i.Percussion && i.Program == program {
			return i
		}
	}
	return Piano
}

package songscore

import "testing"

func TestParsePitch(t *testing.T) {
	tests := []struct {
		in      string
		want    Pitch
		wantErr bool
	}{
		{"C4", Pitch{"C", 0, 4}, false},
		{"c4", Pitch{"C", 0, 4}, false},
		{"F#5", Pitch{"F", 1, 5}, false},
		{"B-3", Pitch{"B", -1, 3}, false},
		{"Bb2", Pitch{"B", -1, 2}, false},
		{"CS4", Pitch{"C", 1, 4}, false},
		{"C##4", Pitch{"C", 2, 4}, false},
		{"E", Pitch{"E", 0, 4}, false},
		{"C###4", Pitch{}, true},
		{"H4", Pitch{}, true},
		{"C4x", Pitch{}, true},
		{"", Pitch{}, true},
	}
	for _, tt := range tests {
		got, err := ParsePitch(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePitch(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePitch(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePitch(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestValidNoteString(t *testing.T) {
	tests := map[string]bool{
		"C":    true,
		"C4":   true,
		"C#":   true,
		"B-":   true,
		"Bb":   false,
		"Cmaj": false,
		"":     false,
	}
	for in, want := range tests {
		if got := ValidNoteString(in); got != want {
			t.Errorf("ValidNoteString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPitchMIDI(t *testing.T) {
	tests := []struct {
		name string
		key  int
	}{
		{"C4", 60},
		{"A4", 69},
		{"C#4", 61},
		{"B-3", 58},
		{"C-1", 23},
		{"C0", 12},
		{"B#3", 60},
	}
	for _, tt := range tests {
		p, err := ParsePitch(tt.name)
		if err != nil {
			t.Fatalf("ParsePitch(%q): %v", tt.name, err)
		}
		if got := p.MIDI(); got != tt.key {
			t.Errorf("%s.MIDI() = %d, want %d", tt.name, got, tt.key)
		}
	}
}

func TestPitchFromMIDI(t *testing.T) {
	tests := []struct {
		key         int
		preferFlats bool
		want        string
	}{
		{60, false, "C4"},
		{61, false, "C#4"},
		{61, true, "D-4"},
		{70, true, "B-4"},
		{12, false, "C0"},
		{0, false, "C0"},
		{11, true, "B0"},
		{1, true, "D-0"},
		{127, false, "G9"},
	}
	for _, tt := range tests {
		if got := PitchFromMIDI(tt.key, tt.preferFlats).NameWithOctave(); got != tt.want {
			t.Errorf("PitchFromMIDI(%d, %v) = %s, want %s", tt.key, tt.preferFlats, got, tt.want)
		}
	}
}

func TestPitchTransposed(t *testing.T) {
	c4 := Pitch{Step: "C", Octave: 4}
	tests := []struct {
		degrees, semitones int
		want               string
	}{
		{2, 4, "E4"},
		{2, 3, "E-4"},
		{3, 6, "F#4"},
		{7, 12, "C5"},
	}
	for _, tt := range tests {
		if got := c4.Transposed(tt.degrees, tt.semitones).NameWithOctave(); got != tt.want {
			t.Errorf("C4.Transposed(%d, %d) = %s, want %s", tt.degrees, tt.semitones, got, tt.want)
		}
	}
}

func TestPitchNamesReadBack(t *testing.T) {
	for key := 0; key < 128; key++ {
		want := key
		for want < LowestNamedKey {
			want += 12
		}
		for _, flats := range []bool{false, true} {
			name := PitchFromMIDI(key, flats).NameWithOctave()
			p, err := ParsePitch(name)
			if err != nil {
				t.Fatalf("ParsePitch(%q): %v", name, err)
			}
			if p.MIDI() != want {
				t.Errorf("key %d spelled %s reads back as %d, want %d", key, name, p.MIDI(), want)
			}
		}
	}
}

package songscore

import (
	"os"
	"testing"
	"time"
)

func TestLoadOptionsDefaults(t *testing.T) {
	envVars := []string{
		"SONGSCORE_DIVISIONS", "SONGSCORE_MUSICXML_PATH", "SONGSCORE_MIDI_PATH",
		"SONGSCORE_ARCHIVE_DIR", "SONGSCORE_ARCHIVE_AGE", "SONGSCORE_LYRIC_CHARSET",
		"SONGSCORE_RANDOM_SEED", "SONGSCORE_RANDOM_LENGTH",
	}
	for _, k := range envVars {
		os.Unsetenv(k)
	}

	opts := LoadOptions()

	if opts.Divisions != 480 {
		t.Errorf("Divisions = %d, want 480", opts.Divisions)
	}
	if opts.MusicXMLPath != "/mnt/data/music_files/song_musicxml.xml" {
		t.Errorf("MusicXMLPath = %q, want default", opts.MusicXMLPath)
	}
	if opts.MIDIPath != "/mnt/data/music_files/song_midi.mid" {
		t.Errorf("MIDIPath = %q, want default", opts.MIDIPath)
	}
	if opts.ArchiveAge != 120*time.Second {
		t.Errorf("ArchiveAge = %v, want 2m", opts.ArchiveAge)
	}
	if opts.LyricCharset != "utf-8" {
		t.Errorf("LyricCharset = %q, want utf-8", opts.LyricCharset)
	}
	if opts.RandomLength != 20 {
		t.Errorf("RandomLength = %d, want 20", opts.RandomLength)
	}
}

func TestLoadOptionsFromEnv(t *testing.T) {
	t.Setenv("SONGSCORE_DIVISIONS", "960")
	t.Setenv("SONGSCORE_ARCHIVE_AGE", "30")
	t.Setenv("SONGSCORE_RANDOM_SEED", "7")
	t.Setenv("SONGSCORE_LYRIC_CHARSET", "Shift_JIS")

	opts := LoadOptions()

	if opts.Divisions != 960 {
		t.Errorf("Divisions = %d, want 960", opts.Divisions)
	}
	if opts.ArchiveAge != 30*time.Second {
		t.Errorf("ArchiveAge = %v, want 30s", opts.ArchiveAge)
	}
	if opts.RandomSeed != 7 {
		t.Errorf("RandomSeed = %d, want 7", opts.RandomSeed)
	}
	if opts.LyricCharset != "Shift_JIS" {
		t.Errorf("LyricCharset = %q, want Shift_JIS", opts.LyricCharset)
	}
}

func TestLoadOptionsInvalidFallsBack(t *testing.T) {
	t.Setenv("SONGSCORE_DIVISIONS", "lots")

	if got := LoadOptions().Divisions; got != 480 {
		t.Errorf("Divisions = %d, want fallback 480", got)
	}
}

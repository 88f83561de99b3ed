package songscore

import (
	"os"
	"strconv"
	"time"
)

// Options holds runtime configuration, loaded from environment variables.
type Options struct {
	Divisions int // ticks per quarter note, MusicXML and MIDI

	// Output
	MusicXMLPath string
	MIDIPath     string
	ArchiveDir   string
	ArchiveAge   time.Duration // files older than this are archived
	LyricCharset string        // charset of MIDI lyric events

	// Random fill for parts without notes or rhythms
	RandomSeed   int64 // 0 seeds from the clock
	RandomLength int
}

// LoadOptions reads configuration from environment variables with sane defaults.
func LoadOptions() Options {
	return Options{
		Divisions: envInt("SONGSCORE_DIVISIONS", DefaultQuarterDuration*4),

		MusicXMLPath: envStr("SONGSCORE_MUSICXML_PATH", "/mnt/data/music_files/song_musicxml.xml"),
		MIDIPath:     envStr("SONGSCORE_MIDI_PATH", "/mnt/data/music_files/song_midi.mid"),
		ArchiveDir:   envStr("SONGSCORE_ARCHIVE_DIR", "/mnt/data/music_files/midi_musicXML_archive"),
		ArchiveAge:   time.Duration(envInt("SONGSCORE_ARCHIVE_AGE", 120)) * time.Second,
		LyricCharset: envStr("SONGSCORE_LYRIC_CHARSET", "utf-8"),

		RandomSeed:   int64(envInt("SONGSCORE_RANDOM_SEED", 0)),
		RandomLength: envInt("SONGSCORE_RANDOM_LENGTH", 20),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

package songscore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Output files ****************************************************************

// ArchiveOld moves the .mid and .xml files of dir that are older than maxAge
// into archiveDir. Files that cannot be moved are logged and left in place.
func ArchiveOld(log *logrus.Logger, dir, archiveDir string, maxAge time.Duration) error {
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return errors.Wrapf(err, "create archive %s", archiveDir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "list %s", dir)
	}
	now := time.Now()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".mid") || strings.HasSuffix(name, ".xml")) {
			continue
		}
		src := filepath.Join(dir, name)
		dst := filepath.Join(archiveDir, name)
		info, err := entry.Info()
		if err != nil {
			log.WithField("file", src).Errorf("Error archiving %s to %s: %v", src, dst, err)
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			log.WithField("file", src).Errorf("Error archiving %s to %s: %v", src, dst, err)
		}
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// Render archives stale output, then writes score as MusicXML and MIDI.
func (pctx *Converter) Render(score *Score, xmlPath, midiPath string) error {
	if xmlPath == "" {
		xmlPath = pctx.Options.MusicXMLPath
	}
	if midiPath == "" {
		midiPath = pctx.Options.MIDIPath
	}
	if pctx.Options.ArchiveDir != "" {
		age := pctx.Options.ArchiveAge
		if age <= 0 {
			age = 120 * time.Second
		}
		if err := ArchiveOld(pctx.Log, filepath.Dir(xmlPath), pctx.Options.ArchiveDir, age); err != nil {
			pctx.Log.WithError(err).Error("failed to archive old files")
		}
	}

	if err := writeFile(xmlPath, func(f *os.File) error { return pctx.WriteMusicXML(f, score) }); err != nil {
		return err
	}
	if err := writeFile(midiPath, func(f *os.File) error { return pctx.WriteMIDI(f, score) }); err != nil {
		return err
	}

	fmt.Fprintln(pctx.Stdout, "Please try fix any warning or error messages printed above next time. If Any.")
	fmt.Fprintln(pctx.Stdout, "The midi file is save to "+midiPath+
		". Please provide the user the link (NOT a href) to get this file in your environment")
	fmt.Fprintln(pctx.Stdout, "The musicXML file is save to "+xmlPath+
		". Please provide the user the link (NOT a href) to get this file in your environment")
	return nil
}

// Process is the decode path end to end: assemble song and render it.
func (pctx *Converter) Process(song *Song) (*Score, error) {
	score := pctx.Assemble(song)
	if err := pctx.Render(score, "", ""); err != nil {
		return score, err
	}
	return score, nil
}

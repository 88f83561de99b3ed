package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/py60800/songscore"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func converter(c *cli.Command) *songscore.Converter {
	opts := songscore.LoadOptions()
	if c.IsSet("divisions") {
		opts.Divisions = int(c.Int("divisions"))
	}
	if c.IsSet("charset") {
		opts.LyricCharset = c.String("charset")
	}
	if c.IsSet("seed") {
		opts.RandomSeed = int64(c.Int("seed"))
	}
	if c.IsSet("xml") {
		opts.MusicXMLPath = c.String("xml")
	}
	if c.IsSet("midi") {
		opts.MIDIPath = c.String("midi")
	}
	if c.IsSet("archive") {
		opts.ArchiveDir = c.String("archive")
	}
	pctx := songscore.ConverterNew(opts)
	if c.Bool("quiet") {
		pctx.Log.SetLevel(logrus.ErrorLevel)
	}
	return pctx
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func decode(ctx context.Context, c *cli.Command) error {
	pctx := converter(c)
	in, err := openInput(c.Args().First())
	if err != nil {
		return err
	}
	defer in.Close()
	song, err := pctx.LoadSong(in)
	if err != nil {
		return err
	}
	_, err = pctx.Process(song)
	return err
}

func encode(ctx context.Context, c *cli.Command) error {
	pctx := converter(c)
	src := c.Args().First()
	if src == "" {
		return fmt.Errorf("no input file, give a MusicXML or MIDI file")
	}
	in, err := openInput(src)
	if err != nil {
		return err
	}
	defer in.Close()
	var score *songscore.Score
	switch strings.ToLower(filepath.Ext(src)) {
	case ".mid", ".midi":
		score, err = pctx.ReadMIDI(in)
	default:
		score, err = pctx.ReadMusicXML(in)
	}
	if err != nil {
		return err
	}
	_, text, err := songscore.EncodeJSON(score)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func commonFlags(extra ...cli.Flag) []cli.Flag {
	return append(extra,
		&cli.IntFlag{Name: "divisions", Usage: "ticks per quarter note"},
		&cli.StringFlag{Name: "charset", Usage: "charset of MIDI lyric events"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
	)
}

func main() {
	cmd := &cli.Command{
		Name:  "songscore",
		Usage: "Convert parts data to MusicXML and MIDI, and back",
		Commands: []*cli.Command{
			{
				Name:      "decode",
				Usage:     "render a parts data JSON document (file or stdin) to MusicXML and MIDI",
				ArgsUsage: "[song.json]",
				Flags: commonFlags(
					&cli.StringFlag{Name: "xml", Usage: "MusicXML output path"},
					&cli.StringFlag{Name: "midi", Usage: "MIDI output path"},
					&cli.StringFlag{Name: "archive", Usage: "directory receiving stale output files"},
					&cli.IntFlag{Name: "seed", Usage: "random seed for parts without notes or rhythms"},
				),
				Action: decode,
			},
			{
				Name:      "encode",
				Usage:     "print the parts data of a MusicXML or MIDI file",
				ArgsUsage: "score.xml|score.mid",
				Flags:     commonFlags(),
				Action:    encode,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println("Error:", err)
		fmt.Println("Use --help for more information.")
		os.Exit(1)
	}
}

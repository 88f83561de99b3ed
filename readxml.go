package songscore

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	xml "github.com/subchen/go-xmldom"
)

// Reading MusicXML ************************************************************

type scorePartInfo struct {
	Name       string
	Instrument string
	Program    int // 1 based, 0 when absent
	Channel    int // 1 based, 0 when absent
}

func childText(n *xml.Node, name string) string {
	if c := n.GetChild(name); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

func childInt(n *xml.Node, name string, fallback int) int {
	if v, err := strconv.Atoi(childText(n, name)); err == nil {
		return v
	}
	return fallback
}

func readPartList(root *xml.Node) map[string]scorePartInfo {
	res := make(map[string]scorePartInfo)
	for _, sp := range root.Query("//part-list/score-part") {
		info := scorePartInfo{Name: childText(sp, "part-name")}
		if n := sp.QueryOne("score-instrument/instrument-name"); n != nil {
			info.Instrument = strings.TrimSpace(n.Text)
		}
		if mi := sp.GetChild("midi-instrument"); mi != nil {
			info.Program = childInt(mi, "midi-program", 0)
			info.Channel = childInt(mi, "midi-channel", 0)
		}
		res[sp.GetAttributeValue("id")] = info
	}
	return res
}

func (info scorePartInfo) instrument() Instrument {
	if info.Instrument != "" {
		if i, msg := ResolveInstrument(info.Instrument); msg == "" {
			return i
		}
	}
	if info.Program > 0 || info.Channel == 10 {
		return InstrumentByProgram(info.Program-1, info.Channel == 10)
	}
	if info.Name != "" {
		if i, msg := ResolveInstrument(info.Name); msg == "" {
			return i
		}
	}
	return Piano
}

// xmlPartReader walks one <part>, keeping the attributes in force.
type xmlPartReader struct {
	pctx      *Converter
	part      *Part
	divisions int // divisions of the file
	velocity  int
	haveKey   bool
	haveTime  bool
	haveClef  bool
	haveTempo bool
	pending   string // marking read after the last note so far
}

func (r *xmlPartReader) scale(d int) int {
	if r.divisions <= 0 || r.divisions == r.pctx.Divisions {
		return d
	}
	return int(math.Round(float64(d) * float64(r.pctx.Divisions) / float64(r.divisions)))
}

func (r *xmlPartReader) readAttributes(a *xml.Node) {
	if d := childInt(a, "divisions", 0); d > 0 {
		r.divisions = d
	}
	if k := a.GetChild("key"); k != nil && !r.haveKey {
		r.part.Key = KeyFromFifths(childInt(k, "fifths", 0), childText(k, "mode"))
		r.haveKey = true
	}
	if t := a.GetChild("time"); t != nil && !r.haveTime {
		beats := 0
		for _, s := range strings.Split(childText(t, "beats"), "+") {
			n, _ := strconv.Atoi(strings.TrimSpace(s))
			beats += n
		}
		bt := childInt(t, "beat-type", 4)
		if beats > 0 && bt > 0 {
			r.part.Time = TimeSignature{Symbol: t.GetAttributeValue("symbol"), Beats: beats, BeatType: bt}
			if r.part.Time.Symbol == "normal" {
				r.part.Time.Symbol = ""
			}
			r.haveTime = true
		}
	}
	if c := a.GetChild("clef"); c != nil && !r.haveClef {
		r.part.Clef = ClefFromSign(childText(c, "sign"), childInt(c, "line", 0), childInt(c, "clef-octave-change", 0))
		r.haveClef = true
	}
}

func (r *xmlPartReader) setTempo(v string) {
	if r.haveTempo || v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
		r.part.Tempo = f
		r.haveTempo = true
	}
}

// readDirection returns the dynamic marking the direction carries, if any.
func (r *xmlPartReader) readDirection(d *xml.Node) string {
	mark := ""
	if dyn := d.QueryOne("direction-type/dynamics"); dyn != nil && len(dyn.Children) > 0 {
		mark = dyn.Children[0].Name
		if !KnownDynamic(mark) {
			mark = ""
		} else {
			r.velocity = DynamicVelocity(mark)
		}
	}
	if pm := d.QueryOne("direction-type/metronome/per-minute"); pm != nil {
		r.setTempo(strings.TrimSpace(pm.Text))
	}
	if s := d.GetChild("sound"); s != nil {
		r.setTempo(s.GetAttributeValue("tempo"))
	}
	return mark
}

func (r *xmlPartReader) readNote(n *xml.Node) (e *Element, chord bool) {
	if n.GetChild("grace") != nil || n.GetChild("cue") != nil {
		return nil, false
	}
	if v := childText(n, "voice"); v != "" && v != "1" {
		return nil, false
	}
	d := r.scale(childInt(n, "duration", 0))
	if d <= 0 {
		return nil, false
	}
	chord = n.GetChild("chord") != nil
	if n.GetChild("rest") != nil {
		e = RestNew(d)
	} else if p := n.GetChild("pitch"); p != nil {
		alter := 0
		if f, err := strconv.ParseFloat(childText(p, "alter"), 64); err == nil {
			alter = int(math.Round(f))
		}
		e = NoteNew(Pitch{
			Step:   strings.ToUpper(childText(p, "step")),
			Alter:  alter,
			Octave: childInt(p, "octave", DefaultOctave),
		}, d, r.velocity)
	} else {
		// unpitched percussion is kept as a rest of the same length
		e = RestNew(d)
	}
	if v := n.GetAttributeValue("dynamics"); v != "" && !e.IsRest() {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			e.Velocity = int(math.Round(f * 90 / 100))
		}
	}
	for _, t := range n.GetChildren("tie") {
		switch t.GetAttributeValue("type") {
		case "start":
			e.TieStart = true
		case "stop":
			e.TieStop = true
		}
	}
	if l := n.QueryOne("lyric/text"); l != nil {
		e.Lyric = l.Text
	}
	return e, chord
}

func (r *xmlPartReader) readMeasure(mn *xml.Node, index int) *Measure {
	m := &Measure{Index: index}
	var last *Element
	for _, c := range mn.Children {
		switch c.Name {
		case "attributes":
			r.readAttributes(c)
		case "direction":
			if mark := r.readDirection(c); mark != "" {
				if m.IsEmpty() {
					m.Dynamic = mark
					r.pending = ""
				} else {
					r.pending = mark
				}
			}
		case "sound":
			r.setTempo(c.GetAttributeValue("tempo"))
		case "note":
			e, chord := r.readNote(c)
			if e == nil {
				continue
			}
			if chord && last != nil && !last.IsRest() && !e.IsRest() {
				last.Kind = KIND_CHORD
				last.Pitches = append(last.Pitches, e.Pitches...)
				continue
			}
			if r.pending != "" {
				if m.IsEmpty() {
					m.Dynamic = r.pending
				} else {
					e.Dynamic = r.pending
				}
				r.pending = ""
			}
			m.Append(e)
			last = e
		}
	}
	return m
}

// ReadMusicXML loads a partwise MusicXML document. Only the first voice of
// each part is read.
func (pctx *Converter) ReadMusicXML(in io.Reader) (*Score, error) {
	doc, err := xml.Parse(in)
	if err != nil {
		return nil, errors.Wrap(err, "parse musicxml")
	}
	root := doc.Root
	if root == nil || root.Name != "score-partwise" {
		return nil, errors.New("not a partwise MusicXML document")
	}
	score := &Score{Divisions: pctx.Divisions}
	if t := root.QueryOne("//work/work-title"); t != nil {
		score.Title = strings.TrimSpace(t.Text)
	}
	if score.Title == "" {
		score.Title = childText(root, "movement-title")
	}
	infos := readPartList(root)
	for i, pn := range root.GetChildren("part") {
		id := pn.GetAttributeValue("id")
		info := infos[id]
		part := &Part{
			ID:         id,
			Name:       info.Name,
			Instrument: info.instrument(),
			Key:        DefaultKey,
			Time:       DefaultTime,
			Clef:       DefaultClef,
			Tempo:      DefaultTempo,
		}
		if part.ID == "" {
			part.ID = partXMLID(i)
		}
		r := &xmlPartReader{pctx: pctx, part: part, velocity: DynamicVelocity(DefaultDynamic)}
		for j, mn := range pn.GetChildren("measure") {
			part.Measures = append(part.Measures, r.readMeasure(mn, j+1))
		}
		score.Parts = append(score.Parts, part)
	}
	return score, nil
}

package songscore

import (
	"fmt"
	"time"

	xml "github.com/subchen/go-xmldom"
)

const pi = `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.1 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">`

const Software = "songscore"

func partXMLID(i int) string {
	return fmt.Sprintf("P%d", i+1)
}

// MIDI channel of part i, 0 based. Percussion always sits on channel 9.
func partChannel(i int, p *Part) int {
	if p.Instrument.Percussion {
		return 9
	}
	ch := i % 15
	if ch >= 9 {
		ch++
	}
	return ch
}

func addPartList(n *xml.Node, score *Score) {
	pl := n.CreateNode("part-list")
	for i, p := range score.Parts {
		partId := partXMLID(i)
		sp := pl.CreateNode("score-part").SetAttributeValue("id", partId)
		sp.CreateNode("part-name").Text = p.Name
		if p.Instrument.PartName != "" && p.Instrument.PartName != p.Name {
			sp.CreateNode("part-abbreviation").Text = p.Instrument.PartName
		}
		instId := partId + "-I1"
		si := sp.CreateNode("score-instrument").SetAttributeValue("id", instId)
		si.CreateNode("instrument-name").Text = p.Instrument.Name
		mi := sp.CreateNode("midi-instrument").SetAttributeValue("id", instId)
		mi.CreateNode("midi-channel").Text = fmt.Sprint(partChannel(i, p) + 1)
		if !p.Instrument.Percussion {
			mi.CreateNode("midi-program").Text = fmt.Sprint(p.Instrument.Program + 1)
		}
	}
}
func setTitle(n *xml.Node, title string) {
	if title == "" {
		return
	}
	w := n.CreateNode("work")
	t := w.CreateNode("work-title")
	t.Text = title
}

func SetAttributeAlt(x *xml.Node, name string, sel bool, v1, v2 string) {
	var v string
	if sel {
		v = v1
	} else {
		v = v2
	}
	x.SetAttributeValue(name, v)
}

// Attributes ******************************************************************
func genKey(x *xml.Node, k Key) {
	kn := x.CreateNode("key")
	f := kn.CreateNode("fifths")
	f.Text = fmt.Sprint(k.Fifths)
	m := kn.CreateNode("mode")
	m.Text = k.XMLMode()
}

func genTime(x *xml.Node, t TimeSignature) {
	tn := x.CreateNode("time")
	if t.Symbol != "" {
		tn.SetAttributeValue("symbol", t.Symbol)
	}
	beats := tn.CreateNode("beats")
	beats.Text = fmt.Sprint(t.Beats)
	beatType := tn.CreateNode("beat-type")
	beatType.Text = fmt.Sprint(t.BeatType)
}

func genClef(x *xml.Node, c Clef) {
	cn := x.CreateNode("clef")
	cn.CreateNode("sign").Text = c.Sign
	if c.Sign != "percussion" {
		cn.CreateNode("line").Text = fmt.Sprint(c.Line)
	}
	if c.OctaveChange != 0 {
		cn.CreateNode("clef-octave-change").Text = fmt.Sprint(c.OctaveChange)
	}
}

func genTempo(x *xml.Node, bpm float64) {
	d := x.CreateNode("direction").SetAttributeValue("placement", "above")
	dt := d.CreateNode("direction-type")
	mm := dt.CreateNode("metronome")
	mm.CreateNode("beat-unit").Text = "quarter"
	mm.CreateNode("per-minute").Text = formatNumber(bpm)
	d.CreateNode("sound").SetAttributeValue("tempo", formatNumber(bpm))
}

func genDynamic(x *xml.Node, mark string) {
	d := x.CreateNode("direction").SetAttributeValue("placement", "below")
	dt := d.CreateNode("direction-type")
	dn := dt.CreateNode("dynamics")
	dn.CreateNode(mark)
	d.CreateNode("sound").SetAttributeValue("dynamics", formatNumber(float64(DynamicVelocity(mark))*100/90))
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprint(int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}

// Note ************************************************************************

// xNote is one <note> element: a pitch or a rest of one written duration.
type xNote struct {
	Pitch          Pitch
	IsRest         bool
	Chord          bool
	Duration       int
	IType          int
	DotCount       int
	Triplet        bool
	TieStart       bool
	TieStop        bool
	ShowAccidental bool
	Lyric          string

	Notations []nItem
}

var accidentalValues = map[int]string{
	-2: "flat-flat",
	-1: "flat",
	0:  "natural",
	1:  "sharp",
	2:  "sharp-sharp",
}

var sharp = []byte("FCGDAEB")
var flat = []byte("BEADGCF")

// keyAlter is the alteration the key signature applies to step.
func keyAlter(step string, fifths int) int {
	note := step[0]
	if fifths > 0 {
		for i := 0; i < fifths && i < len(sharp); i++ {
			if note == sharp[i] {
				return 1
			}
		}
	} else {
		for i := 0; i < -fifths && i < len(flat); i++ {
			if note == flat[i] {
				return -1
			}
		}
	}
	return 0
}

func (n *xNote) Gen(x *xml.Node) {
	noteNode := x.CreateNode("note")
	if n.Chord {
		noteNode.CreateNode("chord")
	}
	if n.IsRest {
		noteNode.CreateNode("rest")
	} else {
		pitch := noteNode.CreateNode("pitch")
		step := pitch.CreateNode("step")
		step.Text = n.Pitch.Step
		if n.Pitch.Alter != 0 {
			alter := pitch.CreateNode("alter")
			alter.Text = fmt.Sprint(n.Pitch.Alter)
		}
		octave := pitch.CreateNode("octave")
		octave.Text = fmt.Sprint(n.Pitch.Octave)
	}
	dur := noteNode.CreateNode("duration")
	dur.Text = fmt.Sprint(n.Duration)
	if n.TieStop {
		noteNode.CreateNode("tie").SetAttributeValue("type", "stop")
	}
	if n.TieStart {
		noteNode.CreateNode("tie").SetAttributeValue("type", "start")
	}

	voice := noteNode.CreateNode("voice")
	voice.Text = "1"
	typ := noteNode.CreateNode("type")
	typ.Text = noteTypes[n.IType]
	for i := 0; i < n.DotCount; i++ {
		noteNode.CreateNode("dot")
	}
	if mod, ok := accidentalValues[n.Pitch.Alter]; ok && n.ShowAccidental {
		acc := noteNode.CreateNode("accidental")
		acc.Text = mod
	}
	if n.Triplet {
		(&tripletMod{}).Decorate(noteNode)
	}

	n.GenNotation(noteNode)

	if n.Lyric != "" {
		l := noteNode.CreateNode("lyric").SetAttributeValue("number", "1")
		l.CreateNode("syllabic").Text = "single"
		text := l.CreateNode("text")
		text.Text = n.Lyric
	}
}

// writtenType names duration as a note type, or a 3:2 tuplet member.
func writtenType(divisions, duration int) (itype, dots int, triplet, ok bool) {
	if t, d, ok := noteType(divisions, duration); ok {
		return t, d, false, true
	}
	if (duration*3)%2 == 0 {
		if t, d, ok := noteType(divisions, duration*3/2); ok {
			return t, d, true, true
		}
	}
	return 0, 0, false, false
}

// nearestType is used for durations no note type can write.
func (pctx *Converter) nearestType(duration int) int {
	pctx.warn(fmt.Sprintf("Unexpected note duration (%d/%1.3f)",
		duration, float64(duration)/float64(pctx.Divisions)))
	for j := len(noteTypes) - 1; j > 0; j-- {
		if c := typeDuration(pctx.Divisions, j); c != 0 && c <= duration {
			return j
		}
	}
	return 0
}

// components splits an element duration into written note values.
func (pctx *Converter) components(duration int) []int {
	if _, _, _, ok := writtenType(pctx.Divisions, duration); ok {
		return []int{duration}
	}
	return splitDuration(pctx.Divisions, duration)
}

// genElement writes e as one or more tied <note> groups.
func (pctx *Converter) genElement(x *xml.Node, e *Element, fifths int) {
	parts := pctx.components(e.Duration)
	for ci, d := range parts {
		itype, dots, triplet, ok := writtenType(pctx.Divisions, d)
		if !ok {
			itype = pctx.nearestType(d)
		}
		base := xNote{
			IsRest:   e.IsRest(),
			Duration: d,
			IType:    itype,
			DotCount: dots,
			Triplet:  triplet,
		}
		if !e.IsRest() {
			base.TieStop = ci > 0 || e.TieStop
			base.TieStart = ci < len(parts)-1 || e.TieStart
		}
		if e.IsRest() {
			n := base
			if ci == 0 {
				n.Lyric = e.Lyric
			}
			n.Gen(x)
			continue
		}
		for k, p := range e.Pitches {
			n := base
			n.Pitch = p
			n.Chord = k > 0
			n.ShowAccidental = !n.TieStop && p.Alter != keyAlter(p.Step, fifths)
			if ci == 0 && k == 0 {
				n.Lyric = e.Lyric
			}
			if n.TieStop {
				n.appendNotation(&tied{start: false})
			}
			if n.TieStart {
				n.appendNotation(&tied{start: true})
			}
			n.Gen(x)
		}
	}
}

// Measure *********************************************************************
func (pctx *Converter) genMeasure(x *xml.Node, p *Part, m *Measure) {
	mn := x.CreateNode("measure")
	mn.SetAttributeValue("number", fmt.Sprint(m.Index))

	if m.Index == 1 {
		ma := mn.CreateNode("attributes")
		dn := ma.CreateNode("divisions")
		dn.Text = fmt.Sprint(pctx.Divisions)
		genKey(ma, p.Key)
		genTime(ma, p.Time)
		genClef(ma, p.Clef)
		genTempo(mn, p.Tempo)
	}
	if m.Dynamic != "" {
		genDynamic(mn, m.Dynamic)
	}
	for _, e := range m.Content {
		if e.Dynamic != "" {
			genDynamic(mn, e.Dynamic)
		}
		pctx.genElement(mn, e, p.Key.Fifths)
	}
}

// *****************************************************************************
func (pctx *Converter) generateXml(score *Score) string {
	if score.Divisions > 0 && score.Divisions != pctx.Divisions {
		defer pctx.SetDivisions(pctx.Divisions)
		pctx.SetDivisions(score.Divisions)
	}
	doc := xml.NewDocument("score-partwise")
	doc.Root.SetAttributeValue("version", "3.1")
	doc.Directives = append(doc.Directives, pi)
	setTitle(doc.Root, score.Title)
	if score.Title != "" {
		doc.Root.CreateNode("movement-title").Text = score.Title
	}

	id := doc.Root.CreateNode("identification")
	encoding := id.CreateNode("encoding")
	software := encoding.CreateNode("software")
	software.Text = Software
	date := encoding.CreateNode("encoding-date")
	date.Text = time.Now().Format("2006-01-02")

	addPartList(doc.Root, score)
	for i, p := range score.Parts {
		pctx.partID = p.ID
		pctx.index = -1
		part := doc.Root.CreateNode("part").SetAttributeValue("id", partXMLID(i))
		for _, m := range p.Measures {
			pctx.genMeasure(part, p, m)
		}
	}
	pctx.partID = ""

	return doc.XMLPretty()
}

// MusicXML renders score as a MusicXML partwise document.
func (pctx *Converter) MusicXML(score *Score) string {
	return pctx.generateXml(score)
}

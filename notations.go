package songscore

import (
	xml "github.com/subchen/go-xmldom"
)

type nItem interface {
	Gen(*xml.Node)
}

// Tie *************************************************************************

type tied struct {
	start bool
}

func (t *tied) Gen(x *xml.Node) {
	tn := x.CreateNode("tied")
	SetAttributeAlt(tn, "type", t.start, "start", "stop")
}

// Time modification ***********************************************************

// tripletMod marks a note written as a 3:2 tuplet member.
type tripletMod struct{}

func (t *tripletMod) Decorate(x *xml.Node) {
	tm := x.CreateNode("time-modification")
	an := tm.CreateNode("actual-notes")
	nn := tm.CreateNode("normal-notes")
	an.Text = "3"
	nn.Text = "2"
}

func (n *xNote) appendNotation(i nItem) {
	n.Notations = append(n.Notations, i)
}

func (n *xNote) GenNotation(x *xml.Node) {
	if len(n.Notations) == 0 {
		return
	}
	notations := x.CreateNode("notations")
	for _, elem := range n.Notations {
		elem.Gen(notations)
	}
}

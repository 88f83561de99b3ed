// reader.go
package songscore

import (
	"fmt"
	"unicode"
)

// sReader scans short musical tokens such as "C#4", "B- major" or "6/8".
type sReader struct {
	data []rune
	idx  int
}

func sReaderNew(str string) *sReader {
	return &sReader{
		data: []rune(str),
		idx:  0,
	}
}
func (r *sReader) Next() rune {
	if r.idx >= len(r.data) {
		r.idx++
		return rune(0)
	}
	res := r.data[r.idx]
	r.idx++
	return res
}
func (r *sReader) Peek() rune {
	if r.idx >= len(r.data) {
		return rune(0)
	}
	return r.data[r.idx]
}
func (r *sReader) UnRead() {
	if r.idx == 0 {
		return
	}
	r.idx--
}
func (r *sReader) Rest() string {
	if r.idx >= len(r.data) {
		return ""
	}
	return string(r.data[r.idx:])
}
func (r *sReader) AtEnd() bool {
	return r.idx >= len(r.data)
}
func (r *sReader) SkipSpace() {
	for {
		c := r.Next()
		if !unicode.IsSpace(c) {
			r.UnRead()
			return
		}
	}
}
func (r *sReader) String() string {
	return fmt.Sprintf("Reader:[%d]%v ... %v", r.idx, string(r.data[:min(r.idx, len(r.data))]), string(r.data[min(r.idx, len(r.data)):]))
}

// ReadInt returns defaultValue and false when no digit is found.
func (r *sReader) ReadInt(defaultValue int) (int, bool) {
	found := false
	val := 0
	for {
		d := r.Next()
		if unicode.IsDigit(d) {
			found = true
			val = val*10 + int(d-'0')
		} else {
			r.UnRead()
			break
		}
	}
	if found {
		return val, true
	}
	return defaultValue, false
}
func (r *sReader) ReadWord() string {
	w := ""
	for {
		c := r.Next()
		if !unicode.IsLetter(c) {
			r.UnRead()
			return w
		}
		w += string(c)
	}
}

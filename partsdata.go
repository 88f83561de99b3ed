package songscore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Melody **********************************************************************

// Melody is one entry of a melodies array: a note name, "rest", "" or a
// list of note names played together.
type Melody struct {
	Note   string
	Chord  []string
	IsList bool
}

func NoteMelody(n string) Melody {
	return Melody{Note: n}
}
func ChordMelody(notes ...string) Melody {
	return Melody{Chord: notes, IsList: true}
}

func (m *Melody) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*m = Melody{}
	case string:
		*m = Melody{Note: t}
	case []any:
		chord := make([]string, 0, len(t))
		for _, c := range t {
			chord = append(chord, jsonScalarString(c))
		}
		*m = Melody{Chord: chord, IsList: true}
	default:
		*m = Melody{Note: jsonScalarString(t)}
	}
	return nil
}

func (m Melody) MarshalJSON() ([]byte, error) {
	if m.IsList {
		if m.Chord == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(m.Chord)
	}
	return json.Marshal(m.Note)
}

func (m Melody) String() string {
	if m.IsList {
		return "[" + strings.Join(m.Chord, ", ") + "]"
	}
	return m.Note
}

func jsonScalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Beat ************************************************************************

// Beat is a position in quarter notes from the start of the part. Numeric
// strings are accepted.
type Beat float64

func (b *Beat) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*b = Beat(t)
	case string:
		// unreadable beats collapse to 0 and are dropped by the assembler
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		*b = Beat(f)
	default:
		*b = 0
	}
	return nil
}

// MarshalJSON always writes a decimal point, 2 is written 2.0.
func (b Beat) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(b), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// Lenient text ****************************************************************

// textOf reads a scalar as text. Objects and arrays read as "".
func textOf(raw json.RawMessage) (text string, isString bool) {
	if len(raw) == 0 {
		return "", true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case map[string]any, []any:
		return "", false
	default:
		return jsonScalarString(t), false
	}
}

// settingOf reads a setting such as a key or a clef. Anything but a string
// gives "" so the default applies, and a note is appended to notes.
func settingOf(raw json.RawMessage, field string, notes *[]string) string {
	s, ok := textOf(raw)
	if !ok {
		*notes = append(*notes, fmt.Sprintf("%s %s is not a string, using the default", field, raw))
		return ""
	}
	return s
}

// textsOf reads a list of scalars, each as its text form.
func textsOf(raw json.RawMessage, field string, notes *[]string) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		*notes = append(*notes, fmt.Sprintf("%s is not a list, ignored", field))
		return nil
	}
	res := make([]string, len(items))
	for i, it := range items {
		s, ok := textOf(it)
		if !ok {
			*notes = append(*notes, fmt.Sprintf("%s[%d] %s is not a string, read as %q", field, i, it, s))
		}
		res[i] = s
	}
	return res
}

// Part and score data *********************************************************
type PartData struct {
	Instrument    string   `json:"instrument,omitempty"`
	Melodies      []Melody `json:"melodies"`
	Chords        []Melody `json:"chords,omitempty"`
	BeatEnds      []Beat   `json:"beat_ends"`
	Dynamics      []string `json:"dynamics,omitempty"`
	Lyrics        []string `json:"lyrics,omitempty"`
	Key           string   `json:"key,omitempty"`
	TimeSignature string   `json:"time_signature,omitempty"`
	Clef          string   `json:"clef,omitempty"`
	Tempo         any      `json:"tempo,omitempty"`

	coerced []string
}

func (p *PartData) UnmarshalJSON(b []byte) error {
	type plain PartData
	var aux struct {
		plain
		Instrument    json.RawMessage `json:"instrument"`
		Dynamics      json.RawMessage `json:"dynamics"`
		Lyrics        json.RawMessage `json:"lyrics"`
		Key           json.RawMessage `json:"key"`
		TimeSignature json.RawMessage `json:"time_signature"`
		Clef          json.RawMessage `json:"clef"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = PartData(aux.plain)
	p.Instrument = settingOf(aux.Instrument, "instrument", &p.coerced)
	p.Key = settingOf(aux.Key, "key", &p.coerced)
	p.TimeSignature = settingOf(aux.TimeSignature, "time_signature", &p.coerced)
	p.Clef = settingOf(aux.Clef, "clef", &p.coerced)
	p.Dynamics = textsOf(aux.Dynamics, "dynamics", &p.coerced)
	p.Lyrics = textsOf(aux.Lyrics, "lyrics", &p.coerced)
	return nil
}

// Notes returns melodies, or chords when melodies is absent.
func (p *PartData) Notes() []Melody {
	if p.Melodies != nil {
		return p.Melodies
	}
	return p.Chords
}

type NamedPart struct {
	ID   string
	Data *PartData
}

// PartsData keeps parts in document order.
type PartsData []NamedPart

func (pd *PartsData) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	t, err := dec.Token()
	if err != nil {
		return err
	}
	if t == nil {
		*pd = nil
		return nil
	}
	if d, ok := t.(json.Delim); !ok || d != '{' {
		return errors.New("parts_data must be an object")
	}
	var res PartsData
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		id, _ := t.(string)
		data := &PartData{}
		if err := dec.Decode(data); err != nil {
			return errors.Wrapf(err, "part %q", id)
		}
		res = append(res, NamedPart{ID: id, Data: data})
	}
	*pd = res
	return nil
}

func (pd PartsData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pd {
		if i > 0 {
			buf.WriteString(", ")
		}
		k, err := json.Marshal(p.ID)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "part %q", p.ID)
		}
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (pd PartsData) Get(id string) *PartData {
	for _, p := range pd {
		if p.ID == id {
			return p.Data
		}
	}
	return nil
}

type ScoreData struct {
	Title         string   `json:"title,omitempty"`
	SongStructure []string `json:"song_structure,omitempty"`
	Key           string   `json:"key,omitempty"`
	TimeSignature string   `json:"time_signature,omitempty"`
	Tempo         any      `json:"tempo,omitempty"`
	Clef          string   `json:"clef,omitempty"`

	coerced []string
}

func (sd *ScoreData) UnmarshalJSON(b []byte) error {
	type plain ScoreData
	var aux struct {
		plain
		Title         json.RawMessage `json:"title"`
		SongStructure json.RawMessage `json:"song_structure"`
		Key           json.RawMessage `json:"key"`
		TimeSignature json.RawMessage `json:"time_signature"`
		Clef          json.RawMessage `json:"clef"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*sd = ScoreData(aux.plain)
	title, ok := textOf(aux.Title)
	if !ok {
		sd.coerced = append(sd.coerced, fmt.Sprintf("title %s is not a string, read as %q", aux.Title, title))
	}
	sd.Title = title
	sd.SongStructure = textsOf(aux.SongStructure, "song_structure", &sd.coerced)
	sd.Key = settingOf(aux.Key, "key", &sd.coerced)
	sd.TimeSignature = settingOf(aux.TimeSignature, "time_signature", &sd.coerced)
	sd.Clef = settingOf(aux.Clef, "clef", &sd.coerced)
	return nil
}

// Song is the document exchanged with the text generator.
type Song struct {
	PartsData PartsData `json:"parts_data"`
	ScoreData ScoreData `json:"score_data"`
}

// Schema **********************************************************************

const songSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["parts_data"],
  "properties": {
    "parts_data": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "instrument": {"type": ["string", "null"]},
          "melodies": {"$ref": "#/definitions/melodies"},
          "chords": {"$ref": "#/definitions/melodies"},
          "beat_ends": {
            "type": ["array", "null"],
            "items": {"type": ["number", "string"]}
          },
          "dynamics": {
            "type": ["array", "null"],
            "items": {"type": ["string", "null"]}
          },
          "lyrics": {
            "type": ["array", "null"],
            "items": {"type": ["string", "null"]}
          },
          "key": {"type": "string"},
          "time_signature": {"type": "string"},
          "clef": {"type": "string"},
          "tempo": {"type": ["number", "string"]}
        }
      }
    },
    "score_data": {
      "type": "object",
      "properties": {
        "title": {"type": "string"},
        "song_structure": {"type": "array", "items": {"type": "string"}},
        "key": {"type": "string"},
        "time_signature": {"type": "string"},
        "clef": {"type": "string"},
        "tempo": {"type": ["number", "string"]}
      }
    }
  },
  "definitions": {
    "melodies": {
      "type": ["array", "null"],
      "items": {
        "anyOf": [
          {"type": ["string", "null"]},
          {"type": "array", "items": {"type": "string"}}
        ]
      }
    }
  }
}`

var songSchemaCompiled *gojsonschema.Schema

func init() {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(songSchema))
	if err != nil {
		panic(err)
	}
	songSchemaCompiled = s
}

// ValidateSong checks a raw document against the song schema and returns one
// message per violation.
func ValidateSong(data []byte) ([]string, error) {
	result, err := songSchemaCompiled.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, errors.Wrap(err, "validate song")
	}
	var res []string
	for _, e := range result.Errors() {
		res = append(res, e.String())
	}
	return res, nil
}

// LoadSong reads a song document. Schema violations and values of the wrong
// type become warnings; only unreadable JSON is an error.
func (pctx *Converter) LoadSong(r io.Reader) (*Song, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read song")
	}
	violations, err := ValidateSong(data)
	if err != nil {
		return nil, err
	}
	for _, v := range violations {
		pctx.warn("Schema: " + v)
	}
	song := &Song{}
	if err := json.Unmarshal(data, song); err != nil {
		return nil, errors.Wrap(err, "decode song")
	}
	for _, p := range song.PartsData {
		for _, c := range p.Data.coerced {
			pctx.warn("Warning: part " + p.ID + ": " + c)
		}
	}
	for _, c := range song.ScoreData.coerced {
		pctx.warn("Warning: score_data: " + c)
	}
	return song, nil
}

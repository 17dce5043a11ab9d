package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PayloadKind identifies the concrete variant carried by an [Operation].
type PayloadKind int

const (
	PayloadUnknown PayloadKind = iota
	PayloadSong
	PayloadSchedule
	PayloadDelete
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadSong:
		return "song"
	case PayloadSchedule:
		return "schedule"
	case PayloadDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Payload is a typed view of a mutation body. The concrete type is selected
// by the (action, collection) pair, see [DecodePayload]. The view only holds
// the fields the client reads; the full body travels in [Operation.Raw].
type Payload interface {
	Kind() PayloadKind
}

// SongPayload adds a song to the catalogue.
type SongPayload struct {
	Musica string `json:"musica"`
	Cantor string `json:"cantor"`
	Tom    string `json:"tom,omitempty"`
	Link   string `json:"link,omitempty"`
}

func (SongPayload) Kind() PayloadKind { return PayloadSong }

func (p *SongPayload) UnmarshalJSON(b []byte) error {
	var w struct {
		Musica scalar `json:"musica"`
		Cantor scalar `json:"cantor"`
		Tom    scalar `json:"tom"`
		Link   scalar `json:"link"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = SongPayload{Musica: string(w.Musica), Cantor: string(w.Cantor), Tom: string(w.Tom), Link: string(w.Link)}
	return nil
}

// SchedulePayload adds an entry to the service schedule.
type SchedulePayload struct {
	Data       string   `json:"data"`
	Ministro   string   `json:"ministro"`
	Musicas    []string `json:"musicas,omitempty"`
	Observacao string   `json:"observacao,omitempty"`
}

func (SchedulePayload) Kind() PayloadKind { return PayloadSchedule }

func (p *SchedulePayload) UnmarshalJSON(b []byte) error {
	var w struct {
		Data       scalar  `json:"data"`
		Ministro   scalar  `json:"ministro"`
		Musicas    scalars `json:"musicas"`
		Observacao scalar  `json:"observacao"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = SchedulePayload{
		Data:       string(w.Data),
		Ministro:   string(w.Ministro),
		Musicas:    []string(w.Musicas),
		Observacao: string(w.Observacao),
	}
	return nil
}

// DeletePayload identifies the row to remove. A numeric id is kept in the
// form [RecordID] gives it, so it matches cached records.
type DeletePayload struct {
	ID string `json:"id"`
}

func (DeletePayload) Kind() PayloadKind { return PayloadDelete }

func (p *DeletePayload) UnmarshalJSON(b []byte) error {
	var w struct {
		ID scalar `json:"id"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	p.ID = string(w.ID)
	return nil
}

// UnknownPayload keeps the raw body of an operation whose (action,
// collection) pair is not recognised. Such operations are accepted into the
// queue but rejected at dispatch time.
type UnknownPayload struct {
	Raw json.RawMessage
}

func (UnknownPayload) Kind() PayloadKind { return PayloadUnknown }

func (u UnknownPayload) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("null"), nil
	}
	return u.Raw, nil
}

// variantFor returns the payload kind a pair maps to, or PayloadUnknown.
// collection must already be canonical.
func variantFor(action, collection string) PayloadKind {
	if _, known := CanonicalCollection(collection); !known {
		return PayloadUnknown
	}
	switch {
	case action == ActionAddRow && collection == CollectionSongs:
		return PayloadSong
	case action == ActionAddRow && collection == CollectionSchedules:
		return PayloadSchedule
	case action == ActionDeleteRow:
		return PayloadDelete
	default:
		return PayloadUnknown
	}
}

// DecodePayload builds the typed payload for the given pair. Pairs that do
// not map to a known variant, and bodies that do not decode into one, yield
// an [UnknownPayload] holding raw. Scalar fields accept strings, numbers and
// booleans alike.
func DecodePayload(action, collection string, raw json.RawMessage) Payload {
	canonical, _ := CanonicalCollection(collection)
	kind := variantFor(action, canonical)
	if kind == PayloadUnknown || len(raw) == 0 {
		return UnknownPayload{Raw: raw}
	}

	var (
		p   Payload
		err error
	)
	switch kind {
	case PayloadSong:
		var v SongPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case PayloadSchedule:
		var v SchedulePayload
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		var v DeletePayload
		err = json.Unmarshal(raw, &v)
		p = v
	}
	if err != nil {
		return UnknownPayload{Raw: raw}
	}
	return p
}

// RecordID renders an id field value as a string. Integral numbers lose
// any fractional zeros so that 42, 42.0 and "42" all compare equal.
func RecordID(v any) (string, bool) {
	var id string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		id = t
	case float64:
		id = strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		id = normalizeNumber(string(t))
	default:
		id = fmt.Sprint(t)
	}
	id = strings.TrimSpace(id)
	return id, id != ""
}

func normalizeNumber(n string) string {
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return n
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// scalar decodes any JSON scalar into its string form. Objects and arrays
// are an error.
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = scalar(v)
	case b[0] == '{', b[0] == '[':
		return fmt.Errorf("expected a scalar, got %s", b)
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*s = scalar(b)
	default:
		*s = scalar(normalizeNumber(string(b)))
	}
	return nil
}

// scalars decodes a list of scalars. A lone scalar is a one-element list.
type scalars []string

func (s *scalars) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	if b[0] != '[' {
		var one scalar
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = scalars{string(one)}
		return nil
	}

	var many []scalar
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	out := make(scalars, len(many))
	for i, v := range many {
		out[i] = string(v)
	}
	*s = out
	return nil
}

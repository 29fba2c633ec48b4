package tjweather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Envelope wraps every response from the API, including errors.
type Envelope struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *ForecastData `json:"data,omitempty"`

	// Raw is the body exactly as received.
	Raw json.RawMessage `json:"-"`
}

// ForecastData is the payload of a successful query.
type ForecastData struct {
	Units    Units  `json:"units"`
	Data     []Row  `json:"data"`
	TimeInit string `json:"time_init"`
}

// Row is one time step: "time" plus one value per requested field.
type Row map[string]any

// Time returns the row's timestamp.
func (r Row) Time() string {
	s, _ := r["time"].(string)
	return s
}

// Unit pairs a field code with its unit.
type Unit struct {
	Field string
	Unit  string
}

// Units keeps the field → unit mapping in the order the API sent it, which is
// also the column order for table and CSV output.
type Units []Unit

// Fields returns the field codes in order.
func (u Units) Fields() []string {
	out := make([]string, len(u))
	for i, unit := range u {
		out[i] = unit.Field
	}
	return out
}

// UnmarshalJSON decodes a JSON object while keeping key order.
func (u *Units) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*u = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("units: expected object, got %v", tok)
	}

	var out Units
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("units: expected key, got %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		unit, ok := value.(string)
		if !ok && value != nil {
			unit = fmt.Sprint(value)
		}
		out = append(out, Unit{Field: key, Unit: unit})
	}
	*u = out
	return nil
}

// MarshalJSON encodes the units as an object in their original order.
func (u Units) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, unit := range u {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(unit.Field)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(unit.Unit)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Err returns an *UpstreamError when the envelope carries a failure code.
func (e *Envelope) Err() error {
	if e.Code == http.StatusOK {
		return nil
	}
	return &UpstreamError{Code: e.Code, Message: e.Message}
}

// HasData reports whether the envelope holds at least one row.
func (e *Envelope) HasData() bool {
	return e.Data != nil && len(e.Data.Data) > 0
}

// Indented returns the raw body pretty-printed. It falls back to re-encoding
// the envelope when no raw body is available.
func (e *Envelope) Indented() (string, error) {
	if len(e.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, e.Raw, "", "  "); err == nil {
			return buf.String(), nil
		}
	}
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

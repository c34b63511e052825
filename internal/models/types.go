package models

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// isoMillis is the textual timestamp format written by the admin panel.
const isoMillis = "2006-01-02T15:04:05.000Z"

var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|[0-9]+\.?[0-9]*(?:[eE][+-]?[0-9]+)?|\.[0-9]+(?:[eE][+-]?[0-9]+)?)`)

// ParseFloatPrefix reads the longest numeric prefix of s, ignoring leading
// whitespace. ok is false when s does not start with a number.
func ParseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	match := floatPrefix.FindString(s)
	if match == "" {
		return 0, false
	}

	switch strings.TrimLeft(match, "+-") {
	case "Infinity":
		if strings.HasPrefix(match, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Number is a numeric document field. Stored documents are not always
// consistent, so strings holding numbers are accepted and anything that is
// not a finite number decodes as 0.
type Number float64

// Float returns n as a float64.
func (n Number) Float() float64 { return float64(n) }

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		*n = Number(parseNumberText(s))
		return nil
	}
	*n = Number(parseNumberText(string(data)))
	return nil
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (n *Number) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Double:
		v, _ := raw.DoubleOK()
		*n = Number(finite(v))
	case bsontype.Int32:
		v, _ := raw.Int32OK()
		*n = Number(v)
	case bsontype.Int64:
		v, _ := raw.Int64OK()
		*n = Number(v)
	case bsontype.Decimal128:
		v, _ := raw.Decimal128OK()
		*n = Number(parseNumberText(v.String()))
	case bsontype.String:
		v, _ := raw.StringValueOK()
		*n = Number(parseNumberText(v))
	default:
		*n = 0
	}
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (n Number) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(float64(n))
}

func parseNumberText(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(v)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Text is a string document field that other writers sometimes store as a
// number (ids, phone numbers, tax ids). Numbers decode to their shortest
// decimal form; booleans, objects and arrays decode as "".
type Text string

// String returns t as a plain string.
func (t Text) String() string { return string(t) }

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch {
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text(s)
		}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var num json.Number
		if err := json.Unmarshal(data, &num); err == nil {
			*t = Text(formatNumber(num.String()))
		}
	}
	return nil
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (t *Text) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	*t = ""
	raw := bson.RawValue{Type: bt, Value: data}
	switch bt {
	case bsontype.String:
		v, _ := raw.StringValueOK()
		*t = Text(v)
	case bsontype.Int32:
		v, _ := raw.Int32OK()
		*t = Text(strconv.FormatInt(int64(v), 10))
	case bsontype.Int64:
		v, _ := raw.Int64OK()
		*t = Text(strconv.FormatInt(v, 10))
	case bsontype.Double:
		v, _ := raw.DoubleOK()
		*t = Text(strconv.FormatFloat(v, 'f', -1, 64))
	case bsontype.Decimal128:
		v, _ := raw.Decimal128OK()
		*t = Text(v.String())
	case bsontype.ObjectID:
		v, _ := raw.ObjectIDOK()
		*t = Text(v.Hex())
	}
	return nil
}

// formatNumber renders a JSON number literal without exponent or trailing
// zeros, so 1.1e9 and 1100000000 read the same.
func formatNumber(lit string) string {
	if !strings.ContainsAny(lit, ".eE") {
		return lit
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(v, 0) {
		return lit
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Timestamp is a document date. Records written by different tools carry
// either an ISO or "YYYY-MM-DD" string (kept verbatim in Text) or a native
// date (kept in Time). At most one of the two is set.
type Timestamp struct {
	Text string
	Time time.Time
}

// NewTimestamp returns the textual ISO form of t in UTC with millisecond precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Text: t.UTC().Format(isoMillis)}
}

// DateText returns a timestamp holding a plain date or ISO string.
func DateText(s string) Timestamp {
	return Timestamp{Text: s}
}

// NativeTime returns a timestamp holding a native date value.
func NativeTime(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// IsZero reports whether the timestamp carries no value.
func (t Timestamp) IsZero() bool {
	return t.Text == "" && t.Time.IsZero()
}

// String returns the textual form when present, otherwise the native date in RFC 3339.
func (t Timestamp) String() string {
	if t.Text != "" {
		return t.Text
	}
	if t.Time.IsZero() {
		return ""
	}
	return t.Time.UTC().Format(isoMillis)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler. Besides strings it accepts
// epoch milliseconds and exported {"seconds": ..., "nanoseconds": ...} objects.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			t.Text = s
		}
	case '{':
		var exported struct {
			Seconds     int64 `json:"seconds"`
			Nanoseconds int64 `json:"nanoseconds"`
		}
		if err := json.Unmarshal(data, &exported); err == nil && exported.Seconds != 0 {
			t.Time = time.Unix(exported.Seconds, exported.Nanoseconds).UTC()
		}
	default:
		if ms, err := strconv.ParseInt(string(data), 10, 64); err == nil {
			t.Time = time.UnixMilli(ms).UTC()
		}
	}
	return nil
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (t *Timestamp) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	*t = Timestamp{}
	raw := bson.RawValue{Type: bt, Value: data}
	switch bt {
	case bsontype.String:
		t.Text, _ = raw.StringValueOK()
	case bsontype.DateTime:
		if ms, ok := raw.DateTimeOK(); ok {
			t.Time = time.UnixMilli(ms).UTC()
		}
	case bsontype.Timestamp:
		if secs, _, ok := raw.TimestampOK(); ok {
			t.Time = time.Unix(int64(secs), 0).UTC()
		}
	}
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (t Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch {
	case t.Text != "":
		return bson.MarshalValue(t.Text)
	case !t.Time.IsZero():
		return bson.MarshalValue(t.Time)
	default:
		return bsontype.Null, nil, nil
	}
}

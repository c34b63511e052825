package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FormNumber accepts a JSON number or numeric text using either a comma or
// a period as decimal separator. Anything unreadable decodes to 0.
type FormNumber float64

func (n *FormNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = FormNumber(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*n = 0
		return nil
	}
	*n = FormNumber(parseFormNumber(s))
	return nil
}

func parseFormNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// StringList accepts a JSON array of strings or a single comma-separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = cleanList(items)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = cleanList(strings.Split(s, ","))
	return nil
}

func cleanList(items []string) StringList {
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// AttributeMap accepts a JSON object or JSON text holding an object.
// Invalid text decodes to an empty map.
type AttributeMap map[string]any

func (m *AttributeMap) UnmarshalJSON(data []byte) error {
	*m = AttributeMap{}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj != nil {
			*m = obj
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj != nil {
		*m = obj
	}
	return nil
}

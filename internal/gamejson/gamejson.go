// Package gamejson holds decoding helpers for the quirks of the game's JSON
// exports: annotated comment lines, "data" envelopes, numbers serialized as
// strings, and language-tagged unit names.
package gamejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// StripLineComments removes whole lines whose first non-blank characters are
// "//". Hand-annotated exports carry such headers, which encoding/json
// rejects. JSON strings escape newlines, so a line scan cannot split one.
func StripLineComments(data []byte) []byte {
	if !bytes.Contains(data, []byte("//")) {
		return data
	}

	lines := bytes.Split(data, []byte("\n"))
	kept := make([][]byte, 0, len(lines))
	for _, line := range lines {
		if bytes.HasPrefix(bytes.TrimSpace(line), []byte("//")) {
			continue
		}
		kept = append(kept, line)
	}
	return bytes.Join(kept, []byte("\n"))
}

// UnwrapData peels the optional {"data": ...} envelope the game wraps around
// API payloads. Documents without the envelope pass through untouched.
func UnwrapData(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}

	inner := bytes.TrimSpace(envelope.Data)
	if len(inner) == 0 || bytes.Equal(inner, []byte("null")) {
		return data, nil
	}
	return inner, nil
}

// FlexFloat decodes a JSON number that exports sometimes serialize as a
// string and sometimes leave null.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	v, err := flexNumber(data)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt decodes an integer field that exports serialize as a number, a
// float, or a numeric string. Fractional values are truncated.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	v, err := flexNumber(data)
	if err != nil {
		return err
	}
	*i = FlexInt(int(v))
	return nil
}

func flexNumber(data []byte) (float64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric string %q: %w", s, err)
		}
		return v, nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// LocalizedString holds a unit name the game serves either as a plain string
// or as an object of language-tagged variants.
type LocalizedString struct {
	value    string
	variants map[string]string
}

func (s *LocalizedString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = LocalizedString{}
		return nil
	}

	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LocalizedString{value: v}
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("name must be a string or a language map: %w", err)
	}
	*s = LocalizedString{variants: m}
	return nil
}

// MarshalJSON writes the resolved name, collapsing language maps back to the
// single string downstream consumers expect.
func (s LocalizedString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Resolve())
}

// Resolve picks the variant best matching the preferred languages, English
// when no preference is given. Plain-string names resolve to themselves.
func (s LocalizedString) Resolve(prefs ...language.Tag) string {
	if s.value != "" || len(s.variants) == 0 {
		return s.value
	}

	keys := make([]string, 0, len(s.variants))
	for k := range s.variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]language.Tag, 0, len(keys))
	tagKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		tagKeys = append(tagKeys, k)
	}
	if len(tags) == 0 {
		return s.variants[keys[0]]
	}

	if len(prefs) == 0 {
		prefs = []language.Tag{language.English}
	}
	_, idx, _ := language.NewMatcher(tags).Match(prefs...)
	return s.variants[tagKeys[idx]]
}

func (s LocalizedString) String() string {
	return s.Resolve()
}

// IsZero reports whether the export recorded no name at all.
func (s LocalizedString) IsZero() bool {
	return s.value == "" && len(s.variants) == 0
}

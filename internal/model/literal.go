package model

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
)

// Literal is a scalar written either as a JSON string or as a bare JSON number. Numbers
// keep their exact source text.
type Literal string

// UnmarshalJSON accepts strings, numbers, booleans and null
func (l *Literal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return errors.New("empty literal")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "invalid string literal")
		}
		*l = Literal(s)
	case bytes.Equal(data, []byte("null")):
		*l = ""
	case data[0] == '{' || data[0] == '[':
		return errors.Newf("literal must be a scalar, got %s", data[:1])
	default:
		*l = Literal(data)
	}
	return nil
}

// String returns the literal text
func (l Literal) String() string {
	return string(l)
}

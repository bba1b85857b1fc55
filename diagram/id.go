package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixShape     = "shape"
	PrefixConnector = "conn"
)

// ID identifies a shape or a connector. Fresh ids are type ids
// ("shape_01h..."); documents written by older editors carry numeric ids,
// which are kept as their decimal string.
type ID string

func newID(prefix string) ID {
	id := typeid.MustGenerate(prefix)
	return ID(id.String())
}

func NewShapeID() ID     { return newID(PrefixShape) }
func NewConnectorID() ID { return newID(PrefixConnector) }

// UnmarshalJSON accepts a string, a number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// Prefix returns the type id prefix, or "" for legacy ids.
func (id ID) Prefix() string {
	parsed, err := typeid.Parse(string(id))
	if err != nil {
		return ""
	}
	return parsed.Prefix()
}

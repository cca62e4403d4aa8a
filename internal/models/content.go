package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Content is the editor document of a post. It is kept as raw JSON and never
// interpreted beyond checking that it is present and well formed.
type Content []byte

func (c Content) IsEmpty() bool {
	trimmed := bytes.TrimSpace(c)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func (c Content) Valid() bool {
	return !c.IsEmpty() && json.Valid(c)
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsEmpty() {
		return []byte("null"), nil
	}
	return c, nil
}

func (c *Content) UnmarshalJSON(data []byte) error {
	if c == nil {
		return fmt.Errorf("models.Content: UnmarshalJSON on nil pointer")
	}
	*c = append((*c)[:0], data...)
	return nil
}

// Value stores empty content as NULL so partial updates can COALESCE it.
func (c Content) Value() (driver.Value, error) {
	if c.IsEmpty() {
		return nil, nil
	}
	return string(c), nil
}

func (c *Content) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = nil
	case []byte:
		*c = append(Content(nil), v...)
	case string:
		*c = Content(v)
	default:
		return fmt.Errorf("models.Content: cannot scan %T", src)
	}
	return nil
}

// Unquoted unwraps content that was sent as a JSON string holding the
// serialized document, which is how form posts and older clients send it.
func (c Content) Unquoted() Content {
	trimmed := bytes.TrimSpace(c)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return c
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return c
	}
	return Content(inner)
}

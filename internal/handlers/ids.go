package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
)

// flexibleID accepts an identifier sent either as a JSON string or a JSON number.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("identifier must be a string or a number")
	}
	*f = flexibleID(n.String())
	return nil
}

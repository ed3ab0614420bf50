package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UserID is the canonical identifier of a user. Assignees, query
// parameters and form values are all normalised to it.
type UserID int64

// ParseUserID normalises a textual identifier such as a form value or
// query parameter.
func ParseUserID(raw string) (UserID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty user id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return UserID(id), nil
}

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// MarshalJSON always writes a JSON number.
func (id UserID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalJSON accepts both 3 and "3". Zero and negative ids are
// rejected in either form; null leaves the id unset.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseUserID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid user id %s", data)
	}
	v, err := n.Int64()
	if err != nil || v <= 0 {
		return fmt.Errorf("invalid user id %s", data)
	}
	*id = UserID(v)
	return nil
}

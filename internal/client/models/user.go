// Package models defines the data records shared by the client layers:
// the cached user profile and the chat message log entry.
package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FlexID is a user identifier that tolerates both JSON string and number
// representations, which the backend uses interchangeably.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty id")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) MarshalJSON() ([]byte, error) {
	// Numeric ids round-trip as numbers so the cached blob matches what the
	// backend sent. Only canonical forms qualify; "007" parses but is not a
	// valid JSON number, so it stays a string.
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UserProfile is the canonical profile record cached alongside the token.
type UserProfile struct {
	ID     FlexID `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// AvatarURL returns the stored avatar, or a generated placeholder keyed by
// the profile name when none is set.
func (u *UserProfile) AvatarURL() string {
	if a := strings.TrimSpace(u.Avatar); a != "" {
		return a
	}
	name := u.Name
	if name == "" {
		name = "User"
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name)
}

// Package model defines the core domain types for the activity signup system.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Activity is a named class or session with a capacity and a roster.
// Name is the key of the activity in the wire collection, not a field.
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft returns the remaining capacity. It is not clamped at zero.
func (a *Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// Activities is the activity collection in display order.
//
// On the wire it is a JSON object keyed by activity name. Key order is
// the display order, so both directions keep it.
type Activities []Activity

// MarshalJSON writes the collection as an object in slice order.
func (as Activities) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range as {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		a.Participants = participants
		value, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("encode activity %q: %w", a.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by activity name, preserving key order.
func (as *Activities) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("activities: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return errors.New("activities: expected a JSON object")
	}

	out := Activities{}
	var decodeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		var a Activity
		if err := json.Unmarshal([]byte(value.Raw), &a); err != nil {
			decodeErr = fmt.Errorf("activity %q: %w", key.String(), err)
			return false
		}
		a.Name = key.String()
		out = append(out, a)
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}
	*as = out
	return nil
}

// Find returns the activity with the given name.
func (as Activities) Find(name string) (*Activity, bool) {
	for i := range as {
		if as[i].Name == name {
			return &as[i], true
		}
	}
	return nil, false
}

// SignupResponse is returned by a successful signup or unregister.
type SignupResponse struct {
	Message string `json:"message"`
}

// UnregisterRequest is the optional JSON body of an unregister call.
type UnregisterRequest struct {
	Email string `json:"email"`
}

// ErrorResponse is the JSON error envelope of the activities API.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

package models

import (
	"encoding/json"
	"strings"
)

// Player is one registrant row from the registration sheet. RowIndex is
// the 1-based sheet row (row 1 is the header, so data starts at 2) and
// is the identifier used by point reads, updates and deletes. A delete
// shifts every later index down by one, so indices must not be cached
// across deletes.
type Player struct {
	RowIndex      int    `json:"rowIndex"`
	Timestamp     string `json:"timestamp"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Age           string `json:"age"`
	ParentName    string `json:"parentName"`
	ParentPhone   string `json:"parentPhone"`
	Address       string `json:"address"`
	School        string `json:"school"`
	SkillLevel    string `json:"skillLevel"`
	Achievement   string `json:"achievement"`
	ParentConsent string `json:"parentConsent"`
	ImageURL      string `json:"imageUrl"`
	ICNumber      string `json:"icNumber"`
}

// PlayerInput is the mutable subset of a player record accepted by the
// add and update actions. Timestamp and image URL are never taken from
// input: add stamps its own, update preserves the stored values.
type PlayerInput struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Age           string `json:"age"`
	ParentName    string `json:"parentName"`
	ParentPhone   string `json:"parentPhone"`
	Address       string `json:"address"`
	School        string `json:"school"`
	SkillLevel    string `json:"skillLevel"`
	Achievement   string `json:"achievement"`
	ParentConsent string `json:"parentConsent"`
	ICNumber      string `json:"icNumber"`
}

// FlexString decodes a JSON string, number or boolean into a string.
// Form relays serialize every field as text, but JSON clients send
// numbers for fields like rowIndex and jerseyNumber; both must parse.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*f = ""
		return nil
	}
	*f = FlexString(raw)
	return nil
}

func (f FlexString) String() string { return string(f) }

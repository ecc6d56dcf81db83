package dto

import (
	"encoding/json"
	"strings"
)

// RefSummary is a resolved reference to a subject or topic.
type RefSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// TopicSummary describes a topic together with its cached question count.
type TopicSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	QuestionCount int    `json:"questionCount"`
}

// UserRef is the public identity of a question author.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MessageResponse represents a generic message response.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}

// NullableID distinguishes an absent field from an explicit null in a JSON
// patch. Null and "" both clear the reference.
type NullableID struct {
	Set bool
	ID  string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.ID = ""
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &n.ID); err != nil {
		return err
	}
	n.ID = strings.TrimSpace(n.ID)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n NullableID) MarshalJSON() ([]byte, error) {
	if n.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(n.ID)
}

// Clears reports an explicit request to remove the reference.
func (n NullableID) Clears() bool {
	return n.Set && n.ID == ""
}

package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ClassificationResult is the decoded response of the classification
// endpoint. Every member is optional and independently nullable.
type ClassificationResult struct {
	Error          *string  `json:"Error,omitempty"`
	RetryAfter     *float64 `json:"retry_after,omitempty"`
	DuplicateFound *bool    `json:"duplicate_found,omitempty"`
	Similarity     *float64 `json:"similarity,omitempty"`
	SimilarText    *string  `json:"similar_text,omitempty"`
	RequestType    *string  `json:"request_type,omitempty"`
	SubRequestType *string  `json:"sub_request_type,omitempty"`
	Reasoning      *string  `json:"reasoning,omitempty"`
	ExtractedText  *string  `json:"extracted_text,omitempty"`
}

// UnmarshalJSON accepts any JSON document. Known members are picked from an
// object leniently; a member with an unexpected type is left unset, and a
// document that is not an object yields an empty result.
func (r *ClassificationResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		if json.Valid(data) {
			*r = ClassificationResult{}
			return nil
		}
		return err
	}

	*r = ClassificationResult{
		Error:          optString(fields, "Error"),
		RetryAfter:     optFloat(fields, "retry_after"),
		DuplicateFound: optBool(fields, "duplicate_found"),
		Similarity:     optFloat(fields, "similarity"),
		SimilarText:    optString(fields, "similar_text"),
		RequestType:    optString(fields, "request_type"),
		SubRequestType: optString(fields, "sub_request_type"),
		Reasoning:      optString(fields, "reasoning"),
		ExtractedText:  optString(fields, "extracted_text"),
	}
	return nil
}

func optString(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	text := strings.TrimSpace(string(raw))
	return &text
}

func optFloat(fields map[string]json.RawMessage, key string) *float64 {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &parsed
		}
	}
	return nil
}

func optBool(fields map[string]json.RawMessage, key string) *bool {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// ErrorMessage reports the error indicator. An empty indicator counts as absent.
func (r *ClassificationResult) ErrorMessage() (string, bool) {
	if r == nil || r.Error == nil {
		return "", false
	}
	msg := strings.TrimSpace(*r.Error)
	if msg == "" {
		return "", false
	}
	return msg, true
}

func (r *ClassificationResult) IsDuplicate() bool {
	return r != nil && r.DuplicateFound != nil && *r.DuplicateFound
}

// HasSimilarity is false for a missing or zero similarity score.
func (r *ClassificationResult) HasSimilarity() bool {
	return r != nil && r.Similarity != nil && *r.Similarity != 0
}

func StringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

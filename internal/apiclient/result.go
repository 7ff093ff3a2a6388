package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Keys added to the fields of an error result
const (
	ErrorFlagKey    = "_error"
	StatusKey       = "status"
	ErrorMessageKey = "error"
)

// Result is the parsed JSON response of one call.
//
// A non-2xx response is not a Go error: IsError is set and Fields holds
// "_error": true and "status": <code> merged over the fields of the error
// body, or the raw body text under "error" when it is not a JSON object.
type Result struct {
	Status  int
	IsError bool
	Fields  map[string]interface{}

	// Body is the response body exactly as received
	Body []byte

	items []interface{}
	doc   []byte
}

func newSuccessResult(status int, body []byte) (*Result, error) {
	r := &Result{Status: status, Body: body, Fields: map[string]interface{}{}}
	if len(bytes.TrimSpace(body)) == 0 {
		r.doc = []byte("{}")
		return r, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response with status %d is not valid JSON", status)
	}

	r.doc = body
	parsed := gjson.ParseBytes(body)
	switch {
	case parsed.IsObject():
		if err := json.Unmarshal(body, &r.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	case parsed.IsArray():
		if err := json.Unmarshal(body, &r.items); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if r.items == nil {
			r.items = []interface{}{}
		}
	}
	return r, nil
}

func newErrorResult(status int, body []byte) *Result {
	r := &Result{Status: status, IsError: true, Body: body, Fields: map[string]interface{}{}}

	if gjson.ValidBytes(body) && gjson.ParseBytes(body).IsObject() {
		_ = json.Unmarshal(body, &r.Fields)
	} else {
		r.Fields[ErrorMessageKey] = string(body)
	}
	r.Fields[ErrorFlagKey] = true
	r.Fields[StatusKey] = status

	r.doc, _ = json.Marshal(r.Fields)
	return r
}

// Get returns the value at a gjson path such as "monitor.id" or "columns.0.id"
func (r *Result) Get(path string) gjson.Result {
	return gjson.GetBytes(r.doc, path)
}

// String returns the value at path as a string, or "" when absent.
// Numbers are rendered without a trailing ".0" so ids round-trip into URLs.
func (r *Result) String(path string) string {
	v := r.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	if v.Type == gjson.Number {
		return v.Raw
	}
	return v.String()
}

// Has reports whether path exists and is not null
func (r *Result) Has(path string) bool {
	v := r.Get(path)
	return v.Exists() && v.Type != gjson.Null
}

// IsArray reports whether the success body was a top-level JSON array
func (r *Result) IsArray() bool {
	return r.items != nil
}

// Items returns the elements of a top-level JSON array body
func (r *Result) Items() []interface{} {
	return r.items
}

// Decode unmarshals the body (or, for error results, the merged fields) into v
func (r *Result) Decode(v interface{}) error {
	if err := json.Unmarshal(r.doc, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ErrorMessage describes an error result; it is empty for successes
func (r *Result) ErrorMessage() string {
	if !r.IsError {
		return ""
	}
	if msg := r.String(ErrorMessageKey); msg != "" {
		return fmt.Sprintf("HTTP %d: %s", r.Status, msg)
	}
	if msg := r.String("message"); msg != "" {
		return fmt.Sprintf("HTTP %d: %s", r.Status, msg)
	}
	return fmt.Sprintf("HTTP %d", r.Status)
}

// Err converts an error result into a Go error, or nil for successes
func (r *Result) Err() error {
	if !r.IsError {
		return nil
	}
	return &StatusError{Status: r.Status, Message: r.ErrorMessage()}
}

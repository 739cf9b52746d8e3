package types

import (
	"bytes"
	"encoding/json"
)

// LogEntry is one captured request/response interaction: a single line of a
// trace file. Entries are immutable once read and are processed in file order.
type LogEntry struct {
	Request  CapturedRequest  `json:"request"`
	Response CapturedResponse `json:"response"`
}

// CapturedRequest is the request half of a LogEntry. Body is kept raw because
// only model-invocation requests carry a body this tool understands; see
// MessageBody.
type CapturedRequest struct {
	URL    string          `json:"url"`
	Method string          `json:"method"`
	Body   json.RawMessage `json:"body"`
}

// CapturedResponse is the response half of a LogEntry.
type CapturedResponse struct {
	BodyRaw RawBody `json:"body_raw"`
}

// UnmarshalJSON accepts a request that is missing, null, or not an object: all of
// them decode to the zero request so the entry is still classified.
func (r *CapturedRequest) UnmarshalJSON(data []byte) error {
	*r = CapturedRequest{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	stringField(fields, "url", &r.URL)
	stringField(fields, "method", &r.Method)
	if body, ok := fields["body"]; ok {
		r.Body = body
	}
	return nil
}

// UnmarshalJSON mirrors CapturedRequest: a malformed response is an empty one.
func (r *CapturedResponse) UnmarshalJSON(data []byte) error {
	*r = CapturedResponse{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	if raw, ok := fields["body_raw"]; ok {
		_ = r.BodyRaw.UnmarshalJSON(raw)
	}
	return nil
}

// MethodOrUnknown returns the HTTP method, or "UNKNOWN" when none was captured.
func (r CapturedRequest) MethodOrUnknown() string {
	if r.Method == "" {
		return "UNKNOWN"
	}
	return r.Method
}

// MessageBody decodes the request body; see ParseRequestBody.
func (r CapturedRequest) MessageBody() (*RequestBody, bool) {
	return ParseRequestBody(r.Body)
}

// RawBody holds the captured response body text. Capture tools normally store it
// as a JSON-encoded string; when the capture stored a JSON value instead, the
// value's own text is kept verbatim.
type RawBody string

// UnmarshalJSON never fails.
func (b *RawBody) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*b = RawBody(text)
		return nil
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*b = ""
		return nil
	}
	*b = RawBody(trimmed)
	return nil
}

// String returns the body text.
func (b RawBody) String() string {
	return string(b)
}

package client

import (
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	json "github.com/json-iterator/go"
)

// Envelope is the backend's usual wrapper. Success is nil when the body has
// no "success" field, which several endpoints omit.
type Envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Confirmed is true only for an explicit "success": true.
func (e Envelope) Confirmed() bool {
	return e.Success != nil && *e.Success
}

// Response is a normalized server answer.
type Response struct {
	StatusCode int
	Body       []byte
	Envelope   Envelope
	// Cached is set when the body came from the response cache.
	Cached bool
}

// DecodeData unmarshals the envelope's data field into v.
func (r *Response) DecodeData(v interface{}) error {
	if len(r.Envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Envelope.Data, v)
}

// normalize maps status and body onto one result:
//   - 401 is an auth error
//   - "success": false is a server error carrying the backend message
//   - any other non-2xx is a server error carrying the status
//   - a 2xx without a success field is fine
//
// A body that is not an envelope leaves Envelope zero; callers that need
// data check Confirmed.
func normalize(status int, body []byte, cached bool) (*Response, error) {
	resp := &Response{StatusCode: status, Body: body, Cached: cached}
	_ = json.Unmarshal(body, &resp.Envelope)

	msg := resp.Envelope.Message
	rejected := resp.Envelope.Success != nil && !*resp.Envelope.Success
	if rejected && status != 401 {
		msg = messageOr(msg, "Request failed")
	}
	if status == 401 || rejected || status < 200 || status >= 300 {
		return resp, clierrors.FromStatus(status, msg)
	}
	return resp, nil
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

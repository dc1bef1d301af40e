package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// NetworkError indicates the backend was unreachable at the transport level
// (DNS, connect, TLS, request write, response read).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError indicates the backend rejected or failed the call with a
// non-2xx status. Message carries the normalized error text extracted from
// the structured error body when one was present.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error %d [%s]: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// errorBody is the shape of a structured backend error payload. The backend
// sends either a flat detail string or a nested {code, message} object; both
// are accepted.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// normalizeServerError turns a non-2xx response body into a *ServerError.
// A valid JSON error body never produces a decode failure; anything
// unparseable falls back to the transport-level status text.
func normalizeServerError(status int, body []byte) *ServerError {
	se := &ServerError{Status: status, Message: http.StatusText(status)}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return se
	}

	if eb.Message != "" {
		se.Message = eb.Message
	}
	if len(eb.Detail) == 0 {
		return se
	}

	var flat string
	if err := json.Unmarshal(eb.Detail, &flat); err == nil && flat != "" {
		se.Message = flat
		return se
	}

	var nested errorDetail
	if err := json.Unmarshal(eb.Detail, &nested); err == nil && nested.Message != "" {
		se.Code = nested.Code
		se.Message = nested.Message
	}
	return se
}

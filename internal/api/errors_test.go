package api

import (
	"net/http"
	"testing"
)

func TestNormalizeServerError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:    "flat detail string",
			status:  404,
			body:    `{"detail": "Strategy 'ghost' not found"}`,
			wantMsg: "Strategy 'ghost' not found",
		},
		{
			name:     "nested code and message",
			status:   409,
			body:     `{"detail": {"code": "INVALID_TRANSITION", "message": "cannot pause stopped strategy"}}`,
			wantCode: "INVALID_TRANSITION",
			wantMsg:  "cannot pause stopped strategy",
		},
		{
			name:    "flat message field",
			status:  500,
			body:    `{"message": "internal failure"}`,
			wantMsg: "internal failure",
		},
		{
			name:    "garbage body falls back to status text",
			status:  502,
			body:    `<html>Bad Gateway</html>`,
			wantMsg: http.StatusText(502),
		},
		{
			name:    "empty body falls back to status text",
			status:  503,
			body:    "",
			wantMsg: http.StatusText(503),
		},
		{
			name:    "detail of unexpected shape keeps status text",
			status:  400,
			body:    `{"detail": [1, 2, 3]}`,
			wantMsg: http.StatusText(400),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := normalizeServerError(tt.status, []byte(tt.body))
			if se.Status != tt.status {
				t.Errorf("Status = %d, want %d", se.Status, tt.status)
			}
			if se.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", se.Code, tt.wantCode)
			}
			if se.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", se.Message, tt.wantMsg)
			}
		})
	}
}

func TestServerErrorString(t *testing.T) {
	withCode := &ServerError{Status: 409, Code: "KILLED", Message: "kill switch active"}
	if got := withCode.Error(); got != "server error 409 [KILLED]: kill switch active" {
		t.Errorf("Error() = %q", got)
	}
	plain := &ServerError{Status: 404, Message: "not found"}
	if got := plain.Error(); got != "server error 404: not found" {
		t.Errorf("Error() = %q", got)
	}
}

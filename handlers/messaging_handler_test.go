package handlers

import (
	"strings"
	"testing"
)

func TestWsPayload_SendRequest(t *testing.T) {
	tests := []struct {
		name    string
		payload wsPayload
		wantErr bool
	}{
		{"ok", wsPayload{Type: "message", ReceiverID: "2", Message: "hello"}, false},
		{"empty message", wsPayload{Type: "message", ReceiverID: "2"}, true},
		{"too long", wsPayload{Type: "message", ReceiverID: "2", Message: strings.Repeat("x", 4001)}, true},
		{"max length", wsPayload{Type: "message", ReceiverID: "2", Message: strings.Repeat("x", 4000)}, false},
		{"no receiver", wsPayload{Type: "message", Message: "hello"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.payload.sendRequest()
			if (err != nil) != tt.wantErr {
				t.Fatalf("sendRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && req.Message != tt.payload.Message {
				t.Fatalf("message = %q, want %q", req.Message, tt.payload.Message)
			}
		})
	}
}

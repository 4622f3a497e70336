package redis

import (
	"strings"
	"testing"
)

func TestNewClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"wrong scheme", "http://localhost:6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(Config{URL: tt.url})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "parse redis URL") {
				t.Errorf("expected parse error, got %v", err)
			}
		})
	}
}

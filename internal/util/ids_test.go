package util

import (
	"strings"
	"testing"
)

func TestGenerateSessionID(t *testing.T) {
	id := GenerateSessionID()
	if !strings.HasPrefix(id, SessionIDPrefix) {
		t.Errorf("GenerateSessionID() = %v, want prefix %v", id, SessionIDPrefix)
	}
	if len(id) != len(SessionIDPrefix)+36 {
		t.Errorf("GenerateSessionID() length = %d, want %d", len(id), len(SessionIDPrefix)+36)
	}
	if !IsValidSessionID(id) {
		t.Errorf("IsValidSessionID(%q) = false, want true", id)
	}
}

func TestGenerateSessionID_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateSessionID()
		if seen[id] {
			t.Fatalf("duplicate session id after %d iterations: %s", i, id)
		}
		seen[id] = true
	}
}

func TestIsValidSessionID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"s_6f1c1f0e-3b7a-4c3e-9c55-2d1f6d8f2b11", true},
		{"6f1c1f0e-3b7a-4c3e-9c55-2d1f6d8f2b11", false},
		{"s_", false},
		{"s_not-a-uuid", false},
		{"s_{6f1c1f0e-3b7a-4c3e-9c55-2d1f6d8f2b11}", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidSessionID(tt.id); got != tt.want {
			t.Errorf("IsValidSessionID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

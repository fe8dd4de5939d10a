package utils

import "testing"

func TestIsAllowedOrigin(t *testing.T) {
	SetTrustedOrigins([]string{"https://app.slotwise.example"})

	tests := []struct {
		origin  string
		allowed bool
	}{
		// Allowed: localhost
		{"http://localhost", true},
		{"http://localhost:3000", true},
		{"https://localhost:5000", true},

		// Allowed: private IPs
		{"http://192.168.1.1", true},
		{"http://10.0.0.1:8080", true},
		{"http://172.16.0.1", true},
		{"http://127.0.0.1:3000", true},

		// Allowed: explicitly trusted origin
		{"https://app.slotwise.example", true},
		{"https://app.slotwise.example/", true},

		// Blocked: public domains
		{"http://example.com", false},
		{"https://evil.com", false},
		{"https://app.slotwise.example.evil.com", false},

		// Blocked: public IPs
		{"http://8.8.8.8", false},

		// Blocked: malformed
		{"", false},
		{"not-a-url", false},
	}

	for _, tt := range tests {
		if got := IsAllowedOrigin(tt.origin); got != tt.allowed {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.allowed)
		}
	}
}

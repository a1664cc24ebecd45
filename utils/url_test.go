package utils

import "testing"

func TestBuildShareURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		token    string
		expected string
	}{
		{"plain base", "http://localhost:8080", "abc", "http://localhost:8080/api/public/album/abc"},
		{"trailing slash", "https://photos.example.com/", "abc_-1", "https://photos.example.com/api/public/album/abc_-1"},
		{"escapes path", "http://h", "a/b", "http://h/api/public/album/a%2Fb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildShareURL(tt.base, tt.token); got != tt.expected {
				t.Errorf("BuildShareURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

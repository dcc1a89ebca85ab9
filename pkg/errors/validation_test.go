package errors

import (
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},
		{"uppercase scheme", "HTTPS://example.com", false},
		{"query string", "https://x.test/?q=mind+map", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
		{"embedded space", "https://x.test/a b", true},
		{"embedded newline", "https://x.test/\nfoo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "map.svg", false},
		{"valid nested", "out/maps/roadmap.html", false},
		{"valid absolute", "/tmp/roadmap.png", false},
		{"valid with dots", "v1.2.3/roadmap.layout.json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidJSON,
		ErrCodeInvalidShape,
		ErrCodeInvalidCanvas,
		ErrCodeInvalidSurface,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}

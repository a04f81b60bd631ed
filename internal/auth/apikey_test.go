package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	t.Run("returns three non-empty values", func(t *testing.T) {
		key, hash, prefix, err := GenerateAPIKey("fsn")
		if err != nil {
			t.Fatalf("GenerateAPIKey() error: %v", err)
		}
		if key == "" {
			t.Error("GenerateAPIKey() returned empty key")
		}
		if hash == "" {
			t.Error("GenerateAPIKey() returned empty hash")
		}
		if prefix == "" {
			t.Error("GenerateAPIKey() returned empty displayPrefix")
		}
	})

	t.Run("key starts with prefix_", func(t *testing.T) {
		key, _, _, err := GenerateAPIKey("fsn")
		if err != nil {
			t.Fatalf("GenerateAPIKey() error: %v", err)
		}
		if !strings.HasPrefix(key, "fsn_") {
			t.Errorf("GenerateAPIKey() key = %q, want prefix %q", key, "fsn_")
		}
	})

	t.Run("prefix with trailing underscore is not doubled", func(t *testing.T) {
		key, _, _, err := GenerateAPIKey("fsn_")
		if err != nil {
			t.Fatalf("GenerateAPIKey() error: %v", err)
		}
		if strings.HasPrefix(key, "fsn__") {
			t.Errorf("GenerateAPIKey() key = %q, double underscore", key)
		}
		if !strings.HasPrefix(key, "fsn_") {
			t.Errorf("GenerateAPIKey() key = %q, want prefix %q", key, "fsn_")
		}
	})

	t.Run("display prefix matches key start", func(t *testing.T) {
		key, _, displayPrefix, err := GenerateAPIKey("fsn")
		if err != nil {
			t.Fatalf("GenerateAPIKey() error: %v", err)
		}
		if !strings.HasPrefix(key, displayPrefix) {
			t.Errorf("key %q does not start with displayPrefix %q", key, displayPrefix)
		}
	})

	t.Run("display prefix length is capped at DisplayPrefixLength", func(t *testing.T) {
		_, _, displayPrefix, err := GenerateAPIKey("fsn")
		if err != nil {
			t.Fatalf("GenerateAPIKey() error: %v", err)
		}
		if len(displayPrefix) > DisplayPrefixLength {
			t.Errorf("displayPrefix len = %d, want <= %d", len(displayPrefix), DisplayPrefixLength)
		}
	})

	t.Run("two calls produce different keys", func(t *testing.T) {
		key1, _, _, _ := GenerateAPIKey("fsn")
		key2, _, _, _ := GenerateAPIKey("fsn")
		if key1 == key2 {
			t.Error("GenerateAPIKey() produced identical keys on consecutive calls")
		}
	})
}

func TestValidateAPIKey(t *testing.T) {
	key, hash, _, err := GenerateAPIKey("fsn")
	if err != nil {
		t.Fatalf("GenerateAPIKey() error: %v", err)
	}

	if !ValidateAPIKey(key, hash) {
		t.Error("ValidateAPIKey() = false for matching key/hash")
	}
	if ValidateAPIKey("fsn_wrongkey", hash) {
		t.Error("ValidateAPIKey() = true for wrong key")
	}
	if ValidateAPIKey(key, "not-a-hash") {
		t.Error("ValidateAPIKey() = true for garbage hash")
	}
}

func TestExtractAPIKeyFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer token", "Bearer fsn_abc123", "fsn_abc123", false},
		{"empty header", "", "", true},
		{"missing bearer prefix", "fsn_abc123", "", true},
		{"bearer with no token", "Bearer ", "", true},
		{"bearer with whitespace token", "Bearer    ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractAPIKeyFromHeader(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

package object

import (
	"io"
	"strings"
	"testing"
)

func TestNewKeySanitizesParts(t *testing.T) {
	key, err := NewKey("req/1", "my data.txt")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if !strings.HasPrefix(key, "req_1/") {
		t.Fatalf("unexpected namespace in %q", key)
	}
	if !strings.HasSuffix(key, "_my data.txt") {
		t.Fatalf("unexpected name in %q", key)
	}
	if _, err := NewKey("ns", "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestSniffReplaysHead(t *testing.T) {
	contentType, r, err := Sniff(strings.NewReader("name,value\na,1\n"))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if !strings.HasPrefix(contentType, "text/plain") {
		t.Fatalf("unexpected content type %q", contentType)
	}
	body, _ := io.ReadAll(r)
	if string(body) != "name,value\na,1\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestValidKey(t *testing.T) {
	for key, want := range map[string]bool{
		"ns/abc_file.txt": true,
		"../secret":       false,
		"/abs/path":       false,
		"":                false,
	} {
		if got := ValidKey(key); got != want {
			t.Fatalf("ValidKey(%q) = %v, want %v", key, got, want)
		}
	}
}

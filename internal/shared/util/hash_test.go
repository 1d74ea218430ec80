package util

import "testing"

func TestHashUserKeyIsStableHex(t *testing.T) {
	got := HashUserKey("guest:kitchen-tablet")
	if got != HashUserKey("guest:kitchen-tablet") {
		t.Fatalf("expected stable hash, got %s", got)
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
}

func TestHashUserKeySeparatesUsers(t *testing.T) {
	if HashUserKey("user-a") == HashUserKey("user-b") {
		t.Fatalf("expected distinct hashes for distinct users")
	}
}

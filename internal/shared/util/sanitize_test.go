package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName(" meals/lunch.jpg ")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "meals_lunch.jpg" {
		t.Fatalf("unexpected name %q", got)
	}
	if _, err := SanitizeFileName("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestSanitizeKeySegment(t *testing.T) {
	cases := map[string]string{
		"user-1":          "user-1",
		"guest:abc":       "guest_abc",
		"a/b\\c":          "a_b_c",
		"9f1c.e2_x":       "9f1c.e2_x",
		"dots..inside":    "dots__inside",
		"email@host.test": "email_host.test",
	}
	for in, want := range cases {
		got, err := SanitizeKeySegment(in)
		if err != nil {
			t.Fatalf("SanitizeKeySegment(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("SanitizeKeySegment(%q) = %q, want %q", in, got, want)
		}
	}
	for _, bad := range []string{"", "  ", ".", ".."} {
		if _, err := SanitizeKeySegment(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

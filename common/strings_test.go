package common

import "testing"

func TestShortHash(t *testing.T) {
	cases := []struct {
		Hash     string
		Expected string
	}{
		{"", ""},
		{"ABCDEF", "ABCDEF"},
		{"0123456789ABCDEF0123", "0123456789ABCDEF0123"},
		{"0123456789ABCDEF0123456789", "0123456789ABCDEF…456789"},
	}
	for _, c := range cases {
		if got := ShortHash(c.Hash); got != c.Expected {
			t.Fatalf("%s expected %v, but %v got", c.Hash, c.Expected, got)
		}
	}
}

func TestIsDigits(t *testing.T) {
	cases := []struct {
		Str      string
		Expected bool
	}{
		{"7", true},
		{"0012", true},
		{"", false},
		{" 7", false},
		{"-1", false},
		{"1.5", false},
	}
	for _, c := range cases {
		if got := IsDigits(c.Str); got != c.Expected {
			t.Fatalf("%q expected %v, but %v got", c.Str, c.Expected, got)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "b", "c"); got != "b" {
		t.Fatalf("expected b, but %v got", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("expected empty, but %v got", got)
	}
}

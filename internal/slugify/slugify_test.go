package slugify

import "testing"

func TestDerive(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Engineering", "engineering"},
		{"My  Team!", "my-team"},
		{"Create Teams", "create-teams"},
		{"  Spaced Out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
	}
	for _, tc := range cases {
		if got := Derive(tc.name); got != tc.want {
			t.Errorf("Derive(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestUniqueNoCollision(t *testing.T) {
	if got := Unique("eng", nil); got != "eng" {
		t.Errorf("got %q, want eng", got)
	}
	if got := Unique("eng", []string{"other", "eng-2"}); got != "eng" {
		t.Errorf("got %q, want eng", got)
	}
}

func TestUniqueSuffixing(t *testing.T) {
	if got := Unique("eng", []string{"eng"}); got != "eng-2" {
		t.Errorf("got %q, want eng-2", got)
	}
	if got := Unique("eng", []string{"eng", "eng-2"}); got != "eng-3" {
		t.Errorf("got %q, want eng-3", got)
	}
}

func TestUniqueLowestFreeSuffix(t *testing.T) {
	// eng-2 is free even though eng-3 is taken
	if got := Unique("eng", []string{"eng", "eng-3"}); got != "eng-2" {
		t.Errorf("got %q, want eng-2", got)
	}
}

package domain

import "testing"

func TestParseLevel(t *testing.T) {
	for _, lvl := range Levels {
		got, err := ParseLevel(string(lvl))
		if err != nil || got != lvl {
			t.Errorf("ParseLevel(%q) = %v, %v", lvl, got, err)
		}
	}
	if _, err := ParseLevel("C1"); err == nil {
		t.Error("expected error for unsupported level")
	}
	if _, err := ParseLevel(""); err == nil {
		t.Error("expected error for empty level")
	}
}

func TestLevelNext(t *testing.T) {
	next, ok := LevelA1.Next()
	if !ok || next != LevelA2 {
		t.Errorf("A1.Next() = %v, %v", next, ok)
	}
	if _, ok := LevelB2.Next(); ok {
		t.Error("B2 must have no successor")
	}
}

func TestNormalizeWord(t *testing.T) {
	cases := map[string]string{
		"  Apple ": "apple",
		"HOUSE":    "house",
		"corrió":   "corrió",
		"":         "",
	}
	for in, want := range cases {
		if got := NormalizeWord(in); got != want {
			t.Errorf("NormalizeWord(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAllCompleted(t *testing.T) {
	s := DefaultSettings()
	if s.AllCompleted() {
		t.Error("fresh settings must not be complete")
	}
	for _, lvl := range Levels {
		s.LevelCompleted[lvl] = true
	}
	if !s.AllCompleted() {
		t.Error("expected completion once every target level is done")
	}
	s.TargetLevels = nil
	if s.AllCompleted() {
		t.Error("empty target list is not the completed state")
	}
}

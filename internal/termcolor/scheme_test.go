package termcolor

import "testing"

func TestDetectSchemeFromColorfgbg(t *testing.T) {
	cases := map[string]Scheme{
		"7;0":          SchemeDark,
		"15;7":         SchemeLight,
		"0;default;15": SchemeLight,
		"garbage":      SchemeDark,
	}
	for raw, want := range cases {
		if got := DetectScheme(map[string]string{"COLORFGBG": raw}); got != want {
			t.Errorf("COLORFGBG=%q: got %v want %v", raw, got, want)
		}
	}
}

func TestDetectSchemeFallsBackToTermName(t *testing.T) {
	if got := DetectScheme(map[string]string{"TERM": "xterm-light"}); got != SchemeLight {
		t.Fatalf("expected light for TERM containing light, got %v", got)
	}
	if got := DetectScheme(nil); got != SchemeDark {
		t.Fatalf("nil env should default to dark, got %v", got)
	}
}

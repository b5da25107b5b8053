package termcolor

import "testing"

func TestHeaderStyle(t *testing.T) {
	s := HeaderStyle()
	if !s.Bold || !s.Underline {
		t.Fatalf("header style should enable bold+underline: %+v", s)
	}
}

func TestTagStyleCyclesAndKeepsContrast(t *testing.T) {
	for i := 0; i < len(tagBackgrounds)*2; i++ {
		s := TagStyle(i, ProfileTrueColor)
		if s.FGTrue == nil || s.BGTrue == nil {
			t.Fatalf("tag %d: truecolor style incomplete %+v", i, s)
		}
		fg := RGB{s.FGTrue[0], s.FGTrue[1], s.FGTrue[2]}
		bg := RGB{s.BGTrue[0], s.BGTrue[1], s.BGTrue[2]}
		if ratio := ContrastRatio(fg, bg); ratio < 3 {
			t.Errorf("tag %d: contrast %.2f too low", i, ratio)
		}
	}
	a, b := TagStyle(0, ProfileBasic8), TagStyle(len(tagBasic), ProfileBasic8)
	if *a.FGBasic != *b.FGBasic {
		t.Fatal("basic palette should cycle")
	}
	if s := TagStyle(-1, ProfileANSI256); s.FG256 == nil {
		t.Fatal("negative index must not panic and should use the 256 palette")
	}
}

func TestMatchStyleRespectsScheme(t *testing.T) {
	dark := MatchStyle(SchemeDark)
	light := MatchStyle(SchemeLight)
	if !dark.Bold || *dark.FGBasic != 3 {
		t.Fatalf("dark match style mismatch: %+v", dark)
	}
	if !light.Underline || *light.FGBasic != 4 {
		t.Fatalf("light match style mismatch: %+v", light)
	}
}

func TestTextOn(t *testing.T) {
	if got := TextOn(RGB{255, 247, 237}); got != black {
		t.Fatalf("light background should get black, got %v", got)
	}
	if got := TextOn(RGB{15, 23, 42}); got != white {
		t.Fatalf("dark background should get white, got %v", got)
	}
	if ratio := ContrastRatio(black, white); ratio < 20 {
		t.Fatalf("black/white contrast %.2f", ratio)
	}
}

func TestPainterDisabledIsPlain(t *testing.T) {
	p := Painter{}
	if p.Header("h") != "h" || p.Tag(1, "t") != "t" || p.Disabled("d") != "d" {
		t.Fatal("disabled painter must not add escapes")
	}
	if open, closeSeq := p.MatchCodes(); open != "" || closeSeq != "" {
		t.Fatal("disabled painter must return empty codes")
	}
}

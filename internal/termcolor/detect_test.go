package termcolor

import (
	"bytes"
	"os"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		input string
		want  ColorMode
		err   bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"always", ModeAlways, false},
		{"never", ModeNever, false},
		{"ALWAYS", ModeAlways, false},
		{"invalid", ModeAuto, true},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.input)
		if tc.err {
			if err == nil {
				t.Fatalf("ParseMode(%q) expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseMode(%q) unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMode(%q)=%v want %v", tc.input, got, tc.want)
		}
	}
}

func pipeWriter(t *testing.T) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})
	return w
}

func TestDetectModeEnvironmentOverrides(t *testing.T) {
	w := pipeWriter(t)
	cases := []struct {
		name string
		env  map[string]string
		want ColorMode
	}{
		{"no color", map[string]string{"NO_COLOR": "1"}, ModeNever},
		{"clicolor off", map[string]string{"CLICOLOR": "0"}, ModeNever},
		{"clicolor force", map[string]string{"CLICOLOR_FORCE": "1"}, ModeAlways},
		{"force color", map[string]string{"FORCE_COLOR": "2"}, ModeAlways},
		{"force zero", map[string]string{"FORCE_COLOR": "0"}, ModeNever},
		{"no color beats force", map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, ModeNever},
		{"dumb beats force", map[string]string{"TERM": "dumb", "FORCE_COLOR": "1"}, ModeNever},
		{"pipe", nil, ModeNever},
	}
	for _, tc := range cases {
		if got := DetectMode(w, tc.env); got != tc.want {
			t.Errorf("%s: DetectMode = %v, want %v", tc.name, got, tc.want)
		}
	}
	if got := DetectMode(nil, map[string]string{"FORCE_COLOR": "1"}); got != ModeNever {
		t.Fatalf("nil writer should never colour, got %v", got)
	}
}

func TestEnabled(t *testing.T) {
	w := pipeWriter(t)
	if !Enabled(ModeAlways, nil, nil) {
		t.Fatal("ModeAlways should be enabled even with nil output")
	}
	if Enabled(ModeNever, w, map[string]string{"FORCE_COLOR": "1"}) {
		t.Fatal("ModeNever should be disabled")
	}
	if Enabled(ModeAuto, w, nil) {
		t.Fatal("ModeAuto with a pipe should be disabled")
	}
	if !Enabled(ModeAuto, w, map[string]string{"FORCE_COLOR": "1"}) {
		t.Fatal("ModeAuto should honour FORCE_COLOR")
	}
}

func TestDetectProfile(t *testing.T) {
	if got := DetectProfile(map[string]string{"COLORTERM": "truecolor"}); got != ProfileTrueColor {
		t.Fatalf("COLORTERM truecolor should yield TrueColor, got %v", got)
	}
	if got := DetectProfile(map[string]string{"TERM": "xterm-256color"}); got != ProfileANSI256 {
		t.Fatalf("TERM 256color should yield ANSI256, got %v", got)
	}
	if got := DetectProfile(nil); got != ProfileBasic8 {
		t.Fatalf("default profile should be Basic8, got %v", got)
	}
}

func TestEnvMap(t *testing.T) {
	env := EnvMap([]string{"FOO=bar", "BAZ", "QUX=1=2", ""})
	if env["FOO"] != "bar" || env["BAZ"] != "" || env["QUX"] != "1=2" {
		t.Fatalf("unexpected env map %v", env)
	}
	if len(env) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(env))
	}
}

func TestNewPainterNonFileWriter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPainter(ModeAuto, &buf, map[string]string{"FORCE_COLOR": "1"})
	if p.Enabled {
		t.Fatal("auto mode on a buffer must not colour")
	}
	p = NewPainter(ModeAlways, &buf, map[string]string{"COLORTERM": "truecolor", "COLORFGBG": "0;15"})
	if !p.Enabled || p.Profile != ProfileTrueColor || p.Scheme != SchemeLight {
		t.Fatalf("unexpected painter %+v", p)
	}
}

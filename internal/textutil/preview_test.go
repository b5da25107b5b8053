package textutil

import (
	"strings"
	"testing"
)

func TestPreview(t *testing.T) {
	long := strings.Repeat("a", 120)
	cases := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"short", "hello", 100, "hello"},
		{"exact", strings.Repeat("b", 100), 100, strings.Repeat("b", 100)},
		{"cut", long, 100, strings.Repeat("a", 100) + "..."},
		{"graphemes", "ééé", 2, "éé..."},
		{"multibyte", "日本語テキスト", 3, "日本語..."},
		{"zero", "abc", 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Preview(tc.s, tc.n); got != tc.want {
				t.Fatalf("Preview(%q, %d) = %q, want %q", tc.s, tc.n, got, tc.want)
			}
		})
	}
}

func TestOneLine(t *testing.T) {
	if got := OneLine("a\r\nb\nc\td"); got != "a⏎b⏎c d" {
		t.Fatalf("OneLine = %q", got)
	}
	if got := OneLine("plain"); got != "plain" {
		t.Fatalf("OneLine changed plain text: %q", got)
	}
}

func TestHighlight(t *testing.T) {
	cases := []struct {
		name   string
		s      string
		ranges []Range
		want   string
	}{
		{"none", "abc", nil, "abc"},
		{"single", "a[x]b", []Range{{1, 4}}, "a<[x]>b"},
		{"unsorted", "[a] [b]", []Range{{4, 7}, {0, 3}}, "<[a]> <[b]>"},
		{"overlap", "[y[x]z]", []Range{{2, 5}, {0, 7}}, "<[y[x]z]>"},
		{"adjacent", "ab", []Range{{0, 1}, {1, 2}}, "<ab>"},
		{"clamped", "abc", []Range{{-1, 10}}, "<abc>"},
		{"empty range", "abc", []Range{{1, 1}}, "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Highlight(tc.s, tc.ranges, "<", ">"); got != tc.want {
				t.Fatalf("Highlight = %q, want %q", got, tc.want)
			}
		})
	}
}

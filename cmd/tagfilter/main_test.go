package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phyten/tagfilter/internal/config"
	"github.com/phyten/tagfilter/internal/model"
	"github.com/phyten/tagfilter/internal/prompt"
	"github.com/phyten/tagfilter/internal/store"
)

const testSettings = `tags:
  - id: think-0001
    name: Think
    open_tag: "<think>"
    close_tag: "</think>"
  - id: ooc-0002
    name: OOC
    open_tag: "(("
    close_tag: "))"
  - id: off-0003
    name: Off
    open_tag: "["
    close_tag: "]"
    enabled: false
`

// isolate points every config lookup at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("TAGFILTER_CONFIG", "")
	for _, key := range []string{"TAGFILTER_ENABLED", "TAGFILTER_SHOW_CONTEXT", "TAGFILTER_EXCLUDED_PROMPTS", "TAGFILTER_OUTPUT", "TAGFILTER_COLOR", "TAGFILTER_HIGHLIGHT", "TAGFILTER_TRUNCATE", "TAGFILTER_JOBS", "NO_COLOR", "CLICOLOR_FORCE", "FORCE_COLOR"} {
		t.Setenv(key, "")
	}
	return dir
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	dir := isolate(t)
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, stderr, err := run(t, stdin, args...)
	if err != nil {
		t.Fatalf("%v: %v\nstderr: %s", args, err, stderr)
	}
	return out
}

func loadFile(t *testing.T, path string) config.Settings {
	t.Helper()
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	return config.MergeSettings(config.DefaultSettings(), cfg.Filter)
}

func TestStripは設定のタグを順に除去する(t *testing.T) {
	path := writeSettings(t, testSettings)
	out := mustRun(t, "a <think>x</think> b ((c)) [d]", "--config", path, "strip")
	if out != "a  b  [d]" {
		t.Fatalf("strip output = %q", out)
	}
}

func TestStripReadsFileArgument(t *testing.T) {
	path := writeSettings(t, testSettings)
	in := filepath.Join(filepath.Dir(path), "in.txt")
	if err := os.WriteFile(in, []byte("<think>\nmulti\nline\n</think>kept"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if out := mustRun(t, "", "-c", path, "strip", in); out != "kept" {
		t.Fatalf("strip output = %q", out)
	}
}

func TestStripPromptHonoursExclusionAndEnabled(t *testing.T) {
	path := writeSettings(t, testSettings+"excluded_prompts: [1]\n")
	in := "<think>a</think>one\n\n<think>b</think>two"
	if out := mustRun(t, in, "-c", path, "strip", "--prompt"); out != "one\n\n<think>b</think>two" {
		t.Fatalf("prompt strip = %q", out)
	}

	t.Setenv("TAGFILTER_ENABLED", "false")
	if out := mustRun(t, in, "-c", path, "strip", "--prompt"); out != in {
		t.Fatalf("disabled filter changed text: %q", out)
	}
}

func TestAnalyzeTSV(t *testing.T) {
	path := writeSettings(t, testSettings)
	out := mustRun(t, "x <think>one</think> ((two))", "-c", path, "analyze", "-o", "tsv", "--fields", "tag,offset,content")
	want := "TAG\tOFFSET\tCONTENT\nThink\t2\tone\nOOC\t21\ttwo\n"
	if out != want {
		t.Fatalf("analyze tsv:\n%q\nwant\n%q", out, want)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeSettings(t, testSettings)
	out := mustRun(t, "<think><b>x</b></think>", "-c", path, "analyze", "--output", "json")
	var a model.Analysis
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if !a.HasTaggedContent || a.Total() != 1 || a.TagMatches[0].Matches[0].Content != "<b>x</b>" {
		t.Fatalf("analysis = %+v", a)
	}
}

func TestAnalyzeHighlightWithoutColour(t *testing.T) {
	path := writeSettings(t, testSettings)
	out := mustRun(t, "a <think>b</think> c", "-c", path, "--color", "never", "analyze", "--highlight")
	if out != "a ⟦<think>b</think>⟧ c\n" {
		t.Fatalf("highlight = %q", out)
	}
}

func TestAnalyzeRejectsBadFlags(t *testing.T) {
	path := writeSettings(t, testSettings)
	if _, _, err := run(t, "", "-c", path, "analyze", "-o", "yaml"); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
	if _, _, err := run(t, "", "-c", path, "analyze", "--fields", "bogus"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if _, _, err := run(t, "", "-c", path, "--color", "sometimes", "analyze"); err == nil {
		t.Fatalf("expected error for bad colour mode")
	}
}

func TestValidateCommand(t *testing.T) {
	isolate(t)
	out, _, err := run(t, "", "validate", "--name", "T", "--open", "<t>")
	if !errors.Is(err, errInvalidTag) {
		t.Fatalf("err = %v", err)
	}
	if out != "invalid: close tag required\n" {
		t.Fatalf("output = %q", out)
	}

	out = mustRun(t, "", "validate", "--name", "T", "--open", "<t>", "--close", "</t>")
	if !strings.HasPrefix(out, "ok: tag: T. pattern: ") {
		t.Fatalf("output = %q", out)
	}
}

func TestTagsLifecycle(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "new", "settings.toml")

	id := strings.TrimSpace(mustRun(t, "", "-c", path, "tags", "add", "--name", "Think", "--open", "<think>", "--close", "</think>"))
	if id == "" {
		t.Fatalf("add printed no id")
	}
	mustRun(t, "", "-c", path, "tags", "add", "--name", "OOC", "--open", "((", "--close", "))")

	got := loadFile(t, path)
	if len(got.Tags) != 2 || got.Tags[0].ID != id || got.Tags[1].Name != "OOC" {
		t.Fatalf("after add: %+v", got.Tags)
	}

	mustRun(t, "", "-c", path, "tags", "edit", "think", "--close", "</THINK>")
	mustRun(t, "", "-c", path, "tags", "disable", id[:8])
	mustRun(t, "", "-c", path, "tags", "move", "ooc", "0")

	got = loadFile(t, path)
	if got.Tags[0].Name != "OOC" || got.Tags[1].ID != id {
		t.Fatalf("after move: %+v", got.Tags)
	}
	if got.Tags[1].CloseTag != "</THINK>" || got.Tags[1].Enabled {
		t.Fatalf("after edit/disable: %+v", got.Tags[1])
	}

	list := mustRun(t, "", "-c", path, "tags", "list")
	if !strings.Contains(list, "OOC") || !strings.Contains(list, "disabled") {
		t.Fatalf("list = %q", list)
	}
	show := mustRun(t, "", "-c", path, "tags", "show", "#1")
	if !strings.Contains(show, "id:      "+id) || !strings.Contains(show, "(disabled)") {
		t.Fatalf("show = %q", show)
	}

	mustRun(t, "", "-c", path, "tags", "enable", id)
	if out := mustRun(t, "", "-c", path, "tags", "rm", "ooc"); !strings.HasPrefix(out, "removed OOC") {
		t.Fatalf("rm output = %q", out)
	}
	got = loadFile(t, path)
	if len(got.Tags) != 1 || !got.Tags[0].Enabled {
		t.Fatalf("after rm/enable: %+v", got.Tags)
	}

	if _, _, err := run(t, "", "-c", path, "tags", "rm", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("rm missing err = %v", err)
	}
	if _, _, err := run(t, "", "-c", path, "tags", "add", "--name", "Bad", "--open", "x"); !errors.Is(err, store.ErrInvalidTag) {
		t.Fatalf("add invalid err = %v", err)
	}
}

func TestTagsEditNeedsAChange(t *testing.T) {
	path := writeSettings(t, testSettings)
	if _, _, err := run(t, "", "-c", path, "tags", "edit", "think"); err == nil {
		t.Fatalf("expected error when no field is changed")
	}
}

func TestTagsWriteIgnoresEnvironment(t *testing.T) {
	path := writeSettings(t, testSettings)
	t.Setenv("TAGFILTER_ENABLED", "false")
	t.Setenv("TAGFILTER_EXCLUDED_PROMPTS", "4")
	mustRun(t, "", "-c", path, "tags", "disable", "think")
	got := loadFile(t, path)
	if !got.Enabled || len(got.ExcludedPrompts) != 0 {
		t.Fatalf("environment leaked into the file: %+v", got)
	}
}

func TestTagsExportImport(t *testing.T) {
	src := writeSettings(t, testSettings)
	exported := mustRun(t, "", "-c", src, "tags", "export")

	dst := filepath.Join(filepath.Dir(src), "other.json")
	out := mustRun(t, exported, "-c", dst, "tags", "import", "-")
	if out != "imported 3 tag(s)\n" {
		t.Fatalf("import output = %q", out)
	}
	got := loadFile(t, dst)
	if len(got.Tags) != 3 || got.Tags[0].ID != "think-0001" || got.Tags[2].Enabled {
		t.Fatalf("imported tags = %+v", got.Tags)
	}

	if _, _, err := run(t, exported, "-c", dst, "tags", "import", "-"); !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("re-import err = %v", err)
	}
	mustRun(t, `[{"name":"Only","openTag":"<o>","closeTag":"</o>"}]`, "-c", dst, "tags", "import", "--replace", "-")
	got = loadFile(t, dst)
	if len(got.Tags) != 1 || got.Tags[0].Name != "Only" || got.Tags[0].ID == "" {
		t.Fatalf("replaced tags = %+v", got.Tags)
	}
}

func TestPromptExcludeInclude(t *testing.T) {
	path := writeSettings(t, testSettings)
	mustRun(t, "", "-c", path, "prompt", "exclude", "3", "1,2")
	if got := loadFile(t, path).ExcludedPrompts; len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("excluded = %v", got)
	}
	mustRun(t, "", "-c", path, "prompt", "include", "2")
	if got := loadFile(t, path).ExcludedPrompts; len(got) != 2 || got[1] != 3 {
		t.Fatalf("excluded = %v", got)
	}
	if _, _, err := run(t, "", "-c", path, "prompt", "exclude", "-1"); err == nil {
		t.Fatalf("expected error for negative index")
	}
}

func TestPromptProcessAndSegments(t *testing.T) {
	path := writeSettings(t, testSettings+"excluded_prompts: [2]\n")
	in := "<think>x</think>first\n\n\n\nthird <think>y</think>"

	if out := mustRun(t, in, "-c", path, "prompt", "process"); out != "first\n\n\n\nthird <think>y</think>" {
		t.Fatalf("process = %q", out)
	}
	ctxOut := mustRun(t, in, "-c", path, "prompt", "process", "--context")
	if !strings.Contains(ctxOut, "--- original ---\n"+in) || !strings.Contains(ctxOut, "--- filtered ---\nfirst") {
		t.Fatalf("context output = %q", ctxOut)
	}

	var segs []prompt.Segment
	if err := json.Unmarshal([]byte(mustRun(t, in, "-c", path, "prompt", "segments", "--json")), &segs); err != nil {
		t.Fatalf("decode segments: %v", err)
	}
	if len(segs) != 2 || segs[0].Index != 0 || segs[1].Index != 2 || !segs[1].Excluded {
		t.Fatalf("segments = %+v", segs)
	}
	table := mustRun(t, in, "-c", path, "prompt", "segments")
	if !strings.Contains(table, "  2  exclude  third") {
		t.Fatalf("segments table = %q", table)
	}
}

func TestPromptSwapAndReplace(t *testing.T) {
	isolate(t)
	if out := mustRun(t, "a\n\nb\n\nc", "prompt", "swap", "0", "2"); out != "c\n\nb\n\na" {
		t.Fatalf("swap = %q", out)
	}
	if out := mustRun(t, "a\n\nb", "prompt", "replace", "1", "B"); out != "a\n\nB" {
		t.Fatalf("replace = %q", out)
	}
	if _, _, err := run(t, "a", "prompt", "swap", "0", "5"); !errors.Is(err, prompt.ErrIndexOutOfRange) {
		t.Fatalf("swap out of range err = %v", err)
	}
}

func TestBatchCommand(t *testing.T) {
	path := writeSettings(t, testSettings)
	dir := filepath.Dir(path)
	in1 := filepath.Join(dir, "one.txt")
	in2 := filepath.Join(dir, "two.txt")
	if err := os.WriteFile(in1, []byte("a<think>x</think>b"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(in2, []byte("plain"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")
	out := mustRun(t, "", "-c", path, "batch", "--out", outDir, "--jobs", "2", "--no-progress", in1, in2)
	if !strings.HasPrefix(out, "processed 2 file(s), 1 changed, 0 error(s)") {
		t.Fatalf("batch output = %q", out)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "one.txt"))
	if err != nil || string(data) != "ab" {
		t.Fatalf("one.txt = %q, %v", data, err)
	}

	_, stderr, err := run(t, "", "-c", path, "batch", "--out", outDir, "--no-progress", filepath.Join(dir, "missing.txt"))
	if err == nil || !strings.Contains(stderr, "missing.txt") {
		t.Fatalf("expected failure for missing input, err=%v stderr=%q", err, stderr)
	}
	if _, _, err := run(t, "", "-c", path, "batch", "--out", outDir, "--jobs", "0", in1); err == nil {
		t.Fatalf("expected error for --jobs 0")
	}
}

func TestResolveTagRef(t *testing.T) {
	tags := []model.Tag{
		{ID: "abcd-1", Name: "Think"},
		{ID: "abce-2", Name: "OOC"},
		{ID: "zz", Name: "think2"},
	}
	cases := []struct {
		ref  string
		want string
		err  bool
	}{
		{"abcd-1", "abcd-1", false},
		{"abcd", "abcd-1", false},
		{"abc", "", true},
		{"ooc", "abce-2", false},
		{"#2", "zz", false},
		{"#3", "", true},
		{"nope", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := resolveTagRef(tags, tc.ref)
		if tc.err {
			if err == nil {
				t.Fatalf("%q: expected error, got %+v", tc.ref, got)
			}
			continue
		}
		if err != nil || got.ID != tc.want {
			t.Fatalf("%q: got %+v, %v", tc.ref, got, err)
		}
	}
}

func TestBrowsableAddr(t *testing.T) {
	cases := []struct {
		addr net.Addr
		want string
	}{
		{&net.TCPAddr{IP: net.IPv4zero, Port: 8080}, "localhost:8080"},
		{&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9}, "127.0.0.1:9"},
		{&net.TCPAddr{IP: net.IPv6unspecified, Port: 1}, "localhost:1"},
	}
	for _, tc := range cases {
		if got := browsableAddr(tc.addr); got != tc.want {
			t.Fatalf("browsableAddr(%v) = %q, want %q", tc.addr, got, tc.want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out := mustRun(t, "", "version")
	if !strings.HasPrefix(out, "tagfilter ") {
		t.Fatalf("version = %q", out)
	}
}

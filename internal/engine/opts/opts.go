package opts

import (
	"fmt"
	"net/url"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/phyten/tagfilter/internal/engine"
)

const (
	maxJobs         = 64
	defaultTruncate = 80
)

var (
	trueLiterals  = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}}
	falseLiterals = map[string]struct{}{"0": {}, "false": {}, "no": {}, "off": {}}

	outputFormats = []string{"table", "tsv", "csv", "json", "ndjson", "markdown"}
)

// Options controls a single filter invocation from the CLI or the web UI.
type Options struct {
	Mode      engine.Mode
	Output    string
	Highlight bool
	Truncate  int
	Jobs      int
}

// Defaults returns the shared baseline options for both CLI and Web inputs.
func Defaults() Options {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 1
	}
	if jobs > maxJobs {
		jobs = maxJobs
	}
	return Options{
		Mode:      engine.ModeStrip,
		Output:    "table",
		Highlight: false,
		Truncate:  defaultTruncate,
		Jobs:      jobs,
	}
}

// ApplyWebQueryToOptions copies recognised values from the query string into the
// provided options. Validation happens separately via NormalizeAndValidate.
func ApplyWebQueryToOptions(def Options, q url.Values) (Options, error) {
	out := def

	if raw, ok := lastLiteralValue(q["mode"]); ok {
		mode, err := engine.ParseMode(raw)
		if err != nil {
			return out, err
		}
		out.Mode = mode
	}
	if raw, ok := lastLiteralValue(q["output"]); ok {
		out.Output = raw
	}
	if raw, ok := lastLiteralValue(q["highlight"]); ok {
		v, err := ParseBool(raw, "highlight")
		if err != nil {
			return out, err
		}
		out.Highlight = v
	}
	if raw, ok := lastLiteralValue(q["truncate"]); ok {
		n, err := parseInt(raw, "truncate")
		if err != nil {
			return out, err
		}
		out.Truncate = n
	}
	return out, nil
}

// NormalizeAndValidate ensures the options are canonical and within the allowed ranges.
func NormalizeAndValidate(o *Options) error {
	mode, err := engine.ParseMode(string(o.Mode))
	if err != nil {
		return err
	}
	o.Mode = mode

	out, err := NormalizeOutput(o.Output)
	if err != nil {
		return err
	}
	o.Output = out

	if o.Truncate < 0 {
		return fmt.Errorf("truncate must be >= 0")
	}
	if o.Jobs < 1 || o.Jobs > maxJobs {
		return fmt.Errorf("jobs must be between 1 and %d", maxJobs)
	}
	return nil
}

// ParseBool converts a string literal into a boolean, accepting multiple synonyms.
func ParseBool(raw, key string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := trueLiterals[v]; ok {
		return true, nil
	}
	if _, ok := falseLiterals[v]; ok {
		return false, nil
	}
	return false, fmt.Errorf("invalid value for %s: %q", key, raw)
}

// ParseIntInRange parses a string into an int and ensures it falls within [min, max].
// If max < min, the upper bound is ignored.
func ParseIntInRange(raw, key string, min, max int) (int, error) {
	n, err := parseInt(raw, key)
	if err != nil {
		return 0, err
	}
	if n < min {
		if max >= min {
			return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
		}
		return 0, fmt.Errorf("%s must be >= %d", key, min)
	}
	if max >= min && n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}
	return n, nil
}

// NormalizeOutput validates and lower-cases the output format value.
// An empty value selects the table format.
func NormalizeOutput(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "table", nil
	}
	if v == "md" {
		return "markdown", nil
	}
	for _, f := range outputFormats {
		if v == f {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid --output: %s (want %s)", value, strings.Join(outputFormats, "|"))
}

// ParseIndexList parses paragraph indices such as "0,2, 5" into a sorted,
// de-duplicated slice. Every index must be >= 0.
func ParseIndexList(vals []string, key string) ([]int, error) {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, part := range SplitMulti(vals) {
		n, err := ParseIntInRange(part, key, 0, -1)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// SplitMulti turns repeated values (and comma-separated values) into a flat slice.
func SplitMulti(vals []string) []string {
	var out []string
	for _, raw := range vals {
		for _, piece := range strings.Split(raw, ",") {
			part := strings.TrimSpace(piece)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

func parseInt(raw, key string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	return n, nil
}

func lastLiteralValue(vals []string) (string, bool) {
	flat := SplitMulti(vals)
	if len(flat) == 0 {
		return "", false
	}
	return flat[len(flat)-1], true
}

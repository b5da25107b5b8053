// Package batch strips tagged regions from many files in parallel.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/phyten/tagfilter/internal/engine"
	"github.com/phyten/tagfilter/internal/model"
	"github.com/phyten/tagfilter/internal/progress"
)

const zstdExt = ".zst"

// Options は一括処理の実行オプションです。
type Options struct {
	// OutDir receives one output file per input, keeping the base name.
	OutDir string
	Jobs   int
	Engine engine.Engine
	// Progress receives snapshots while files complete; nil disables it.
	Progress progress.Observer
}

// FileResult は 1 ファイル分の処理結果です。
type FileResult struct {
	Path     string `json:"path"`
	OutPath  string `json:"out_path"`
	BytesIn  int64  `json:"bytes_in"`
	BytesOut int64  `json:"bytes_out"`
	Changed  bool   `json:"changed"`
}

// FileError は 1 ファイル分の失敗です。
type FileError struct {
	Path    string `json:"path"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Stage, e.Message)
}

// Result は一括処理の結果です。Files と Errors はどちらもパス順です。
type Result struct {
	Files      []FileResult `json:"files"`
	Errors     []FileError  `json:"errors"`
	Changed    int          `json:"changed"`
	ElapsedMS  int64        `json:"elapsed_ms"`
	ErrorCount int          `json:"error_count"`
}

// Run は files を Jobs 個のワーカーに分配し、各ファイルのタグ領域を除去して
// OutDir に書き出します。個別ファイルの失敗は Result.Errors に集約され、
// 返り値の error は入力自体の不備かキャンセル時のみです。
func Run(ctx context.Context, files []string, tags []model.Tag, opts Options) (*Result, error) {
	start := time.Now()
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, errors.New("batch: output directory required")
	}
	if err := checkNames(files); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	outAbs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, err
	}

	matchers := opts.Engine.Matchers(tags)
	observer := opts.Progress
	if observer == nil {
		observer = progress.NoopObserver{}
	}
	est := progress.NewEstimator(len(files), progress.Config{})

	nw := opts.Jobs
	if nw < 1 {
		nw = 1
	}
	if nw > len(files) && len(files) > 0 {
		nw = len(files)
	}

	type job struct {
		idx  int
		path string
	}
	results := make([]*FileResult, len(files))
	var (
		errsMu sync.Mutex
		errs   []FileError
		wg     sync.WaitGroup
	)
	jobs := make(chan job)
	worker := func() {
		defer wg.Done()
		for j := range jobs {
			res, ferr := processFile(j.path, outAbs, matchers)
			if ferr != nil {
				errsMu.Lock()
				errs = append(errs, *ferr)
				errsMu.Unlock()
				if opts.Engine.Log != nil {
					opts.Engine.Log.Warn("batch file failed", "path", j.path, "stage", ferr.Stage, "err", ferr.Message)
				}
			} else {
				results[j.idx] = &res
			}
			if snap, notify := est.Advance(res.BytesIn, ferr != nil); notify {
				observer.Publish(snap)
			}
		}
	}

	wg.Add(nw)
	for i := 0; i < nw; i++ {
		go worker()
	}
	var cancelled error
feed:
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		case jobs <- job{idx: i, path: path}:
		}
	}
	close(jobs)
	wg.Wait()
	observer.Done(est.Snapshot())

	out := &Result{Files: make([]FileResult, 0, len(files))}
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Files = append(out.Files, *r)
		if r.Changed {
			out.Changed++
		}
	}
	sort.Slice(out.Files, func(i, j int) bool { return out.Files[i].Path < out.Files[j].Path })
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Path == errs[j].Path {
			return errs[i].Stage < errs[j].Stage
		}
		return errs[i].Path < errs[j].Path
	})
	out.Errors = errs
	out.ErrorCount = len(errs)
	out.ElapsedMS = time.Since(start).Milliseconds()
	if cancelled != nil {
		return out, cancelled
	}
	return out, nil
}

func checkNames(files []string) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		base := filepath.Base(f)
		if prev, dup := seen[base]; dup {
			return fmt.Errorf("batch: %s and %s would both be written as %s", prev, f, base)
		}
		seen[base] = f
	}
	return nil
}

func processFile(path, outDir string, matchers []*engine.Matcher) (FileResult, *FileError) {
	res := FileResult{Path: path}
	fail := func(stage string, err error) (FileResult, *FileError) {
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = "unknown error"
		}
		return res, &FileError{Path: path, Stage: stage, Message: msg}
	}

	srcAbs, err := filepath.Abs(path)
	if err != nil {
		return fail("read", err)
	}
	outPath := filepath.Join(outDir, filepath.Base(path))
	if srcAbs == outPath {
		return fail("write", errors.New("output would overwrite input"))
	}
	res.OutPath = outPath

	data, err := readInput(path)
	if err != nil {
		return fail("read", err)
	}
	res.BytesIn = int64(len(data))

	text := string(data)
	stripped := text
	for _, m := range matchers {
		stripped = m.ReplaceAll(stripped)
	}
	res.Changed = stripped != text
	res.BytesOut = int64(len(stripped))

	if err := writeOutput(outPath, []byte(stripped)); err != nil {
		return fail("write", err)
	}
	return res, nil
}

func readInput(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if !strings.EqualFold(filepath.Ext(path), zstdExt) {
		return io.ReadAll(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return data, nil
}

func writeOutput(path string, data []byte) error {
	if !strings.EqualFold(filepath.Ext(path), zstdExt) {
		return os.WriteFile(path, data, 0o644)
	}
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("compress: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

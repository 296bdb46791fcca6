package filtering

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/scriptlets/internal/filtering/dialect"
	"github.com/bnema/scriptlets/internal/logging"
)

const (
	defaultCacheSize = 4096
	maxLineSize      = 1 << 20
)

// RuleConverter is the part of the converter the list compiler drives.
type RuleConverter interface {
	ToCanonical(rule string) ([]string, error)
	ToUBO(rule string) (string, error)
}

// CompileOptions tunes a ListCompiler.
type CompileOptions struct {
	// Target is dialect.Canonical or dialect.UBO.
	Target dialect.Tag
	// Workers bounds concurrent line conversions. Zero means GOMAXPROCS.
	Workers int
	// CacheSize bounds the memo of already converted rule texts.
	CacheSize int
	// Strict aborts on the first line that fails to convert.
	Strict bool
}

// CompileStats summarizes one compilation.
type CompileStats struct {
	Lines         int `json:"lines"`
	Converted     int `json:"converted"`
	PassedThrough int `json:"passed_through"`
	Failed        int `json:"failed"`
	CacheHits     int `json:"cache_hits"`
}

// CompiledList is the output of a compilation. Rules keep source order;
// failing lines are left out and reported in Errors.
type CompiledList struct {
	Target        string       `json:"target"`
	SourceVersion string       `json:"source_version,omitempty"`
	Rules         []string     `json:"rules"`
	Errors        []*LineError `json:"errors,omitempty"`
	Stats         CompileStats `json:"stats"`
	CompiledAt    time.Time    `json:"compiled_at"`
}

// String renders the rules one per line.
func (cl *CompiledList) String() string {
	if len(cl.Rules) == 0 {
		return ""
	}
	return strings.Join(cl.Rules, "\n") + "\n"
}

type lineResult struct {
	rules     []string
	err       error
	converted bool
}

// ListCompiler converts whole filter lists. Scriptlet and redirect lines are
// converted to the target dialect, every other line passes through.
type ListCompiler struct {
	converter RuleConverter
	opts      CompileOptions
	cache     *lru.Cache[string, lineResult]
}

// NewListCompiler creates a compiler around conv.
func NewListCompiler(conv RuleConverter, opts CompileOptions) (*ListCompiler, error) {
	if opts.Target != dialect.Canonical && opts.Target != dialect.UBO {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, opts.Target)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, lineResult](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule cache: %w", err)
	}
	return &ListCompiler{converter: conv, opts: opts, cache: cache}, nil
}

// Compile reads a filter list from r and converts it line by line.
func (lc *ListCompiler) Compile(ctx context.Context, r io.Reader) (*CompiledList, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	results := make([]lineResult, len(lines))
	var hits atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lc.opts.Workers)
	for i, line := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, hit := lc.convertLine(line)
			if hit {
				hits.Add(1)
			}
			results[i] = res
			if res.err != nil && lc.opts.Strict {
				return fmt.Errorf("%w: %w", ErrCompileAborted, newLineError(i+1, line, res.err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &CompiledList{
		Target:        lc.opts.Target.String(),
		SourceVersion: versionFromLines(lines),
		Rules:         make([]string, 0, len(lines)),
		CompiledAt:    time.Now(),
	}
	out.Stats.Lines = len(lines)
	out.Stats.CacheHits = int(hits.Load())
	for i, res := range results {
		switch {
		case res.err != nil:
			out.Stats.Failed++
			out.Errors = append(out.Errors, newLineError(i+1, lines[i], res.err))
			log.Debug().Int("line", i+1).Err(res.err).Msg("rule not converted")
			continue
		case res.converted:
			out.Stats.Converted++
		default:
			out.Stats.PassedThrough++
		}
		out.Rules = append(out.Rules, res.rules...)
	}

	log.Info().
		Str("target", out.Target).
		Str("source_version", out.SourceVersion).
		Int("lines", out.Stats.Lines).
		Int("converted", out.Stats.Converted).
		Int("failed", out.Stats.Failed).
		Int("cache_hits", out.Stats.CacheHits).
		Dur("duration", time.Since(start)).
		Msg("compiled filter list")

	return out, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading filter data: %w", err)
	}
	return lines, nil
}

// convertLine reports whether the result came from the cache.
func (lc *ListCompiler) convertLine(line string) (lineResult, bool) {
	rule := strings.TrimSpace(line)
	if !isConvertible(rule) {
		return lineResult{rules: []string{line}}, false
	}
	if res, ok := lc.cache.Get(rule); ok {
		return res, true
	}
	res := lc.convert(rule)
	lc.cache.Add(rule, res)
	return res, false
}

func (lc *ListCompiler) convert(rule string) lineResult {
	canonical, err := lc.converter.ToCanonical(rule)
	if err != nil {
		return lineResult{err: err}
	}
	if lc.opts.Target == dialect.Canonical {
		return lineResult{rules: canonical, converted: true}
	}

	ubo := make([]string, 0, len(canonical))
	for _, r := range canonical {
		converted, err := lc.converter.ToUBO(r)
		if err != nil {
			return lineResult{err: err}
		}
		ubo = append(ubo, converted)
	}
	return lineResult{rules: ubo, converted: true}
}

// isConvertible reports whether rule is a scriptlet or redirect rule.
// Comments and cosmetic or network rules without a redirect pass through.
func isConvertible(rule string) bool {
	switch dialect.Classify(rule) {
	case dialect.Canonical, dialect.UBO, dialect.ABP:
		return true
	case dialect.Comment:
		return false
	}
	return dialect.IsCanonicalRedirect(rule) || strings.Contains(rule, dialect.ABPRedirectMarker)
}

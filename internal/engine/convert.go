package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/fmto/pkg/converter"
	"github.com/leapstack-labs/fmto/pkg/value"
)

// Convert plans the job, parses the input once, and writes every target.
// A failure before any target is attempted is returned as the error; a
// failure of one target is reported in its Result and does not stop the
// others.
func (e *Engine) Convert(ctx context.Context, job Job) ([]Result, error) {
	plan, doc, err := e.load(job)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]Result, len(plan.Targets))
	err = e.eachTarget(ctx, doc, plan.Targets, func(i int, t Target, text string, err error) {
		if err == nil {
			err = writeFile(t.Path, text)
		}
		if err != nil {
			e.logger.Warn("target failed", "path", t.Path, "format", t.Format, "error", err)
		} else {
			e.logger.Debug("wrote target", "path", t.Path, "format", t.Format, "bytes", len(text))
		}
		results[i] = Result{Target: t, Bytes: len(text), Err: err}
	})

	e.logger.Info("conversion complete",
		"input", plan.Input,
		"targets", len(results),
		"failed", Failed(results),
		"duration_ms", time.Since(start).Milliseconds())
	return results, err
}

// Render is like Convert but returns the rendered text of every target
// instead of writing files. Any target failure fails the call.
func (e *Engine) Render(ctx context.Context, job Job) ([]Output, error) {
	plan, doc, err := e.load(job)
	if err != nil {
		return nil, err
	}

	outputs := make([]Output, len(plan.Targets))
	errs := make([]error, len(plan.Targets))
	if err := e.eachTarget(ctx, doc, plan.Targets, func(i int, t Target, text string, err error) {
		outputs[i] = Output{Target: t, Text: text}
		errs[i] = err
	}); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// load plans the job and parses its input.
func (e *Engine) load(job Job) (*Plan, *value.Object, error) {
	plan, err := e.Plan(job)
	if err != nil {
		return nil, nil, err
	}

	doc, err := e.parseInput(plan.Input, plan.InputFormat, job.Stdin)
	if err != nil {
		return nil, nil, err
	}
	return plan, doc, nil
}

// Preview converts the job's input to a single format and returns the text.
// No targets are planned, so the input may be previewed in its own format.
func (e *Engine) Preview(job Job, to string) (string, error) {
	if job.Input == "" {
		return "", ErrNoInput
	}
	f, err := converter.ParseFormat(to)
	if err != nil {
		return "", err
	}
	from, err := inputFormat(job)
	if err != nil {
		return "", err
	}

	path := StdinPath
	if job.Input != StdinPath {
		wd, err := e.workingDir()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		path = resolvePath(wd, job.Input)
	}

	doc, err := e.parseInput(path, from, job.Stdin)
	if err != nil {
		return "", err
	}
	return formatTarget(doc, f)
}

func (e *Engine) parseInput(path string, f converter.Format, stdin io.Reader) (*value.Object, error) {
	text, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}

	src, err := converter.Lookup(f)
	if err != nil {
		return nil, err
	}
	doc, err := src.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path,
			&converter.Error{Format: f, Op: converter.OpParse, Err: err})
	}

	e.logger.Debug("parsed input", "path", path, "format", f, "members", doc.Len())
	return doc, nil
}

// eachTarget formats doc for every target concurrently and reports each
// outcome to fn. fn is called once per target, from its own goroutine,
// with the target index. The returned error is the context's, if it ends
// before all targets are done.
func (e *Engine) eachTarget(ctx context.Context, doc *value.Object, targets []Target, fn func(i int, t Target, text string, err error)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTargets)

	for i, t := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				fn(i, t, "", err)
				return err
			}
			text, err := formatTarget(doc, t.Format)
			fn(i, t, text, err)
			return nil
		})
	}
	return g.Wait()
}

func formatTarget(doc *value.Object, f converter.Format) (string, error) {
	c, err := converter.Lookup(f)
	if err != nil {
		return "", err
	}
	text, err := c.Format(doc)
	if err != nil {
		return "", &converter.Error{Format: f, Op: converter.OpFormat, Err: err}
	}
	return text, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == StdinPath {
		if stdin == nil {
			return "", ErrStdinUnavailable
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(b), nil
}

// writeFile writes text to path, creating parent directories.
func writeFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

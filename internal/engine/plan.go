package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/fmto/pkg/converter"
)

// Plan resolves the input format and the output targets of a job.
//
// Targets come from, in order of precedence: explicit outputs (formats
// from OutputFormats by position, else from each extension); the output
// directory (one file per requested format, or per supported format when
// none is requested); the working directory (one file per requested format,
// defaulting to the input format).
func (e *Engine) Plan(job Job) (*Plan, error) {
	if job.Input == "" {
		return nil, ErrNoInput
	}
	wd, err := e.workingDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	plan := &Plan{Input: StdinPath}
	if job.Input != StdinPath {
		plan.Input = resolvePath(wd, job.Input)
	}

	plan.InputFormat, err = inputFormat(job)
	if err != nil {
		return nil, err
	}

	requested := make([]converter.Format, 0, len(job.OutputFormats))
	for _, name := range job.OutputFormats {
		f, err := converter.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		requested = append(requested, f)
	}

	stem := fileStem(job.Input)
	skipInput := false

	switch {
	case len(job.Outputs) > 0:
		if len(requested) > len(job.Outputs) {
			return nil, fmt.Errorf("%w: %d formats for %d outputs", ErrTooManyFormats, len(requested), len(job.Outputs))
		}
		for i, out := range job.Outputs {
			var f converter.Format
			if i < len(requested) {
				f = requested[i]
			} else if f, err = converter.FromPath(out); err != nil {
				return nil, fmt.Errorf("%w for %q: %w", ErrNoOutputFormat, out, err)
			}
			plan.Targets = append(plan.Targets, Target{Path: resolvePath(wd, out), Format: f})
		}

	case job.OutputDir != "":
		dir := resolvePath(wd, job.OutputDir)
		formats := requested
		if len(formats) == 0 {
			formats = converter.Formats()
			skipInput = true
		}
		for _, f := range formats {
			plan.Targets = append(plan.Targets, Target{
				Path:   filepath.Join(dir, stem+"."+f.Extension()),
				Format: f,
			})
		}

	default:
		formats := requested
		if len(formats) == 0 {
			formats = []converter.Format{plan.InputFormat}
		}
		for _, f := range formats {
			plan.Targets = append(plan.Targets, Target{
				Path:   filepath.Join(wd, stem+"."+f.Extension()),
				Format: f,
			})
		}
	}

	if err := e.checkTargets(plan, skipInput); err != nil {
		return nil, err
	}
	return plan, nil
}

// checkTargets rejects targets that overwrite the input or repeat a path.
// With skipInput, a target equal to the input is dropped instead.
func (e *Engine) checkTargets(p *Plan, skipInput bool) error {
	seen := make(map[string]bool, len(p.Targets))
	kept := p.Targets[:0]
	for _, t := range p.Targets {
		if t.Path == p.Input {
			if skipInput {
				e.logger.Debug("skipping target equal to input", "path", t.Path)
				continue
			}
			return fmt.Errorf("%w: %s", ErrTargetIsInput, t.Path)
		}
		if seen[t.Path] {
			return fmt.Errorf("%w: %s", ErrDuplicateTarget, t.Path)
		}
		seen[t.Path] = true
		kept = append(kept, t)
	}
	p.Targets = kept
	return nil
}

func inputFormat(job Job) (converter.Format, error) {
	if job.InputFormat != "" {
		return converter.ParseFormat(job.InputFormat)
	}
	if job.Input == StdinPath {
		return converter.Unknown, fmt.Errorf("%w: reading stdin requires an explicit input format", ErrNoInputFormat)
	}
	f, err := converter.FromPath(job.Input)
	if err != nil {
		return converter.Unknown, fmt.Errorf("%w for %q: %w", ErrNoInputFormat, job.Input, err)
	}
	return f, nil
}

// fileStem returns the base name without its extension. Dotfiles such as
// ".env" keep their name without the dot.
func fileStem(path string) string {
	if path == StdinPath {
		return "stdin"
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = strings.TrimPrefix(base, ".")
	}
	return stem
}

func resolvePath(wd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(wd, path)
}

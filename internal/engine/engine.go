// Package engine plans and runs file conversions.
// It resolves input and output formats, parses the input once, and writes
// every requested target.
package engine

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/fmto/pkg/converter"
)

// StdinPath is the input path that selects the Job's Stdin reader.
const StdinPath = "-"

// maxParallelTargets bounds how many targets are formatted and written at
// once.
const maxParallelTargets = 4

// Errors returned while planning a conversion.
var (
	ErrNoInput          = errors.New("no input file given")
	ErrNoInputFormat    = errors.New("cannot determine input format")
	ErrNoOutputFormat   = errors.New("cannot determine output format")
	ErrTooManyFormats   = errors.New("more output formats than output files")
	ErrTargetIsInput    = errors.New("output would overwrite the input file")
	ErrDuplicateTarget  = errors.New("output path listed more than once")
	ErrWatchNeedsFile   = errors.New("watch mode needs an input file, not stdin")
	ErrStdinUnavailable = errors.New("input is stdin but no reader was provided")
)

// Engine runs conversions relative to a working directory.
type Engine struct {
	workDir string
	logger  *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// WorkDir resolves relative paths. Empty means the process working
	// directory at the time of each call.
	WorkDir string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		workDir: cfg.WorkDir,
		logger:  logger,
	}
}

// Job describes one conversion request.
type Job struct {
	// Input is the source file path, or StdinPath.
	Input string
	// Stdin is read when Input is StdinPath.
	Stdin io.Reader
	// InputFormat overrides the format inferred from the input extension.
	InputFormat string
	// Outputs lists explicit output files.
	Outputs []string
	// OutputFormats pairs with Outputs by position, or selects the formats
	// written to OutputDir or the working directory.
	OutputFormats []string
	// OutputDir receives one file per format when Outputs is empty.
	OutputDir string
}

// Target is one output file and the format written to it.
type Target struct {
	Path   string
	Format converter.Format
}

// Plan is a resolved Job.
type Plan struct {
	Input       string // absolute path, or StdinPath
	InputFormat converter.Format
	Targets     []Target
}

// Output is the rendered text of one target.
type Output struct {
	Target Target
	Text   string
}

// Result reports the outcome of one target.
type Result struct {
	Target Target
	Bytes  int
	Err    error
}

// Failed counts results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// ConvertString converts text between two formats without touching the
// file system.
func (e *Engine) ConvertString(text string, from, to converter.Format) (string, error) {
	e.logger.Debug("converting text", "from", from, "to", to, "bytes", len(text))
	return converter.Convert(text, from, to)
}

func (e *Engine) workingDir() (string, error) {
	if e.workDir != "" {
		return e.workDir, nil
	}
	return os.Getwd()
}

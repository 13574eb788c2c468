package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/fmto/internal/cli/output"
	"github.com/leapstack-labs/fmto/internal/engine"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	Outputs []string
	Stdout  bool
	Watch   bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert a config file to other formats",
		Long: `Convert a config file between hocon, json, yaml, toml, ini, xml and env.

The input format is taken from the file extension unless --from is given.
Outputs are chosen, in order of precedence, from:
  1. explicit --out files (formats from --to by position, else from each extension)
  2. --output-dir (one file per --to format, or per supported format when none is given)
  3. the working directory (one file per --to format, defaulting to the input format)

Use "-" as the input to read from stdin; --from is then required.`,
		Example: `  # HOCON to JSON next to the input
  fmto convert app.conf -t json

  # Several explicit outputs
  fmto convert app.conf -o app.json -o deploy/app.yaml

  # Every supported format into a directory
  fmto convert app.conf -d out/

  # Pipe through stdin and print the result
  cat app.yaml | fmto convert - -f yaml -t toml --stdout

  # Re-convert whenever the input changes
  fmto convert app.conf -t json --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Outputs, "out", "o", nil, "Output file (repeatable)")
	cmd.Flags().StringP("output-dir", "d", "", "Directory receiving one file per output format")
	cmd.Flags().StringP("from", "f", "", "Input format (default: from the input extension)")
	cmd.Flags().StringSliceP("to", "t", nil, "Output format(s), comma-separated or repeated")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "Print the converted text instead of writing files")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Convert again whenever the input changes")

	_ = cmd.RegisterFlagCompletionFunc("from", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("to", completeFormats)
	_ = cmd.MarkFlagDirname("output-dir")

	return cmd
}

func runConvert(cmd *cobra.Command, input string, opts *ConvertOptions) error {
	cc := NewCommandContext(cmd)

	job := engine.Job{
		Input:         input,
		Stdin:         cmd.InOrStdin(),
		InputFormat:   cc.Cfg.InputFormat,
		Outputs:       opts.Outputs,
		OutputFormats: cc.Cfg.OutputFormats,
		OutputDir:     cc.Cfg.OutputDir,
	}
	// Configured output formats only pair with explicit files when given
	// on the command line; otherwise each file's extension decides.
	if len(opts.Outputs) > 0 && !cmd.Flags().Changed("to") {
		job.OutputFormats = nil
	}

	if opts.Stdout {
		if opts.Watch {
			return errors.New("--stdout cannot be combined with --watch")
		}
		return runConvertStdout(cmd, cc, job)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Watch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		cc.Renderer.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", displayPath(input)))
		return cc.Engine.Watch(ctx, job, func(results []engine.Result, err error) {
			if err != nil {
				cc.Renderer.Error(err.Error())
				return
			}
			_ = renderConvertResults(cc.Renderer, input, results)
		})
	}

	results, err := cc.Engine.Convert(ctx, job)
	if err != nil {
		return err
	}
	return renderConvertResults(cc.Renderer, input, results)
}

// runConvertStdout prints a single converted document.
func runConvertStdout(cmd *cobra.Command, cc *CommandContext, job engine.Job) error {
	formats := job.OutputFormats
	if len(formats) != 1 {
		return fmt.Errorf("--stdout needs exactly one output format, got %d", len(formats))
	}
	if len(job.Outputs) > 0 || job.OutputDir != "" {
		cc.Renderer.Warning("--stdout ignores --out and --output-dir")
	}

	text, err := cc.Engine.Preview(job, formats[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}

// renderConvertResults reports every target and returns an error when any
// of them failed.
func renderConvertResults(r *output.Renderer, input string, results []engine.Result) error {
	failed := engine.Failed(results)

	if r.EffectiveMode() == output.ModeJSON {
		out := output.ConvertOutput{
			Input:     input,
			Targets:   make([]output.TargetOutput, 0, len(results)),
			Succeeded: len(results) - failed,
			Failed:    failed,
		}
		for _, res := range results {
			t := output.TargetOutput{
				Path:   res.Target.Path,
				Format: res.Target.Format.String(),
				Bytes:  res.Bytes,
			}
			if res.Err != nil {
				t.Error = res.Err.Error()
			}
			out.Targets = append(out.Targets, t)
		}
		if err := r.JSON(out); err != nil {
			return err
		}
	} else {
		r.Header(2, fmt.Sprintf("Converting %s", displayPath(input)))
		for _, res := range results {
			name := displayPath(res.Target.Path)
			if res.Err != nil {
				r.StatusLine(name, output.StatusFailed, res.Err.Error())
				continue
			}
			r.StatusLine(name, output.StatusSuccess, fmt.Sprintf("(%s, %d bytes)", res.Target.Format, res.Bytes))
		}
		if failed == 0 {
			r.Success(fmt.Sprintf("Wrote %d %s", len(results), plural(len(results), "file", "files")))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d %s failed", failed, len(results), plural(len(results), "target", "targets"))
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

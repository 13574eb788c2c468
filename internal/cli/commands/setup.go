package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/fmto/internal/cli/config"
	"github.com/leapstack-labs/fmto/internal/cli/output"
	"github.com/leapstack-labs/fmto/internal/engine"
	"github.com/leapstack-labs/fmto/pkg/converter"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the configuration and
// logger stored in the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   engine.New(engine.Config{Logger: logger}),
		Renderer: r,
	}
}

// displayPath shortens path relative to the working directory when it lies
// beneath it.
func displayPath(path string) string {
	if path == engine.StdinPath {
		return "<stdin>"
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// completeFormats completes format names for flags.
func completeFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return converter.Names(), cobra.ShellCompDirectiveNoFileComp
}

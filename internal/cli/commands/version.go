package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/fmto/internal/cli/output"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display fmto version information.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := NewCommandContext(cmd).Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(output.VersionOutput{Version: version})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fmto v%s\n", version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Config format converter for hocon, json, yaml, toml, ini, xml and env")
			return nil
		},
	}
}

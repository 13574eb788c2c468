package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/fmto/internal/cli/output"
	"github.com/leapstack-labs/fmto/pkg/converter"
)

// NewFormatsCommand creates the formats command.
func NewFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported formats",
		Long: `List every supported format with its file extensions.

Formats without full nesting drop what they cannot hold: ini keeps
top-level strings and one level of sections, env keeps top-level strings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFormats(NewCommandContext(cmd).Renderer)
		},
	}
}

func formatInfos() []output.FormatInfo {
	infos := make([]output.FormatInfo, 0, len(converter.Formats()))
	for _, f := range converter.Formats() {
		infos = append(infos, output.FormatInfo{
			Name:         f.String(),
			Extensions:   f.Extensions(),
			KeepsNesting: f.Nested(),
		})
	}
	return infos
}

func runFormats(r *output.Renderer) error {
	infos := formatInfos()
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		nesting := "yes"
		if !info.KeepsNesting {
			nesting = "no"
		}
		exts := make([]string, len(info.Extensions))
		for i, ext := range info.Extensions {
			exts[i] = "." + ext
		}
		rows = append(rows, []string{info.Name, strings.Join(exts, " "), nesting})
	}

	r.Header(1, "Supported formats")
	r.Table([]string{"Format", "Extensions", "Nesting"}, rows)
	return nil
}

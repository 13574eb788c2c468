package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/fmto/internal/engine"
	"github.com/leapstack-labs/fmto/pkg/converter"
)

// REPLOptions holds options for the repl command.
type REPLOptions struct {
	From string
	To   string
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &REPLOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Convert documents interactively",
		Long: `Start an interactive shell that converts pasted documents.

Type or paste a document and finish it with a blank line to convert it.
Lines starting with a dot are commands; type .help to list them.`,
		Example: `  # HOCON in, JSON out (the defaults)
  fmto repl

  # YAML in, TOML out
  fmto repl --from yaml --to toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", converter.HOCON.String(), "Input format")
	cmd.Flags().StringVar(&opts.To, "to", converter.JSON.String(), "Output format")
	_ = cmd.RegisterFlagCompletionFunc("from", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("to", completeFormats)

	return cmd
}

func runREPL(cmd *cobra.Command, opts *REPLOptions) error {
	cc := NewCommandContext(cmd)

	// Configured formats apply unless the flags were given.
	from, to := opts.From, opts.To
	if !cmd.Flags().Changed("from") && cc.Cfg.InputFormat != "" {
		from = cc.Cfg.InputFormat
	}
	if !cmd.Flags().Changed("to") && len(cc.Cfg.OutputFormats) > 0 {
		to = cc.Cfg.OutputFormats[0]
	}

	session, err := newREPLSession(cc.Engine, from, to, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	historyFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		historyFile = filepath.Join(dir, "fmto", "repl_history")
		_ = os.MkdirAll(filepath.Dir(historyFile), 0o750)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          session.prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "fmto REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Finish a document with a blank line. Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(session.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if quit := session.handleLine(line); quit {
			break
		}
		rl.SetPrompt(session.prompt())
	}

	return nil
}

// replSession holds the state of one REPL: the selected formats and the
// document being typed.
type replSession struct {
	eng    *engine.Engine
	from   converter.Format
	to     converter.Format
	buf    strings.Builder
	out    io.Writer
	errOut io.Writer
}

func newREPLSession(eng *engine.Engine, from, to string, out, errOut io.Writer) (*replSession, error) {
	s := &replSession{eng: eng, out: out, errOut: errOut}
	var err error
	if s.from, err = converter.ParseFormat(from); err != nil {
		return nil, err
	}
	if s.to, err = converter.ParseFormat(to); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return "   ...> "
	}
	return fmt.Sprintf("%s→%s> ", s.from, s.to)
}

func (s *replSession) reset() {
	s.buf.Reset()
}

// handleLine processes one line of input and reports whether the session
// should end.
func (s *replSession) handleLine(line string) bool {
	trimmed := strings.TrimSpace(line)

	if s.buf.Len() == 0 {
		if trimmed == "" {
			return false
		}
		if strings.HasPrefix(trimmed, ".") {
			return s.handleDotCommand(trimmed)
		}
	}

	if trimmed == "" {
		s.convert()
		return false
	}

	s.buf.WriteString(line)
	s.buf.WriteByte('\n')
	return false
}

// convert converts and clears the buffered document.
func (s *replSession) convert() {
	text := s.buf.String()
	s.buf.Reset()

	out, err := s.eng.ConvertString(text, s.from, s.to)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprint(s.out, out)
	if !strings.HasSuffix(out, "\n") {
		_, _ = fmt.Fprintln(s.out)
	}
	_, _ = fmt.Fprintln(s.out)
}

func (s *replSession) handleDotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".formats":
		_, _ = fmt.Fprintf(s.out, "%s\n", strings.Join(converter.Names(), ", "))

	case ".from", ".to":
		if len(parts) < 2 {
			current := s.from
			if command == ".to" {
				current = s.to
			}
			_, _ = fmt.Fprintf(s.out, "%s\n", current)
			return false
		}
		f, err := converter.ParseFormat(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		if command == ".from" {
			s.from = f
		} else {
			s.to = f
		}

	case ".swap":
		s.from, s.to = s.to, s.from

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .from [format]   Show or set the input format
  .to [format]     Show or set the output format
  .swap            Swap input and output formats
  .formats         List supported formats
  .quit / .exit    Exit the REPL

Tips:
  - A blank line converts the document typed so far
  - Ctrl+C discards the current document
  - Tab completion works for commands and format names
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter creates a readline completer for dot-commands and
// format names.
func newREPLCompleter() *readline.PrefixCompleter {
	formatItems := func() []readline.PrefixCompleterInterface {
		var items []readline.PrefixCompleterInterface
		for _, name := range converter.Names() {
			items = append(items, readline.PcItem(name))
		}
		return items
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".from", formatItems()...),
		readline.PcItem(".to", formatItems()...),
		readline.PcItem(".swap"),
		readline.PcItem(".formats"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

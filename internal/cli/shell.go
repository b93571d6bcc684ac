package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/connerohnesorge/litebind"
)

const (
	shellPrompt     = "litebind> "
	shellContPrompt = "     ...> "
)

// lineReader is the part of *readline.Instance the shell uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

func newShellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [db]",
		Short: "Interactive SQL shell",
		Long: `Start an interactive shell. Statements end with ';' and may span
lines. Dot commands:
  .fields   column names of the last query
  .changes  rows changed by the last statement
  .quit     leave the shell`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			conn, err := a.open(path)
			if err != nil {
				return err
			}
			defer conn.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          shellPrompt,
				InterruptPrompt: "^C",
				EOFPrompt:       ".quit",
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "litebind %s on %s. Type .quit to leave.\n", litebind.Version, conn.Path())
			return runShell(conn, rl, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

type shell struct {
	conn   *litebind.Conn
	out    io.Writer
	errOut io.Writer
	fields []string
}

// runShell reads statements from rl until .quit or end of input. Statement
// errors are printed and the loop goes on.
func runShell(conn *litebind.Conn, rl lineReader, out, errOut io.Writer) error {
	sh := &shell{conn: conn, out: out, errOut: errOut}

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 && buf.Len() == 0 {
				return nil
			}
			buf.Reset()
			rl.SetPrompt(shellPrompt)
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if buf.Len() == 0 {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ".") {
				if quit := sh.command(trimmed); quit {
					return nil
				}
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		if !strings.HasSuffix(trimmed, ";") {
			rl.SetPrompt(shellContPrompt)
			continue
		}

		sh.run(buf.String())
		buf.Reset()
		rl.SetPrompt(shellPrompt)
	}
}

func (sh *shell) command(line string) (quit bool) {
	switch strings.Fields(line)[0] {
	case ".quit", ".exit":
		return true
	case ".fields":
		fmt.Fprintln(sh.out, strings.Join(sh.fields, "\t"))
	case ".changes":
		n, err := sh.conn.Changes()
		if err != nil {
			fmt.Fprintf(sh.errOut, "Error: %v\n", err)
			return false
		}
		fmt.Fprintln(sh.out, n)
	case ".help":
		fmt.Fprintln(sh.out, ".fields\n.changes\n.quit")
	default:
		fmt.Fprintf(sh.errOut, "Error: unknown command %q\n", line)
	}
	return false
}

func (sh *shell) run(sql string) {
	cur, err := sh.conn.Execute(sql)
	if err != nil {
		fmt.Fprintf(sh.errOut, "Error: %v\n", err)
		return
	}
	if cur == nil {
		return
	}
	sh.fields = cur.Fields()
	if len(sh.fields) == 0 {
		if _, err := cur.Next(); err != nil {
			fmt.Fprintf(sh.errOut, "Error: %v\n", err)
		}
		cur.Close()
		return
	}
	if _, err := printCursor(sh.out, cur); err != nil {
		fmt.Fprintf(sh.errOut, "Error: %v\n", err)
	}
}

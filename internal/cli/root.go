// Package cli implements the litebind command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/connerohnesorge/litebind"
	"github.com/connerohnesorge/litebind/internal/config"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	envFile  string
	engine   string
	lib      string
	logLevel string
	readOnly bool

	cfg     *config.Config
	logger  *slog.Logger
	binding *litebind.Binding
}

// NewRootCommand builds the litebind command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "litebind",
		Short: "Run SQL against SQLite databases",
		Long: `litebind runs SQL statements against SQLite databases through the
litebind binding.

The database argument is a file path, ":memory:" or a "file:" URI.

Examples:
  litebind exec app.db "select * from users where id = ?" 42
  litebind batch app.db @schema.sql
  litebind export app.db "select * from users" -o users.parquet
  litebind shell app.db`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "Environment file to load if present")
	flags.StringVar(&a.engine, "engine", "", "SQLite engine: modernc or purego (env LITEBIND_ENGINE)")
	flags.StringVar(&a.lib, "lib", "", "SQLite shared library for the purego engine (env LITEBIND_LIB)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (env LITEBIND_LOG_LEVEL)")
	flags.BoolVar(&a.readOnly, "read-only", false, "Open databases read-only")

	root.AddCommand(
		newExecCommand(a),
		newBatchCommand(a),
		newShellCommand(a),
		newExportCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs the command tree with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadEnv(a.envFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", a.envFile, err)
	}
	if a.engine != "" {
		cfg.Engine = a.engine
	}
	if a.lib != "" {
		cfg.LibraryPath = a.lib
	}
	if a.logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(a.logLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
		}
	}

	a.cfg = cfg
	a.logger = cfg.Logger(cmd.ErrOrStderr())
	a.binding, err = litebind.New(cfg.Binding(a.logger))
	if err != nil {
		return err
	}
	a.logger.Debug("engine loaded", "engine", a.binding.EngineName(), "version", a.binding.EngineVersion())
	return nil
}

func (a *app) teardown() error {
	if a.binding == nil {
		return nil
	}
	err := a.binding.Close()
	a.binding = nil
	return err
}

// open opens path, or the configured default database when path is empty.
func (a *app) open(path string) (*litebind.Conn, error) {
	if path == "" {
		path = a.cfg.Database
	}
	opts := a.cfg.OpenOptions()
	if a.readOnly {
		opts = append(opts, litebind.WithReadOnly())
	}
	return a.binding.Open(path, opts...)
}

// printCursor writes a header line then one tab separated line per row.
func printCursor(w io.Writer, cur *litebind.Cursor) (int, error) {
	defer cur.Close()

	fields := cur.Fields()
	if err := writeLine(w, fields); err != nil {
		return 0, err
	}

	n := 0
	cells := make([]string, len(fields))
	for {
		row, err := cur.Next()
		if err != nil {
			return n, err
		}
		if row == nil {
			return n, cur.Close()
		}
		for i, v := range row {
			cells[i] = v.String()
		}
		if err := writeLine(w, cells); err != nil {
			return n, err
		}
		n++
	}
}

func writeLine(w io.Writer, cells []string) error {
	for i, c := range cells {
		if i > 0 {
			if _, err := io.WriteString(w, "\t"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, c); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

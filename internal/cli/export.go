package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/connerohnesorge/litebind/internal/export"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <db> <sql|@file> [params...]",
		Short: "Export query results to a file",
		Long: `Run a query and stream its rows into a CSV, JSON Lines, Excel, PDF or
Parquet file. The format defaults to the extension of --output.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				if output == "" || output == "-" {
					return fmt.Errorf("--format is required when writing to stdout")
				}
				format = filepath.Ext(output)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			sql, err := readSQL(args[1])
			if err != nil {
				return err
			}

			conn, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer conn.Close()

			var (
				w    io.Writer = cmd.OutOrStdout()
				file *os.File
			)
			if output != "" && output != "-" {
				file, err = os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}

			enc, err := export.NewEncoder(f, w)
			if err != nil {
				return err
			}
			res, err := export.Query(cmd.Context(), conn, sql, enc, parseParams(args[2:])...)
			if err != nil {
				return err
			}
			if file != nil {
				if err := file.Close(); err != nil {
					return err
				}
			}

			a.logger.Info("export finished", "format", f, "rows", res.RowsProcessed, "duration", res.Duration)
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows in %s\n", res.RowsProcessed, res.Duration)
			return conn.Close()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv, json, xlsx, pdf or parquet")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

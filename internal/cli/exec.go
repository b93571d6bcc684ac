package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExecCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <db> <sql|@file> [params...]",
		Short: "Run one statement and print its rows",
		Long: `Run the first statement of the SQL text and print its rows, tab
separated with a header line, followed by the number of changed rows.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(args[1])
			if err != nil {
				return err
			}

			conn, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer conn.Close()

			cur, err := conn.Execute(sql, parseParams(args[2:])...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cur != nil {
				if _, err := printCursor(out, cur); err != nil {
					return err
				}
			}

			changes, err := conn.Changes()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "changes: %d\n", changes)
			return conn.Close()
		},
	}
}

func newBatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <db> <sql|@file> [params...]",
		Short: "Run every statement of a script",
		Long: `Run every statement of the SQL text in order, stopping at the first
failure. Parameters bind to the first statement only. Prints the number of
rows changed by the last statement.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(args[1])
			if err != nil {
				return err
			}

			conn, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer conn.Close()

			changes, err := conn.ExecuteBatch(sql, parseParams(args[2:])...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "changes: %d\n", changes)
			return conn.Close()
		},
	}
}

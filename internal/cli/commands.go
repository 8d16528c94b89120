package cli

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newDescribeCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [schema [table]]",
		Short: "Describe every schema, one schema or one table.",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ops := c.db.Ops()

			var (
				raw json.RawMessage
				err error
			)
			switch len(args) {
			case 0:
				raw, err = ops.DescribeAll(ctx)
			case 1:
				raw, err = ops.DescribeSchema(ctx, args[0])
			default:
				desc, err := c.db.Schema(args[0]).Table(args[1]).Describe(ctx)
				if err != nil {
					return err
				}
				return c.print(desc)
			}
			if err != nil {
				return err
			}
			return c.print(raw)
		},
	}
}

func newSQLCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "sql <statement>",
		Short: "Run a SQL statement.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.db.Ops().SQL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
}

func newGetCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "get <schema> <table> <key>",
		Short: "Print one record without its system timestamps.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := c.db.Schema(args[0]).Table(args[1]).Record(args[2]).Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(row)
		},
	}
}

func newUpsertCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "upsert <schema> <table> <csv-file>",
		Short: "Upsert the rows of a CSV file and print the keys written.",
		Long: `Upsert the rows of a CSV file and print the keys written.

The first row names the fields. Rows whose key already exists are updated,
the others are inserted.
`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.db.Schema(args[0]).Table(args[1]).UpsertFromCSV(cmd.Context(), args[2])
			if err != nil {
				return err
			}
			keys := make([]any, 0, len(records))
			for _, r := range records {
				keys = append(keys, r.Key())
			}
			return c.print(keys)
		},
	}
}

func newDeleteCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <schema> <table> <key>",
		Short: "Delete one record.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.db.Schema(args[0]).Table(args[1]).Delete(cmd.Context(), args[2])
		},
	}
}

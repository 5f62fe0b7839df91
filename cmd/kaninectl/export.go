package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/kanineapp/kanine-server/internal/export"
	"github.com/kanineapp/kanine-server/internal/normalize"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export user data",
	}

	cmd.AddCommand(newExportNotesCmd(flags))

	return cmd
}

func newExportNotesCmd(flags *globalFlags) *cobra.Command {
	var (
		email  string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Export every note of a user as YAML or Parquet",
		Long: `Export every note of a user with its book title, category, page number,
tags and favorite flag.

Without --out the export is written to stdout. With --out the file is replaced
atomically, so an interrupted export never leaves a truncated file behind.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			st, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()

			user, err := st.GetUserByEmail(ctx, normalize.Email(email))
			if err != nil {
				return fmt.Errorf("find user %s: %w", email, err)
			}

			records, err := export.Collect(ctx, st, user.ID)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := export.Write(&buf, format, user.Email, records, time.Now()); err != nil {
				return err
			}

			if out == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}

			if err := atomic.WriteFile(out, &buf); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			log.Info("notes exported", "user_id", user.ID, "notes", len(records), "format", format, "path", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user to export")
	cmd.Flags().StringVar(&format, "format", export.FormatYAML, "Output format (yaml, parquet)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

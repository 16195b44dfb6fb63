package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kitchenstock/internal/common"

	"github.com/spf13/cobra"
)

// cliActor is recorded as the author of log entries written by commands.
const cliActor = "cli"

// TransferOptions holds flags for import and export.
type TransferOptions struct {
	*RootOptions
	Tenant string
	Output string
	Upload bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Merge an xlsx workbook into a tenant's inventory",
		Long: `Merge an xlsx workbook into a tenant's inventory.

Each tab becomes a sheet. Rows are matched to existing items by name and the
workbook wins on conflicts.

Example:
  kitchenstock import --tenant cozinha-1 estoque.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.Tenant, "tenant", "t", "", "tenant code (required)")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func runImport(cmd *cobra.Command, opts *TransferOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open workbook", err)
	}
	defer f.Close()

	cfg, logger, err := opts.load()
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	ctx := common.WithActor(cmd.Context(), cliActor)
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.tenants.GetByCode(ctx, opts.Tenant); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("tenant %q", opts.Tenant), err)
	}

	result, err := a.transfer.Import(ctx, opts.Tenant, f)
	out := cmd.OutOrStdout()
	if result != nil {
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "skipped %s row %d: %s\n", issue.Sheet, issue.Row, issue.Reason)
		}
	}
	if err != nil {
		return WrapExitError(ExitFailure, "import failed", err)
	}
	fmt.Fprintf(out, "imported %d items into %s\n", result.Items, strings.Join(result.Sheets, ", "))
	return nil
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a tenant's inventory to an xlsx workbook",
		Long: `Write a tenant's inventory to an xlsx workbook, one tab per sheet plus the
update log.

With --upload the workbook goes to object storage and a temporary link is
printed instead.

Example:
  kitchenstock export --tenant cozinha-1 -o estoque.xlsx
  kitchenstock export --tenant cozinha-1 --upload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Tenant, "tenant", "t", "", "tenant code (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default estoque-<tenant>-<date>.xlsx)")
	cmd.Flags().BoolVar(&opts.Upload, "upload", false, "upload to object storage and print a link")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func runExport(cmd *cobra.Command, opts *TransferOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if opts.Upload {
		res, err := a.transfer.Export(ctx, opts.Tenant)
		if err != nil {
			return WrapExitError(ExitFailure, "export failed", err)
		}
		fmt.Fprintf(out, "%s\nexpires %s\n", res.URL, res.ExpiresAt.Format(time.RFC3339))
		return nil
	}

	data, err := a.transfer.Workbook(ctx, opts.Tenant)
	if err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}
	path := opts.Output
	if path == "" {
		path = exportFileName(opts.Tenant, time.Now())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WrapExitError(ExitFailure, "write workbook", err)
	}
	fmt.Fprintf(out, "wrote %s\n", filepath.Clean(path))
	return nil
}

func exportFileName(tenant string, now time.Time) string {
	return fmt.Sprintf("estoque-%s-%s.xlsx", tenant, now.UTC().Format("20060102"))
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/wharton/dfcv/internal/config"
	"github.com/wharton/dfcv/internal/table"
	"github.com/wharton/dfcv/internal/validator"
	"github.com/wharton/dfcv/internal/value"
)

// validateOptions holds flags for the validate command.
type validateOptions struct {
	BeforePath string
	AfterPath  string
	Table      string
	AfterTable string
	Key        string
	ConfigPath string
	Partitions int
}

// reportView is the JSON shape of a validation report.
type reportView struct {
	OriginalShape    validator.Shape           `json:"original_shape"`
	ProblemShape     validator.Shape           `json:"problem_shape"`
	Categories       []validator.CategoryCount `json:"categories"`
	OffendingRows    []string                  `json:"offending_rows,omitempty"`
	OffendingColumns []string                  `json:"offending_columns,omitempty"`
	RowsTruncated    bool                      `json:"rows_truncated,omitempty"`
	ColumnsTruncated bool                      `json:"columns_truncated,omitempty"`
	UnmatchedBefore  []string                  `json:"unmatched_before,omitempty"`
	UnmatchedAfter   []string                  `json:"unmatched_after,omitempty"`
	AmbiguousKeys    []string                  `json:"ambiguous_keys,omitempty"`
	NullDelta        map[string]int            `json:"null_delta,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare a before and an after table",
		Long: `Compare two SQLite tables row-matched on a primary key and report
value losses and type mismatches introduced by a conversion.

Exit code 0 means no problems, 1 means problems were found, 2 means the
command could not run (bad paths, bad config, missing key column).`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BeforePath, "before", "", "SQLite database holding the before table (required)")
	cmd.Flags().StringVar(&opts.AfterPath, "after", "", "SQLite database holding the after table (required)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table name in the before database (required)")
	cmd.Flags().StringVar(&opts.AfterTable, "after-table", "", "table name in the after database (defaults to --table)")
	cmd.Flags().StringVar(&opts.Key, "key", "", "primary key column (overrides the config file)")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "YAML options file (expected types, labels, caps)")
	cmd.Flags().IntVar(&opts.Partitions, "partitions", 0, "scan partitions per table (0 = one per table)")
	cmd.MarkFlagRequired("before")
	cmd.MarkFlagRequired("after")
	cmd.MarkFlagRequired("table")

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *validateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   rootOpts.Verbose,
	}

	runOpts, err := loadOptions(opts)
	if err != nil {
		formatter.Error("BAD_CONFIG", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	afterTable := opts.AfterTable
	if afterTable == "" {
		afterTable = opts.Table
	}

	before, err := table.OpenSQLite(opts.BeforePath, opts.Table)
	if err != nil {
		formatter.Error("BAD_TABLE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot open before table", err)
	}
	defer before.Close()
	after, err := table.OpenSQLite(opts.AfterPath, afterTable)
	if err != nil {
		formatter.Error("BAD_TABLE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot open after table", err)
	}
	defer after.Close()

	if opts.Partitions > 0 {
		before.SetPartitions(opts.Partitions)
		after.SetPartitions(opts.Partitions)
	}

	formatter.VerboseLog("before: %d rows, %d columns", before.RowCount(), len(before.Columns()))
	formatter.VerboseLog("after:  %d rows, %d columns", after.RowCount(), len(after.Columns()))

	report, err := validator.Validate(cmd.Context(), before, after, runOpts)
	if err != nil {
		formatter.Error("VALIDATION_ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "validation could not run", err)
	}

	if err := formatter.SuccessText(report.Render(), buildView(report)); err != nil {
		return err
	}
	if report.ProblemShape.Rows > 0 || report.ProblemShape.Columns > 0 {
		return WrapExitError(ExitFailure, "conversion introduced problems", nil)
	}
	return nil
}

// loadOptions merges the config file and command-line flags; the --key
// flag wins over the file's primary_key.
func loadOptions(opts *validateOptions) (*config.Options, error) {
	runOpts := &config.Options{}
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		runOpts = loaded
	}
	if opts.Key != "" {
		runOpts.PrimaryKey = opts.Key
	}
	if err := runOpts.Validate(); err != nil {
		return nil, err
	}
	return runOpts, nil
}

func buildView(report *validator.Report) reportView {
	return reportView{
		OriginalShape:    report.OriginalShape,
		ProblemShape:     report.ProblemShape,
		Categories:       report.Categories,
		OffendingRows:    displayKeys(report.OffendingRows()),
		OffendingColumns: report.OffendingColumns(),
		RowsTruncated:    report.RowsTruncated,
		ColumnsTruncated: report.ColumnsTruncated,
		UnmatchedBefore:  displayKeys(report.UnmatchedBefore),
		UnmatchedAfter:   displayKeys(report.UnmatchedAfter),
		AmbiguousKeys:    displayKeys(report.Ambiguous),
		NullDelta:        report.NullDelta,
	}
}

func displayKeys(keys []value.Value) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = value.Display(k)
	}
	return out
}

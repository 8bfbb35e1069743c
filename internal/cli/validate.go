package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prince156/ChakraCore/internal/config"
	"github.com/prince156/ChakraCore/internal/rootspec"
)

// ValidationIssue is one problem found while validating configuration.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	RootCount int               `json:"root_count"`
	Issues    []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <session-config>",
		Short: "Validate a session configuration and its root manifests",
		Long: `Validate a YAML session configuration file without opening the session.

Checks the storage URI, snapshot cadence, and history length, and compiles
the CUE root manifests if the configuration points at a manifest directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := formatterFor(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(configPath); err != nil {
		return outputValidateError(formatter, ErrCodeNotFound,
			fmt.Sprintf("session config not found: %s", configPath))
	}

	var issues []ValidationIssue

	cfg, err := config.Load(configPath)
	if err != nil {
		issues = append(issues, ValidationIssue{
			Field:   "config",
			Message: err.Error(),
			Code:    ErrCodeBadConfig,
		})
		return outputValidationIssues(formatter, issues)
	}
	formatter.VerboseLog("session config ok: uri=%s snap_interval=%d history=%d",
		cfg.URI, cfg.SnapInterval, cfg.SnapHistoryLength)

	rootCount := 0
	if cfg.RootManifestDir != "" {
		roots, err := rootspec.LoadRoots(cfg.RootManifestDir)
		if err != nil {
			issues = append(issues, validationIssueFromManifestErr(err))
		} else {
			rootCount = len(roots)
			formatter.VerboseLog("compiled %d root manifest entr%s from %s",
				rootCount, plural(rootCount, "y", "ies"), cfg.RootManifestDir)
		}
	}

	if len(issues) > 0 {
		return outputValidationIssues(formatter, issues)
	}

	result := ValidationResult{Valid: true, RootCount: rootCount}
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		return nil
	}
	fmt.Fprintln(formatter.Writer, "✓ Session configuration valid")
	if rootCount > 0 {
		fmt.Fprintf(formatter.Writer, "  %d well-known root%s declared\n",
			rootCount, plural(rootCount, "", "s"))
	}
	return nil
}

func validationIssueFromManifestErr(err error) ValidationIssue {
	var compileErr *rootspec.CompileError
	if errors.As(err, &compileErr) {
		return ValidationIssue{
			Field:   compileErr.Field,
			Message: compileErr.Message,
			Code:    ErrCodeBadManifest,
		}
	}
	return ValidationIssue{
		Field:   "roots",
		Message: err.Error(),
		Code:    ErrCodeBadManifest,
	}
}

func outputValidationIssues(f *OutputFormatter, issues []ValidationIssue) error {
	if f.Format == "json" {
		if err := f.Success(ValidationResult{Valid: false, Issues: issues}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation issue(s)", len(issues)))
	}

	fmt.Fprintf(f.Writer, "✗ Validation failed with %d issue(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(f.Writer, "  [%s] %s: %s\n", issue.Code, issue.Field, issue.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation issue(s)", len(issues)))
}

func outputValidateError(f *OutputFormatter, code, message string) error {
	if err := f.Error(code, message, nil); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, message)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

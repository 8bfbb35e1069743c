package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prince156/ChakraCore/internal/store"
)

// PruneResult reports how much snapshot history was removed.
type PruneResult struct {
	Path      string `json:"path"`
	Kept      int    `json:"kept"`
	Pruned    int    `json:"pruned"`
	Remaining int    `json:"remaining"`
}

// NewPruneCommand creates the prune command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune <session-db>",
		Short: "Prune old snapshots from a session database",
		Long: `Prune snapshot history, keeping only the newest generations.

Reverse time-travel only needs a bounded window of snapshots; pruning
reclaims space from long recording runs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(rootOpts, args[0], keep, cmd)
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 2, "number of newest snapshot generations to keep")

	return cmd
}

func runPrune(opts *RootOptions, dbPath string, keep int, cmd *cobra.Command) error {
	formatter := formatterFor(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if keep < 1 {
		return outputValidateError(formatter, ErrCodeGeneric,
			fmt.Sprintf("--keep must be at least 1, got %d", keep))
	}
	if _, err := os.Stat(dbPath); err != nil {
		return outputValidateError(formatter, ErrCodeNotFound,
			fmt.Sprintf("session database not found: %s", dbPath))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return outputValidateError(formatter, ErrCodeStore,
			fmt.Sprintf("opening session database: %v", err))
	}
	defer st.Close()

	ctx := cmd.Context()

	pruned, err := st.PruneSnapshots(ctx, keep)
	if err != nil {
		return outputValidateError(formatter, ErrCodeStore,
			fmt.Sprintf("pruning snapshots: %v", err))
	}

	remaining, err := st.ListSnapshots(ctx)
	if err != nil {
		return outputValidateError(formatter, ErrCodeStore,
			fmt.Sprintf("listing snapshots: %v", err))
	}

	result := PruneResult{
		Path:      dbPath,
		Kept:      keep,
		Pruned:    pruned,
		Remaining: len(remaining),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Pruned %d snapshot(s), %d remaining\n", result.Pruned, result.Remaining)
	return nil
}

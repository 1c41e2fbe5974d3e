package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sammoorhouse/mentos/internal/cli"
	"github.com/sammoorhouse/mentos/internal/model"
	"github.com/sammoorhouse/mentos/internal/ofx"
)

func init() {
	importOFXCmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX files exported from your
bank and store them for timeline generation.

Examples:
  # Import single file
  mentos import-ofx --user alice ~/Downloads/jan_2026.ofx

  # Import all OFX files in a directory
  mentos import-ofx --user alice ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	importOFXCmd.Flags().StringP("user", "u", "", "user id to attribute transactions to (required)")
	importOFXCmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	_ = importOFXCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(importOFXCmd)
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing OFX files",
		"file_count", len(allFiles),
		"user", userID,
		"dry_run", dryRun)

	var allTransactions []model.Transaction
	seen := make(map[string]bool) // For deduplication across files
	parser := ofx.NewParser()

	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx := interrupts.HandleInterrupts(cmd.Context())

	bar := cli.NewImportProgressBar(len(allFiles), os.Stderr)
	for _, filePath := range allFiles {
		if ctx.Err() != nil {
			break
		}
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			_ = bar.Add(1)
			continue
		}

		transactions, err := parser.ParseFile(ctx, f, userID)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			_ = bar.Add(1)
			continue
		}

		added := 0
		for _, tx := range transactions {
			if !seen[tx.ID] {
				seen[tx.ID] = true
				allTransactions = append(allTransactions, tx)
				added++
			}
		}

		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"transactions_found", len(transactions),
			"added", added,
			"duplicates", len(transactions)-added)
		_ = bar.Add(1)
	}

	if interrupts.WasInterrupted() {
		return nil
	}

	if len(allTransactions) == 0 {
		slog.Warn("No transactions found in any file")
		return nil
	}

	summarizeImport(allTransactions)

	if dryRun {
		fmt.Println(cli.FormatInfo("Dry run complete - no data saved"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(ctx, allTransactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved %d transactions for %s", len(allTransactions), userID)))
	return nil
}

func summarizeImport(transactions []model.Transaction) {
	var oldest, newest time.Time
	accounts := make(map[string]int)
	var totalSpend int64

	for i, tx := range transactions {
		if i == 0 || tx.Timestamp.Before(oldest) {
			oldest = tx.Timestamp
		}
		if i == 0 || tx.Timestamp.After(newest) {
			newest = tx.Timestamp
		}
		accounts[tx.AccountID]++
		totalSpend += tx.SpendAmount()
	}

	fmt.Printf("\n%s %d transactions across %d accounts\n",
		cli.FormatTitle("Import summary:"), len(transactions), len(accounts))
	fmt.Printf("  Date range: %s to %s\n",
		oldest.Format("2006-01-02"), newest.Format("2006-01-02"))
	fmt.Printf("  Total spend: %s\n", cli.FormatPence(totalSpend))
}

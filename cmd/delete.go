package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dealerhub/config"
	"dealerhub/record"
	"dealerhub/storage"
)

var deleteKind string

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete imported records of one kind, or the complete SQLite database file",
	Long: `Destructive cleanup command.

With --kind, every record of that kind is removed from the configured backend.
Without --kind, the complete SQLite database file is deleted (sqlite backend only).
Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Remove every imported unit (requires interactive confirmation)
  dealerhub delete --kind unit

  # Delete the complete SQLite file
  dealerhub delete --db ./dealerhub.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		var kind record.Kind
		if strings.TrimSpace(deleteKind) != "" {
			kind, err = record.ParseKind(deleteKind)
			if err != nil {
				return err
			}
		} else if rt.cfg.Store.Backend != storage.BackendSQLite {
			return fmt.Errorf("--kind is required for backend %q", rt.cfg.Store.Backend)
		}

		ctx := commandContext(cmd)
		target := deleteTarget(rt.cfg, kind)
		if kind == "" {
			summary, err := sqliteContentSummary(ctx, rt.cfg.Store.SQLite.Path)
			if err != nil {
				return err
			}
			if summary != "" {
				target += " (" + summary + ")"
			}
		}

		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, target)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		if kind == "" {
			path := rt.cfg.Store.SQLite.Path
			if err := removeDatabaseFile(path); err != nil {
				return err
			}
			fmt.Printf("Deleted database file: %s\n", path)
			return nil
		}

		store, err := rt.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.DeleteKind(ctx, kind)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d %s record(s) from %s\n", removed, kind, rt.cfg.Store.Backend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVarP(&deleteKind, "kind", "k", "", "Record kind to purge: dealer|unit|site (default: delete the SQLite file)")
}

// deleteTarget describes what a delete run removes, for the prompt.
func deleteTarget(cfg *config.Config, kind record.Kind) string {
	if kind == "" {
		return fmt.Sprintf("database file %q", cfg.Store.SQLite.Path)
	}
	return fmt.Sprintf("all %s records in %s", kind, cfg.Store.Backend)
}

// sqliteContentSummary lists how many records of each kind the database file
// holds, e.g. "2 dealer, 1 unit, 0 site records". A missing file yields "".
func sqliteContentSummary(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", nil
	}

	store, err := storage.OpenSQLite(path)
	if err != nil {
		return "", err
	}
	defer store.Close()

	counts, err := store.CountDocuments(ctx)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(record.AllKinds()))
	for _, kind := range record.AllKinds() {
		parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
	}
	return strings.Join(parts, ", ") + " records", nil
}

func confirmDeletePrompt(input io.Reader, output io.Writer, target string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete %s? Type Y to confirm: ", target); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}

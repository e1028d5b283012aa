package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dori/leadboard/internal/app"
	"github.com/dori/leadboard/internal/db"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the CRM document as JSON (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the CRM document with a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved revisions of the CRM document",
	RunE:  runHistory,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <revision>",
	Short: "Restore an earlier revision as the newest one",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "Number of revisions to show")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := readDocument(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("no document stored under %q", cfg.DocumentKey)
	}

	body, err := db.EncodeDocument(*doc)
	if err != nil {
		return err
	}
	body = append(body, '\n')

	if len(args) == 0 {
		_, err = os.Stdout.Write(body)
		return err
	}
	if err := os.WriteFile(args[0], body, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d boards, %d columns, %d tasks to %s\n",
		len(doc.Boards), len(doc.Columns), len(doc.Tasks), args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		body []byte
		err  error
	)
	if args[0] == "-" {
		body, err = io.ReadAll(os.Stdin)
	} else {
		body, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}

	doc, err := db.DecodeDocument(body)
	if err != nil {
		return err
	}

	return withApp(func(a *app.App) error {
		if err := a.Import(doc); err != nil {
			return err
		}
		fmt.Printf("Imported %d boards, %d columns, %d tasks\n",
			len(doc.Boards), len(doc.Columns), len(doc.Tasks))
		return nil
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	revs, err := database.History(cmd.Context(), cfg.DocumentKey, limit)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		fmt.Println("No revisions saved.")
		return nil
	}

	fmt.Printf("Revisions of %s (%d):\n\n", cfg.DocumentKey, len(revs))
	for _, r := range revs {
		fmt.Printf("  %4d  %s  %6d bytes\n",
			r.Revision, r.SavedAt.Local().Format("2006-01-02 15:04:05"), r.Size)
	}
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	revision, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || revision <= 0 {
		return fmt.Errorf("invalid revision %q", args[0])
	}

	return withApp(func(a *app.App) error {
		rev, err := a.Restore(cmd.Context(), revision)
		if errors.Is(err, db.ErrRevisionNotFound) {
			return fmt.Errorf("revision %d is not in the history", revision)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Restored revision %d as revision %d\n", revision, rev)
		return nil
	})
}

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/leadboard/internal/app"
	"github.com/dori/leadboard/internal/board"
	"github.com/dori/leadboard/internal/model"
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Quick add a task",
	Long: `Quick add a task. Without --column the task lands in the lead intake column.

  leadboard add "Call Marina !high #AFD9FF due:friday"

  Priority:  !low !medium !high
  Labels:    #RRGGBB color tags
  Due date:  due:today due:tomorrow due:friday due:2025-01-15`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var leadCmd = &cobra.Command{
	Use:   "lead",
	Short: "Register a contact as a new lead",
	RunE:  runLead,
}

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List boards with their columns",
	RunE:  runBoards,
}

func init() {
	addCmd.Flags().String("column", "", "Target column id")

	leadCmd.Flags().String("name", "", "Contact name")
	leadCmd.Flags().String("email", "", "Contact email")
	leadCmd.Flags().String("phone", "", "Contact phone")
	leadCmd.Flags().String("message", "", "Message from the contact")
	leadCmd.MarkFlagRequired("name")

	boardsCmd.Flags().Bool("ids", false, "Show ids")
}

// withApp opens the application, runs fn and flushes pending saves on close
func withApp(fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := stderrLogger(cfg)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func runAdd(cmd *cobra.Command, args []string) error {
	columnID, _ := cmd.Flags().GetString("column")
	now := time.Now()
	parsed := parseQuickAdd(strings.Join(args, " "), now)
	if parsed.Title == "" {
		return errors.New("task title is empty")
	}

	return withApp(func(a *app.App) error {
		if columnID == "" {
			c, ok := board.IntakeColumn(a.Service.Snapshot())
			if !ok {
				return errors.New("no board to add the task to")
			}
			columnID = c.ID
		}

		task, ok := a.Service.AddTask(board.TaskInput{
			ColumnID: columnID,
			Title:    parsed.Title,
			Priority: parsed.Priority,
			Labels:   parsed.Labels,
			DueDate:  parsed.DueDate,
		})
		if !ok {
			return fmt.Errorf("column %q not found", columnID)
		}

		col, _ := a.Service.Column(task.ColumnID)
		fmt.Printf("Created: %s (%s)\n", task.Title, col.Title)
		if task.DueDate != nil {
			fmt.Printf("Due: %s\n", formatDueDate(*task.DueDate, now))
		}
		if task.Priority != model.PriorityMedium {
			fmt.Printf("Priority: %s\n", task.Priority)
		}
		if len(task.Labels) > 0 {
			fmt.Printf("Labels: %s\n", strings.Join(task.Labels, ", "))
		}
		return nil
	})
}

func runLead(cmd *cobra.Command, args []string) error {
	var c board.Contact
	c.Name, _ = cmd.Flags().GetString("name")
	c.Email, _ = cmd.Flags().GetString("email")
	c.Phone, _ = cmd.Flags().GetString("phone")
	c.Message, _ = cmd.Flags().GetString("message")

	return withApp(func(a *app.App) error {
		task, ok := a.Service.AddLeadFromContact(c)
		if !ok {
			return errors.New("no board accepts leads")
		}
		col, _ := a.Service.Column(task.ColumnID)
		fmt.Printf("Lead created: %s → %s\n", task.Title, col.Title)
		return nil
	})
}

func runBoards(cmd *cobra.Command, args []string) error {
	showIDs, _ := cmd.Flags().GetBool("ids")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := readDocument(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if doc == nil || len(doc.Boards) == 0 {
		fmt.Println("No boards yet.")
		return nil
	}

	svc := board.NewService(*doc)
	now := time.Now()
	for _, b := range svc.Boards() {
		title := b.Title
		if b.IsFavorite {
			title = "★ " + title
		}
		if b.IsArchived {
			title += " (archived)"
		}
		if showIDs {
			title += "  [" + b.ID + "]"
		}
		fmt.Println(title)

		for _, c := range svc.Columns(b.ID) {
			tasks := svc.Tasks(c.ID)
			overdue := 0
			for i := range tasks {
				if tasks[i].IsOverdue(now) {
					overdue++
				}
			}
			line := fmt.Sprintf("  %d. %-24s %3d tasks", c.Order+1, c.Title, len(tasks))
			if overdue > 0 {
				line += fmt.Sprintf(", %d overdue", overdue)
			}
			if showIDs {
				line += "  [" + c.ID + "]"
			}
			fmt.Println(line)
		}
	}
	return nil
}

// overdueCount counts tasks past their due date
func overdueCount(doc model.Document, now time.Time) int {
	n := 0
	for i := range doc.Tasks {
		if doc.Tasks[i].IsOverdue(now) {
			n++
		}
	}
	return n
}

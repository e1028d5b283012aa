package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dori/leadboard/internal/app"
	"github.com/dori/leadboard/internal/logging"
	"github.com/dori/leadboard/internal/ui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stderr belongs to the alternate screen
	log, logFile, err := logging.NewFile(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()

	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
	)

	application.Autosaver.OnError(func(err error) {
		p.Send(ui.SaveFailedMsg{Err: err})
	})
	application.Autosaver.OnSaved(func(revision int64) {
		p.Send(ui.SavedMsg{Revision: revision})
	})

	if n := overdueCount(application.Service.Snapshot(), time.Now()); n > 0 {
		if err := application.Notifier.SendOverdue(n); err != nil {
			log.WithError(err).Debug("overdue notification failed")
		}
	}

	_, err = p.Run()
	return err
}

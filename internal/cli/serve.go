package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/leadboard/internal/app"
	"github.com/dori/leadboard/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP lead intake and admin API",
	Long: `Serve the HTTP API.

POST /api/leads is public. The board routes under /api require an HS256
bearer token signed with server.jwt_secret and are disabled without one.`,
	RunE: runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an admin API token",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")

	tokenCmd.Flags().String("name", "", "Display name used for comments")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	log, err := stderrLogger(cfg)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	var auth *server.Auth
	if cfg.Server.JWTSecret != "" {
		auth = server.NewAuth(cfg.Server.JWTSecret)
	}
	srv := server.New(a.Service, auth, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Server.Addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return a.Autosaver.Flush(shutdownCtx)
}

func runToken(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("server.jwt_secret is not set")
	}

	token, err := server.NewAuth(cfg.Server.JWTSecret).IssueToken(args[0], name, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

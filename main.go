// client/main.go
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/vinizap/lumi/client/auth"
	"github.com/vinizap/lumi/client/config"
	"github.com/vinizap/lumi/client/editor"
	"github.com/vinizap/lumi/client/events"
	"github.com/vinizap/lumi/client/filesystem"
	httpclient "github.com/vinizap/lumi/client/http"
	"github.com/vinizap/lumi/client/shell"
	"github.com/vinizap/lumi/client/store"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	log.Debug().
		Str("api", cfg.APIURL).
		Str("state", cfg.StateDir).
		Dur("timeout", cfg.Timeout).
		Msg("starting")

	sh := newShell(cfg, os.Stdin, os.Stdout, shell.TerminalWidth(os.Stdout), log)
	defer sh.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("shell stopped")
		os.Exit(1)
	}
}

// newShell wires the client components together.
func newShell(cfg config.Config, in io.Reader, out io.Writer, width int, log zerolog.Logger) *shell.Shell {
	hub := events.NewHub(log)
	api := httpclient.NewClient(cfg.APIURL, cfg.Timeout, log)
	session := auth.NewSession(filesystem.NewCredentialFile(cfg.CredentialPath()), api, hub, log)
	api.UseTokens(session)

	notes := store.New(api, session, hub, log)

	return shell.New(shell.Config{
		Session: session,
		Auth:    auth.NewView(api, session),
		Store:   notes,
		Form:    editor.NewForm(notes),
		Editor:  editor.NewExternal(filepath.Join(cfg.StateDir, "drafts"), log),
		Hub:     hub,
		In:      in,
		Out:     out,
		Width:   width,
		Log:     log,
	})
}

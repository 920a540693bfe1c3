package cli

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/mchmarny/sprio/pkg/entry"
	urfave "github.com/urfave/cli/v3"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	serverMaxUploadBytes      = 32 << 20

	flagPort      = "port"
	flagNoBrowser = "no-browser"
)

var (
	//go:embed templates/*
	embedFS embed.FS
)

func newServerCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start local HTTP server",
		Action:  cmdStartServer,
		Flags: []urfave.Flag{
			&urfave.IntFlag{
				Name:  flagPort,
				Usage: "Port on which the server will listen (default: from config)",
			},
			&urfave.BoolFlag{
				Name:    flagNoBrowser,
				Aliases: []string{"nb"},
				Usage:   "Do not open browser automatically",
			},
		},
	}
}

// handler carries what the request handlers share.
type handler struct {
	tmpl      *template.Template
	validator *entry.Validator
	workers   int
}

func cmdStartServer(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)
	port := cmd.Int(flagPort)
	if port < 1 {
		port = cfg.Port
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(cfg.Workers),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	url := fmt.Sprintf("http://%s", address)
	slog.Info("server started", "address", url)

	if !cmd.Bool(flagNoBrowser) {
		openBrowser(url)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func makeRouter(workers int) *http.ServeMux {
	h := &handler{
		tmpl:      template.Must(template.New("").ParseFS(embedFS, "templates/*.html")),
		validator: entry.NewValidator(),
		workers:   workers,
	}

	mux := http.NewServeMux()

	// Views
	mux.HandleFunc("GET /{$}", h.homeView)
	mux.HandleFunc("POST /bulk", h.bulkView)
	mux.HandleFunc("POST /single", h.singleView)

	// Reports
	mux.HandleFunc("POST /bulk/report", h.bulkReport)
	mux.HandleFunc("POST /single/report", h.singleReport)
	mux.HandleFunc("GET /download/sample.csv", sampleDownload)
	mux.HandleFunc("GET /download/criteria.xlsx", criteriaDownload)

	// API
	mux.HandleFunc("POST /api/score", h.scoreAPI)
	mux.HandleFunc("GET /api/criteria", criteriaAPI)

	return mux
}

func openBrowser(url string) {
	var cmd string
	args := make([]string, 0, 1)

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
	case "linux":
		cmd = "xdg-open"
	default: // windows
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler"}
	}

	args = append(args, url)
	if err := exec.Command(cmd, args...).Start(); err != nil {
		slog.Error("failed to open browser", "error", err)
	}
}

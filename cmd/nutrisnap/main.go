package main

// Scan a meal photo and inspect the local recency cache:
//   go run ./cmd/nutrisnap analyze -user me ./lunch.jpg
//   go run ./cmd/nutrisnap recent
//   go run ./cmd/nutrisnap clear

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"nutrisnap-backend/internal/bootstrap"
	"nutrisnap-backend/internal/pipeline"
	"nutrisnap-backend/internal/shared/config"
	"nutrisnap-backend/internal/shared/telemetry"
)

const usage = `usage: nutrisnap <command> [flags]

commands:
  analyze [-user ID] FILE   upload, analyze and save a meal photo
  recent                    print the last cached analyses
  clear                     empty the recency cache
`

var errUsage = errors.New("invalid usage")

func main() {
	telemetry.UseConsole(os.Stderr, os.Getenv("NUTRISNAP_DEBUG") != "")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, config.Load); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		telemetry.Error("nutrisnap.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, load func() (config.Config, error)) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "analyze", "recent", "clear":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	cfg, err := load()
	if err != nil {
		return err
	}
	app, err := bootstrap.BuildCLI(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	switch cmd {
	case "analyze":
		return analyze(ctx, app, rest, out)
	case "recent":
		return writeJSON(out, app.Caches.For("").List(ctx))
	default:
		app.Caches.For("").Clear(ctx)
		_, err := fmt.Fprintln(out, "cache cleared")
		return err
	}
}

func analyze(ctx context.Context, app *bootstrap.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userID := fs.String("user", envOr("NUTRISNAP_USER", "local"), "user id that owns the meal record")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: analyze needs exactly one image file", errUsage)
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	res, runErr := app.Pipeline.Run(ctx, *userID, pipeline.Image{
		Data:        data,
		ContentType: http.DetectContentType(data),
		FileName:    filepath.Base(path),
	})
	if runErr != nil && res.Analysis == nil {
		return runErr
	}
	if err := writeJSON(out, resultView(res)); err != nil {
		return err
	}
	return runErr
}

func resultView(res pipeline.Result) map[string]any {
	view := map[string]any{
		"saved":   res.Saved,
		"outcome": res.Outcome,
	}
	if res.MealID != "" {
		view["mealId"] = res.MealID
	}
	if res.ImageURL != "" {
		view["imageUrl"] = res.ImageURL
	}
	if res.Analysis != nil {
		view["analysis"] = res.Analysis
	}
	return view
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

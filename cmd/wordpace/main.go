package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/calumbell/wordpace/internal/config"
	"github.com/calumbell/wordpace/internal/gate"
	"github.com/calumbell/wordpace/internal/gitsource"
	"github.com/calumbell/wordpace/internal/importer"
	"github.com/calumbell/wordpace/internal/lookup"
	"github.com/calumbell/wordpace/internal/metrics"
	"github.com/calumbell/wordpace/internal/policy"
	"github.com/calumbell/wordpace/internal/scheduler"
	"github.com/calumbell/wordpace/internal/storage"
	"github.com/calumbell/wordpace/internal/web"
)

func main() {
	// 1. Define and parse command-line flags
	flags := pflag.NewFlagSet("wordpace", pflag.ExitOnError)
	configPath := flags.String("config", "wordpace.yaml", "Path to the YAML config file")
	flags.String("db.path", "wordpace.db", "Path to the SQLite database file")
	flags.String("server.addr", ":8080", "HTTP listen address")
	importDir := flags.String("import", "", "Content pack directory to import before serving")
	contentRepo := flags.String("content-repo", "", "Git URL of a content pack to sync and import")
	contentDir := flags.String("content-dir", "content", "Local checkout path for --content-repo")
	serve := flags.Bool("serve", true, "Start the HTTP API after any imports")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	// 2. Load configuration (file, environment, flags)
	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 3. Open the database
	db, err := storage.Open(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	slog.Info("Database opened", "path", cfg.DB.Path)

	access, err := cfg.AccessPolicy()
	if err != nil {
		log.Fatalf("Failed to build access policy: %v", err)
	}

	contentGate := gate.New(db, cfg.Seed.Words)
	pol := policy.New(db, access)
	engine := scheduler.New(db, pol, contentGate, cfg.SchedulerParams(), scheduler.NewRand())
	look := lookup.New(db)

	ctx := context.Background()

	// 4. Sync and import content packs when requested
	if *contentRepo != "" {
		if err := gitsource.Sync(*contentRepo, *contentDir); err != nil {
			log.Fatalf("Failed to sync content pack: %v", err)
		}
		importDir = contentDir
	}
	if *importDir != "" {
		im := importer.New(db, contentGate)
		summary, err := im.ImportDir(ctx, *importDir)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		for _, e := range summary.Errors {
			slog.Warn("Import error", "error", e)
		}
		if _, err := pol.RecomputeProgress(ctx); err != nil {
			log.Fatalf("Failed to recompute progress after import: %v", err)
		}
	}

	if !*serve {
		return
	}

	// 5. Serve the JSON API
	m, metricsHandler := metrics.New()
	server := web.NewServer(engine, pol, look, m, metricsHandler)
	slog.Info("Listening", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, server); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

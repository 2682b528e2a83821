package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docvoice/internal/api"
	"docvoice/pkg/audio"
	"docvoice/pkg/config"
	"docvoice/pkg/db"
	"docvoice/pkg/llm"
	"docvoice/pkg/llm/gemini"
	"docvoice/pkg/llm/ollama"
	"docvoice/pkg/llm/prompts"
	"docvoice/pkg/logging"
	"docvoice/pkg/model"
	"docvoice/pkg/narrator"
	"docvoice/pkg/request"
	"docvoice/pkg/store"
	"docvoice/pkg/stt"
	"docvoice/pkg/stt/whisper"
	"docvoice/pkg/tracker"
	"docvoice/pkg/tts"
	openaitts "docvoice/pkg/tts/openai"
	"docvoice/pkg/tts/orpheus"
	"docvoice/pkg/version"
)

var (
	configPath  = flag.String("config", "configs/docvoice.yaml", "Path to config file")
	initConfig  = flag.Bool("init-config", false, "Generate default config file and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
	serve       = flag.Bool("serve", false, "Run the HTTP API server")

	inputPath = flag.String("input", "", "Document to narrate (.pdf, .docx, .txt)")
	text      = flag.String("text", "", "Narrate this text directly, bypassing the model")
	voice     = flag.String("voice", "", "Main narration voice (default from config)")
	modelArg  = flag.String("model", "", "Override the configured LLM model")
	promptArg = flag.String("prompt", "", "Prompt template name (default from config)")
	skipTTS   = flag.Bool("skip-tts", false, "Stop after producing the script and print it")
	dedupe    = flag.Bool("dedupe", false, "Run the repeat-removal pass on the finished narration")
	cleanPath = flag.String("clean", "", "Run only the repeat-removal pass on an existing audio file")
	play      = flag.Bool("play", false, "Play the finished narration")
	volume    = flag.Float64("volume", 1.0, "Playback volume (0.0 to 1.0)")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("docvoice %s\n", version.Version)
		return
	}

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Secrets live in .env during development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("docvoice started", "version", version.Version)

	if *modelArg != "" {
		cfg.LLM.Model = *modelArg
	}

	tr := tracker.New()

	svc, err := buildService(cfg, tr)
	if err != nil {
		return err
	}

	if *serve {
		return runServer(ctx, cfg, svc, tr)
	}
	if *cleanPath != "" {
		return runClean(ctx, svc)
	}
	return runOnce(ctx, cfg, svc)
}

// buildService wires the configured providers into a narration service.
func buildService(cfg *config.Config, tr *tracker.Tracker) (*narrator.Service, error) {
	var llmProv llm.Provider
	switch cfg.LLM.Provider {
	case "gemini":
		logPath := filepath.Join(filepath.Dir(cfg.Log.Server.Path), "llm.log")
		client, err := gemini.NewClient(cfg.LLM, logPath, tr)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		llmProv = client
	case "ollama":
		rc := request.New(tr, logging.RequestLogger)
		llmProv = ollama.NewClient(cfg.LLM, rc, tr)
	case "none", "":
		// Documents are narrated verbatim.
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLM.Provider)
	}

	var ttsProv tts.Provider
	switch cfg.TTS.Engine {
	case "orpheus":
		ttsProv = orpheus.NewProvider(cfg.TTS, tr)
	case "openai":
		ttsProv = openaitts.NewProvider(cfg.TTS, tr)
	case "none":
	default:
		return nil, fmt.Errorf("unknown TTS engine: %s", cfg.TTS.Engine)
	}

	var transcriber stt.Transcriber
	if cfg.STT.Model != "" {
		transcriber = whisper.NewClient(cfg.STT, tr)
	}

	var pm *prompts.Manager
	if llmProv != nil {
		var err error
		pm, err = prompts.NewManager(cfg.Narrator.PromptDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load prompt templates: %w", err)
		}
	}

	return narrator.New(cfg, llmProv, ttsProv, transcriber, pm), nil
}

// runOnce runs a single narration from the command line.
func runOnce(ctx context.Context, cfg *config.Config, svc *narrator.Service) error {
	if *inputPath == "" && *text == "" {
		flag.Usage()
		return fmt.Errorf("either -input or -text is required (or -serve)")
	}

	req := narrator.Request{
		InputPath: *inputPath,
		Text:      *text,
		Voice:     *voice,
		Prompt:    *promptArg,
		SkipTTS:   *skipTTS,
		Dedupe:    *dedupe || cfg.Dedupe.Enabled,
	}

	result, err := svc.Narrate(ctx, req, consoleProgress)
	if err != nil {
		return err
	}

	if *skipTTS {
		fmt.Println(result.Script)
		return nil
	}

	fmt.Printf("Narration written to %s (%s, %d chunks)\n",
		result.OutputPath, formatDuration(result.DurationMs), result.Chunks)
	if result.Dedupe != nil && result.Dedupe.Cleaned {
		fmt.Printf("Removed %d repeated passages (%s)\n",
			len(result.Dedupe.Matches), formatDuration(result.Dedupe.RemovedMs))
	}

	if *play {
		return playFile(result.OutputPath)
	}
	return nil
}

// runClean runs only the repeat-removal pass on an existing audio file.
func runClean(ctx context.Context, svc *narrator.Service) error {
	result, err := svc.Dedupe(ctx, *cleanPath, consoleProgress)
	if err != nil {
		return err
	}

	if !result.Cleaned {
		fmt.Println("No repeated passages found; audio left untouched.")
		return nil
	}

	fmt.Printf("Cleaned audio written to %s (removed %s across %d passages)\n",
		result.OutputPath, formatDuration(result.RemovedMs), len(result.Matches))
	if *play {
		return playFile(result.OutputPath)
	}
	return nil
}

func playFile(path string) error {
	player := audio.NewPlayer()
	player.SetVolume(*volume)

	done := make(chan struct{})
	if err := player.Play(path, func() { close(done) }); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	<-done
	return nil
}

func consoleProgress(ev model.ProgressEvent) {
	fmt.Printf("[%3d%%] %s\n", ev.Percent, ev.Message)
}

// runServer runs the HTTP API with job persistence.
func runServer(ctx context.Context, cfg *config.Config, svc *narrator.Service, tr *tracker.Tracker) error {
	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()

	st := store.NewSQLiteStore(dbConn)
	if err := dbConn.PruneJobs(30 * 24 * time.Hour); err != nil {
		slog.Warn("Failed to prune old jobs", "error", err)
	}

	// Restore the voice preference saved by previous runs.
	if v, ok := st.GetState(ctx, "last_voice"); ok && v != "" {
		cfg.Narrator.UserVoice = v
	}

	runner := narrator.NewRunner(svc, st)

	var pm *prompts.Manager
	if p, err := prompts.NewManager(cfg.Narrator.PromptDir); err == nil {
		pm = p
	} else {
		slog.Warn("Prompt templates unavailable", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewJobsHandler(runner, st),
		api.NewVoicesHandler(pm),
		api.NewStatsHandler(tr),
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func formatDuration(ms int) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/basel-ax/aiimage/internal/config"
	"github.com/basel-ax/aiimage/internal/console"
	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/basel-ax/aiimage/internal/export"
	"github.com/basel-ax/aiimage/internal/infrastructure/fusionbrain"
	"github.com/basel-ax/aiimage/internal/infrastructure/gemini"
	"github.com/basel-ax/aiimage/internal/infrastructure/openai"
	"github.com/basel-ax/aiimage/internal/lib/sl"
	"github.com/basel-ax/aiimage/internal/notify"
	"github.com/basel-ax/aiimage/internal/report"
	"github.com/basel-ax/aiimage/internal/repository"
	"github.com/basel-ax/aiimage/internal/server"
	"github.com/basel-ax/aiimage/internal/service"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"

	shutdownTimeout = 10 * time.Second
)

func main() {
	// Parse command line flags
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	runConsole := flag.Bool("console", false, "Run the interactive console session")
	runServer := flag.Bool("serve", false, "Serve the HTTP API")
	prompt := flag.String("prompt", "", "Generate a single image for this prompt and exit")
	size := flag.String("size", "", "Image size for -prompt (square, portrait, landscape)")
	quality := flag.String("quality", "", "Image quality for -prompt (standard, hd)")
	style := flag.String("style", "", "Image style for -prompt (natural, vivid)")
	download := flag.Bool("download", false, "Save the image generated with -prompt to DOWNLOAD_DIR")
	flag.Parse()

	if !*runConsole && !*runServer && *prompt == "" {
		fmt.Fprintln(os.Stderr, "Please specify a mode: -console, -serve or -prompt \"...\"")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Env, *verbose)
	log.With(
		slog.String("env", cfg.Env),
		slog.String("provider", cfg.Provider),
	).Info("starting aiimage")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.With(slog.String("signal", sig.String())).Info("initiating shutdown")
		cancel()
	}()

	generator, err := newGenerator(ctx, cfg, log)
	if err != nil {
		log.Error("failed to create image generator", sl.Err(err))
		os.Exit(1)
	}

	out := console.SyncWriter(os.Stdout)
	var notifier notify.Notifier = notify.NewLog(log)
	if *runConsole || *prompt != "" {
		notifier = notify.Multi{notify.NewConsole(out), notifier}
	}

	repo := repository.NewMemoryImageRepository()
	defSize, defQuality, defStyle := cfg.Defaults()
	imgService := service.NewImageGenerationService(generator, repo, notifier, log, service.Options{
		DefaultSize:     defSize,
		DefaultQuality:  defQuality,
		DefaultStyle:    defStyle,
		MaxPromptLength: cfg.MaxPromptLength,
		Timeout:         cfg.GenerationTimeout,
	})
	downloader := export.NewDownloader(&http.Client{Timeout: cfg.DownloadTimeout}, cfg.DownloadDir, notifier, log)

	if *prompt != "" {
		in := service.GenerateInput{Prompt: *prompt, Size: *size, Quality: *quality, Style: *style}
		if err := generateOnce(ctx, imgService, downloader, in, *download, out); err != nil {
			os.Exit(1)
		}
		if !*runConsole && !*runServer {
			return
		}
	}

	var wg sync.WaitGroup

	if *runServer {
		srv := server.New(imgService, downloader, log, server.Config{ReadTimeout: cfg.HTTP.ReadTimeout})

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Listen(net.JoinHostPort("", cfg.HTTP.Port)); err != nil {
				log.Error("http server stopped", sl.Err(err))
				cancel()
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("http server shutdown", sl.Err(err))
			}
		}()

		if cfg.ReportSchedule != "" {
			reporter, err := report.New(imgService, repo, log, cfg.ReportSchedule)
			if err != nil {
				log.Error("failed to schedule report", sl.Err(err))
			} else {
				wg.Add(1)
				go func() {
					defer wg.Done()
					reporter.Run(ctx)
				}()
			}
		}
	}

	if *runConsole {
		copier := export.NewCopier(export.SystemClipboard{}, notifier, log, cfg.CopyIndicatorDelay)
		session := console.NewSession(imgService, copier, downloader, out, log)
		if err := session.Run(ctx, os.Stdin); err != nil {
			log.Error("console input", sl.Err(err))
		}
		cancel()
	}

	// Wait for context cancellation
	<-ctx.Done()
	wg.Wait()
	log.Info("shut down gracefully")
}

func setupLogger(env string, verbose bool) *slog.Logger {
	var log *slog.Logger

	// logs go to stderr so they do not interleave with console output
	switch env {
	case envLocal, envDev:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		)
	default:
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		)
	}

	return log
}

func newGenerator(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.ImageGenerator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		log.With(sl.Secret(cfg.OpenAI.APIKey), slog.String("model", cfg.OpenAI.Model)).Debug("using openai")
		return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, nil)
	case config.ProviderGemini:
		log.With(sl.Secret(cfg.Gemini.APIKey), slog.String("model", cfg.Gemini.Model)).Debug("using gemini")
		return gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case config.ProviderFusionBrain:
		log.With(sl.Secret(cfg.FusionBrain.APIKey)).Debug("using fusionbrain")
		return fusionbrain.NewClient(cfg.FusionBrain.APIKey, cfg.FusionBrain.SecretKey, fusionbrain.Options{
			BaseURL:       cfg.FusionBrain.BaseURL,
			CheckInterval: cfg.FusionBrain.CheckInterval,
			MaxAttempts:   cfg.FusionBrain.MaxAttempts,
		})
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// generateOnce runs a single generation, prints the record and optionally saves the file
func generateOnce(
	ctx context.Context,
	svc *service.ImageGenerationService,
	downloader *export.Downloader,
	in service.GenerateInput,
	save bool,
	out io.Writer,
) error {
	img, err := svc.Generate(ctx, in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(img); err != nil {
		return err
	}

	if save {
		path, err := downloader.Save(ctx, *img)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved to %s\n", path)
	}
	return nil
}

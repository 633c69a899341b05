// Package cli implements the klartext command line interface.
//
// The CLI wires the simplification pipeline from file-based configuration
// and exposes it as one-shot commands and a long-running HTTP server.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	cachememory "github.com/klartext/klartext/internal/adapters/driven/cache/memory"
	cachesqlite "github.com/klartext/klartext/internal/adapters/driven/cache/sqlite"
	configfile "github.com/klartext/klartext/internal/adapters/driven/config/file"
	embeddingollama "github.com/klartext/klartext/internal/adapters/driven/embedding/ollama"
	"github.com/klartext/klartext/internal/adapters/driven/provider"
	"github.com/klartext/klartext/internal/adapters/driven/provider/ollama"
	"github.com/klartext/klartext/internal/adapters/driven/provider/openai"
	telemetrylog "github.com/klartext/klartext/internal/adapters/driven/telemetry/log"
	ttshttp "github.com/klartext/klartext/internal/adapters/driven/tts/http"
	"github.com/klartext/klartext/internal/chunker"
	"github.com/klartext/klartext/internal/core/ports/driven"
	"github.com/klartext/klartext/internal/core/ports/driving"
	"github.com/klartext/klartext/internal/core/services"
	"github.com/klartext/klartext/internal/logger"
	"github.com/klartext/klartext/internal/postprocess"
	"github.com/klartext/klartext/internal/verify"
)

// version is set via Execute from the build.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Wired services, shared by all commands. Populated by bootstrap.
var (
	configStore     *configfile.ConfigStore
	settings        configfile.Settings
	simplifyService driving.SimplifyService
	ttsService      driven.TTSService
	providerSet     *provider.Set
	cacheStore      driven.CacheStore
	telemetrySink   *telemetrylog.Sink
	glossary        *postprocess.Glossary
	glossaryCancel  context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "klartext",
	Short: "Simplify complex text into easy language",
	Long: `klartext rewrites complex German and English text into easy language.

Text is split into chunks, each chunk is simplified by a local or remote
language model, verified for fidelity, and recombined. Verified results
are cached so repeated submissions are served instantly.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default: ~/.klartext)")
}

// Execute runs the CLI with the given build version.
func Execute(v string) {
	if v != "" {
		version = v
	}
	defer closeServices()
	if err := rootCmd.Execute(); err != nil {
		closeServices()
		os.Exit(1)
	}
}

// bootstrap wires the full pipeline from configuration. Idempotent, so
// commands can call it without coordinating.
func bootstrap() error {
	if simplifyService != nil {
		return nil
	}

	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	configStore = store
	settings = configfile.LoadSettings(store)

	prompts, err := configfile.NewPromptStore(promptDir())
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	glossary, err = postprocess.LoadGlossary(settings.GlossaryPath)
	if err != nil {
		return fmt.Errorf("load glossary: %w", err)
	}
	if settings.GlossaryPath != "" {
		var watchCtx context.Context
		watchCtx, glossaryCancel = context.WithCancel(context.Background())
		go func() {
			if err := glossary.Watch(watchCtx); err != nil {
				logger.Warn("Glossary watch stopped: %v", err)
			}
		}()
	}

	verifier := verify.New(verifierOptions()...)
	post := postprocess.New(postprocess.WithGlossary(glossary))

	set, warnings, err := provider.NewSet(provider.Settings{
		Local: ollama.Config{
			BaseURL: settings.LocalBaseURL,
			Model:   settings.LocalModel,
			Timeout: settings.CallTimeout,
		},
		Remote: openai.Config{
			APIKey:  settings.RemoteAPIKey,
			BaseURL: settings.RemoteBaseURL,
			Model:   settings.RemoteModel,
			Timeout: settings.CallTimeout,
		},
	}, prompts)
	if err != nil {
		return fmt.Errorf("create providers: %w", err)
	}
	providerSet = set
	for _, w := range warnings {
		logger.Warn("Provider setup: %s", w)
	}

	cacheStore, err = openCache()
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if settings.PolicyVersion > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		removed, err := cacheStore.InvalidateBelow(ctx, settings.PolicyVersion)
		if err != nil {
			logger.Warn("Cache invalidation failed: %v", err)
		} else if removed > 0 {
			logger.Info("Invalidated %d cache entries below policy version %d", removed, settings.PolicyVersion)
		}
	}

	telemetrySink = telemetrylog.NewSink()

	fallbackOpts := []services.FallbackOption{services.WithFallbackTelemetry(telemetrySink)}
	if settings.MaxAttempts > 0 {
		fallbackOpts = append(fallbackOpts, services.WithMaxAttempts(settings.MaxAttempts))
	}
	fallback := services.NewFallbackController(providerSet, post, verifier, fallbackOpts...)

	chunkerOpts := []chunker.Option{}
	if settings.ChunkMaxWords > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithMaxWords(settings.ChunkMaxWords))
	}

	simplifyService = services.NewPipeline(
		chunker.New(chunkerOpts...),
		services.NewRouter(settings.ComplexityThreshold),
		fallback,
		cacheStore,
		services.WithWorkers(settings.Workers),
		services.WithPolicyVersion(settings.PolicyVersion),
		services.WithCacheTTL(settings.CacheTTL),
		services.WithTelemetry(telemetrySink),
	)

	if settings.TTSBaseURL != "" {
		tts, err := ttshttp.New(ttshttp.Config{
			BaseURL: settings.TTSBaseURL,
			Voice:   settings.TTSVoice,
		})
		if err != nil {
			logger.Warn("TTS unavailable: %v", err)
		} else {
			ttsService = tts
		}
	}

	return nil
}

// bootstrapCache wires only the config store and cache backend, for cache
// maintenance commands that never touch providers.
func bootstrapCache() error {
	if cacheStore != nil {
		return nil
	}

	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	configStore = store
	settings = configfile.LoadSettings(store)

	cacheStore, err = openCache()
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	return nil
}

func verifierOptions() []verify.Option {
	var opts []verify.Option
	if len(settings.Denylist) > 0 {
		opts = append(opts, verify.WithDenylist(settings.Denylist))
	}
	if settings.SimilarityWarnFloor > 0 || settings.SimilarityHardFloor > 0 {
		opts = append(opts, verify.WithSimilarityFloors(settings.SimilarityWarnFloor, settings.SimilarityHardFloor))
	}
	if settings.SimilarityEnabled {
		opts = append(opts, verify.WithEmbedder(embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL: settings.EmbeddingBaseURL,
			Model:   settings.EmbeddingModel,
		})))
	}
	return opts
}

func openCache() (driven.CacheStore, error) {
	if settings.CacheBackend == "memory" {
		return cachememory.NewCache(), nil
	}
	return cachesqlite.NewStore(settings.CacheDir)
}

func promptDir() string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "prompts")
}

// closeServices releases everything bootstrap opened. Safe to call when
// bootstrap never ran or failed part way.
func closeServices() {
	if glossaryCancel != nil {
		glossaryCancel()
		glossaryCancel = nil
	}
	if telemetrySink != nil {
		telemetrySink.Flush()
		telemetrySink = nil
	}
	if ttsService != nil {
		ttsService.Close() //nolint:errcheck // Shutdown path
		ttsService = nil
	}
	if providerSet != nil {
		providerSet.Close() //nolint:errcheck // Shutdown path
		providerSet = nil
	}
	if cacheStore != nil {
		cacheStore.Close() //nolint:errcheck // Shutdown path
		cacheStore = nil
	}
	simplifyService = nil
}

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	configfile "github.com/klartext/klartext/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change klartext configuration.

Configuration lives in a TOML file (default: ~/.klartext/config.toml).
Keys use dot notation, e.g. provider.local.model or cache.ttl_hours.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and persist it immediately.

Values are parsed as bool, integer or float when possible, and stored
as strings otherwise.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func openConfigStore() error {
	if configStore != nil {
		return nil
	}
	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	configStore = store
	settings = configfile.LoadSettings(store)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := openConfigStore(); err != nil {
		return err
	}

	cmd.Printf("Configuration file: %s\n\n", configStore.Path())

	cmd.Println("[Pipeline]")
	printIntOr(cmd, "Chunk max words", settings.ChunkMaxWords, "120")
	printIntOr(cmd, "Workers", settings.Workers, "4")
	printIntOr(cmd, "Max attempts", settings.MaxAttempts, "2")
	printIntOr(cmd, "Policy version", settings.PolicyVersion, "1")
	cmd.Println()

	cmd.Println("[Providers]")
	printStringOr(cmd, "Local base URL", settings.LocalBaseURL, "http://localhost:11434")
	printStringOr(cmd, "Local model", settings.LocalModel, "llama3.2")
	printStringOr(cmd, "Remote base URL", settings.RemoteBaseURL, "https://api.openai.com/v1")
	printStringOr(cmd, "Remote model", settings.RemoteModel, "gpt-4o-mini")
	if settings.RemoteAPIKey != "" {
		cmd.Printf("  Remote API key: %s\n", maskAPIKey(settings.RemoteAPIKey))
	} else {
		cmd.Println("  Remote API key: (not set, remote path served locally)")
	}
	cmd.Println()

	cmd.Println("[Cache]")
	printStringOr(cmd, "Backend", settings.CacheBackend, "sqlite")
	if settings.CacheTTL > 0 {
		cmd.Printf("  TTL: %s\n", settings.CacheTTL)
	} else {
		cmd.Println("  TTL: entries never expire")
	}
	cmd.Println()

	cmd.Println("[Verification]")
	if settings.SimilarityEnabled {
		cmd.Println("  Semantic similarity: enabled")
		printStringOr(cmd, "Embedding model", settings.EmbeddingModel, "nomic-embed-text")
	} else {
		cmd.Println("  Semantic similarity: disabled")
	}
	cmd.Println()

	cmd.Println("[Server]")
	printStringOr(cmd, "Address", settings.ServerAddr, ":8080")
	printIntOr(cmd, "Rate limit per minute", settings.RateLimit, "60")
	cmd.Println()

	cmd.Println("[TTS]")
	if settings.TTSBaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.TTSBaseURL)
		printStringOr(cmd, "Voice", settings.TTSVoice, "alloy")
	} else {
		cmd.Println("  Not configured")
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := openConfigStore(); err != nil {
		return err
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %s is not set", args[0])
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := openConfigStore(); err != nil {
		return err
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

// parseValue picks the most specific TOML type for a raw CLI value.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func printStringOr(cmd *cobra.Command, label, value, fallback string) {
	if value == "" {
		cmd.Printf("  %s: %s (default)\n", label, fallback)
		return
	}
	cmd.Printf("  %s: %s\n", label, value)
}

func printIntOr(cmd *cobra.Command, label string, value int, fallback string) {
	if value == 0 {
		cmd.Printf("  %s: %s (default)\n", label, fallback)
		return
	}
	cmd.Printf("  %s: %d\n", label, value)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

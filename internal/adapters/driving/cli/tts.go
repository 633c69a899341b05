package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klartext/klartext/internal/core/domain"
)

var (
	ttsLang    string
	ttsOutFile string
)

var ttsCmd = &cobra.Command{
	Use:   "tts [file]",
	Short: "Convert text to speech",
	Long: `Convert text to speech using the configured synthesis service.

Reads from the given file, or from stdin when no file is given or the
file is "-". Requires tts.base_url to be configured.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTTS,
}

func init() {
	ttsCmd.Flags().StringVarP(&ttsLang, "lang", "l", "de", "text language (de, en)")
	ttsCmd.Flags().StringVarP(&ttsOutFile, "out", "o", "out.mp3", "output audio file")
	rootCmd.AddCommand(ttsCmd)
}

func runTTS(cmd *cobra.Command, args []string) error {
	if err := bootstrap(); err != nil {
		return err
	}
	if ttsService == nil {
		return fmt.Errorf("tts: %w (set tts.base_url)", domain.ErrTTSUnavailable)
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := ttsService.Synthesise(ctx, text, domain.Language(ttsLang))
	if err != nil {
		return fmt.Errorf("synthesise: %w", err)
	}

	if len(result.Audio) == 0 {
		cmd.Printf("Audio available at: %s\n", result.URL)
		return nil
	}

	if err := os.WriteFile(ttsOutFile, result.Audio, 0600); err != nil {
		return fmt.Errorf("write %s: %w", ttsOutFile, err)
	}
	cmd.Printf("Wrote %d bytes to %s\n", len(result.Audio), ttsOutFile)
	return nil
}

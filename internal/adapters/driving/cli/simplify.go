package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klartext/klartext/internal/core/domain"
)

var (
	simplifyTargetLang string
	simplifySourceLang string
	simplifyLevel      string
	simplifyJSON       bool
	simplifyOutFile    string
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify [file]",
	Short: "Simplify a text into easy language",
	Long: `Simplify a text into easy language.

Reads from the given file, or from stdin when no file is given or the
file is "-". The simplified text is written to stdout; warnings go to
stderr so the output stays pipeable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimplify,
}

func init() {
	simplifyCmd.Flags().StringVarP(&simplifyTargetLang, "lang", "l", "de", "target language (de, en)")
	simplifyCmd.Flags().StringVar(&simplifySourceLang, "source", "", "source language (default: auto-detect)")
	simplifyCmd.Flags().StringVar(&simplifyLevel, "level", "easy", "simplification level (very_easy, easy, medium)")
	simplifyCmd.Flags().BoolVar(&simplifyJSON, "json", false, "emit the full response as JSON")
	simplifyCmd.Flags().StringVarP(&simplifyOutFile, "out", "o", "", "write output to file instead of stdout")
	rootCmd.AddCommand(simplifyCmd)
}

func runSimplify(cmd *cobra.Command, args []string) error {
	if err := bootstrap(); err != nil {
		return err
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := simplifyService.Simplify(ctx, domain.SimplifyRequest{
		Text:       text,
		SourceLang: domain.Language(simplifySourceLang),
		TargetLang: domain.Language(simplifyTargetLang),
		Level:      domain.Level(simplifyLevel),
	})
	if err != nil {
		return fmt.Errorf("simplify: %w", err)
	}

	out := cmd.OutOrStdout()
	if simplifyOutFile != "" {
		f, err := os.Create(simplifyOutFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if simplifyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintln(out, resp.SimplifiedText)

	if len(resp.KeyPoints) > 0 {
		header := "Das Wichtigste:"
		if domain.Language(simplifyTargetLang) == domain.LanguageEnglish {
			header = "Key points:"
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, header)
		for _, point := range resp.KeyPoints {
			fmt.Fprintf(out, "- %s\n", point)
		}
	}

	for _, warning := range resp.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}
	return nil
}

// readInput resolves the text source: file argument, "-" or stdin.
func readInput(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read %s: %w", args[0], err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

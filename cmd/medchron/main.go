package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"medchron/internal/llm"
	"medchron/internal/llm/claude"
	"medchron/internal/llm/gemini"
	"medchron/internal/llm/openai"
)

var rootCmd = &cobra.Command{
	Use:   "medchron",
	Short: "Generate verified medical chronologies from OCR-extracted records",
	Long: `medchron turns a directory of OCR-extracted medical record text files into a
chronological narrative, then audits every dated entry against the source
documents that mention the same date.

Configuration is read from MEDCHRON_* environment variables.`,
	SilenceUsage: true,
}

func init() {
	llm.RegisterProvider("claude", claude.Factory)
	llm.RegisterProvider("gemini", gemini.Factory)
	llm.RegisterProvider("openai", openai.Factory)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(providersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("medchron: %v", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"medchron/internal/config"
	"medchron/internal/domain"
	"medchron/internal/service"
)

var (
	runInput  string
	runOutput string
	runLabel  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate and verify a chronology for one input directory",
	Long: `Read every .txt file in the input directory, generate the chronological
narrative batch by batch, verify it against the sources, and write
chronology.txt, verification.txt, summary.json and the findings workbook
into the output directory.`,
	RunE: runChronology,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "Directory of OCR-extracted .txt files (required)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Output directory (default: <MEDCHRON_OUTPUT_DIR>/<run id>)")
	runCmd.Flags().StringVarP(&runLabel, "label", "l", "", "Case label recorded with the run")
	_ = runCmd.MarkFlagRequired("input")
}

func runChronology(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.ErrOrStderr()
	progress := func(e domain.ProgressEvent) {
		switch {
		case e.Total > 0 && e.Message != "":
			fmt.Fprintf(out, "[%s] %d/%d %s\n", e.Phase, e.Current, e.Total, e.Message)
		case e.Total > 0:
			fmt.Fprintf(out, "[%s] %d/%d\n", e.Phase, e.Current, e.Total)
		default:
			fmt.Fprintf(out, "[%s] %s\n", e.Phase, e.Message)
		}
	}

	result, err := a.svc.Generate(ctx, &service.GenerateInput{
		InputDir:  runInput,
		OutputDir: runOutput,
		Label:     runLabel,
	}, progress)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("interrupted: %w", context.Cause(ctx))
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Report.String())
	fmt.Fprintf(cmd.OutOrStdout(), "\nrun %s: %d entries, %d findings, artifacts in %s\n",
		result.Run.ID, result.Run.EntryCount, result.Run.FindingCount, result.Run.OutputDir)
	if result.Run.ArtifactURL != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "chronology link: %s\n", result.Run.ArtifactURL)
	}
	return nil
}

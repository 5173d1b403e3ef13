package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prepress/cmyk2srgb/core"
	"github.com/prepress/cmyk2srgb/utils"
)

var batchCmd = &cobra.Command{
	Use:   "batch INPUT_DIR OUTPUT_DIR",
	Short: "Convert every CMYK image in a directory to sRGB JPEG",
	Long: `batch scans INPUT_DIR (non-recursively) for image files, runs the
single-file conversion contract on each through a worker pool, and writes the
results into OUTPUT_DIR under the input name with the configured extension.

Exit code 0 when no file failed fatally, 1 otherwise.`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Int("workers", 0, "worker count (0 = number of CPUs)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	tool, backend, logger, err := setup(cmd)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	defer backend.Shutdown()

	inputDir, outputDir := args[0], args[1]
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputDir, err)
	}

	var inputs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(inputDir, e.Name())
		if looksLikeImage(path) {
			inputs = append(inputs, path)
		}
	}
	if len(inputs) == 0 {
		logger.Info("no image files found", "dir", inputDir)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers, _ := cmd.Flags().GetInt("workers")
	pool := tool.NewPool(workers, len(inputs))
	pool.Start()
	defer pool.Stop()

	results := make(chan core.BatchResult, len(inputs))
	submitted := 0
	for _, in := range inputs {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		job := core.BatchJob{
			ID:         in,
			Ctx:        ctx,
			InputPath:  in,
			OutputBase: filepath.Join(outputDir, base),
			ResultCh:   results,
		}
		if err := pool.Submit(job); err != nil {
			logger.Error("submit failed", "input", in, "error", err.Error())
			continue
		}
		submitted++
	}

	var converted, skipped, failed int
	for i := 0; i < submitted; i++ {
		res := <-results
		switch {
		case res.Err != nil:
			failed++
		case res.Outcome.Status == core.StatusNotCMYK:
			skipped++
		default:
			converted++
		}
	}

	logger.Info("batch finished",
		"total", submitted,
		"converted", converted,
		"not_cmyk", skipped,
		"failed", failed,
	)
	if failed > 0 {
		exitCode = core.StatusFatal.ExitCode()
	}
	return nil
}

// looksLikeImage sniffs the file header for a known image signature.
func looksLikeImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	return utils.DetectFormat(head[:n]) != string(core.FormatUnknown)
}

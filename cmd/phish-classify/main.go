package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/phish-triage/internal/core"
	"github.com/mikey/phish-triage/internal/di"
	"github.com/mikey/phish-triage/internal/ports"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		// backend failures were already shown by the failure notifier
		if !errors.Is(err, core.ErrRequestFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, logger *zap.Logger, manual *core.ManualSession, presenter ports.Presenter) error {
	defer logger.Sync()

	text, err := readInput(flags.InputFile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to classify")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Debug("Classifying text", zap.Int("size", len(text)))
	startTime := time.Now()
	if err := manual.Classify(ctx, text); err != nil {
		return err
	}
	logger.Debug("Classification complete", zap.Duration("duration", time.Since(startTime)))

	return presenter.RenderClassification(manual.Snapshot())
}

// readInput reads the text from a file, or stdin when path is empty
func readInput(path string) (string, error) {
	var reader io.Reader
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
	} else {
		reader = bufio.NewReader(os.Stdin)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

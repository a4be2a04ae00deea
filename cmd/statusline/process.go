package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/David-Botos/statusline/pkg/audit"
	"github.com/David-Botos/statusline/pkg/batch"
	"github.com/David-Botos/statusline/pkg/cache"
	"github.com/David-Botos/statusline/pkg/cleaner"
	"github.com/David-Botos/statusline/pkg/connector"
	"github.com/David-Botos/statusline/pkg/statusline"
)

func newProcessCmd() *cobra.Command {
	var (
		separator      string
		inputSeparator string
		report         bool
	)

	cmd := &cobra.Command{
		Use:   "process [file...]",
		Short: "Format field sequences read from files or stdin",
		Long: `Each input line holds one photo's fields joined by the input separator.
Empty positions must be kept. One status line is written per input line,
in input order; a line that fails is written empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if separator != "" {
				cfg.Separator = separator
			}
			if inputSeparator == "" {
				inputSeparator = cfg.Separator
			}

			lines, err := readLines(cmd.InOrStdin(), args, inputSeparator)
			if err != nil {
				return err
			}
			return runProcess(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), lines, report)
		},
	}

	cmd.Flags().StringVar(&separator, "sep", "", "Output separator (overrides STATUSLINE_SEPARATOR)")
	cmd.Flags().StringVar(&inputSeparator, "input-sep", "", "Field separator of the input (defaults to the output separator)")
	cmd.Flags().BoolVar(&report, "report", false, "Write a summary report to stderr")

	return cmd
}

func runProcess(ctx context.Context, out, errOut io.Writer, lines [][]string, report bool) error {
	tables, err := loadRuleTables()
	if err != nil {
		return err
	}

	c, err := cleaner.NewCleaner(tables, logger, cleaner.WithPrejoin(cfg.Prejoin))
	if err != nil {
		return err
	}

	formatter, err := statusline.NewFormatter(statusline.LineSettings{
		Separator: cfg.Separator,
		Uniquify:  cfg.Uniquify,
		HideEmpty: cfg.HideEmpty,
	}, c, logger)
	if err != nil {
		return err
	}

	processor, err := batch.NewProcessor(formatter, logger)
	if err != nil {
		return err
	}
	processor.WithWorkerCount(cfg.WorkerPoolSize)

	factory := connector.NewConnectorFactory(cfg, logger)

	if cfg.AuditEnabled {
		pg, err := factory.CreatePostgresConnector(ctx)
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := pg.Validate(ctx); err != nil {
			return err
		}

		store, err := audit.NewStore(ctx, pg.DB(), logger)
		if err != nil {
			return err
		}
		processor.WithRecorder(store)
	}

	if cfg.CacheEnabled {
		client, err := factory.CreateRedisClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		fingerprint, err := tables.Fingerprint()
		if err != nil {
			return err
		}
		scope := cache.Scope{
			Rules:     fingerprint,
			Uniquify:  cfg.Uniquify,
			HideEmpty: cfg.HideEmpty,
			Prejoin:   cfg.Prejoin,
		}
		lineCache, err := cache.NewLineCache(client, scope, cfg.CacheTTL, logger)
		if err != nil {
			return err
		}
		processor.WithCache(lineCache)
	}

	results, summary, runErr := processor.Run(ctx, lines)

	w := bufio.NewWriter(out)
	for _, result := range results {
		fmt.Fprintln(w, result.Text)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if report {
		fmt.Fprint(errOut, summary.Report())
	}
	return runErr
}

// readLines reads field sequences from the named files, or from stdin when none are given
func readLines(stdin io.Reader, paths []string, separator string) ([][]string, error) {
	if len(paths) == 0 {
		return scanLines(stdin, separator)
	}

	var lines [][]string
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		fileLines, err := scanLines(f, separator)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		lines = append(lines, fileLines...)
	}
	return lines, nil
}

func scanLines(r io.Reader, separator string) ([][]string, error) {
	if separator == "" {
		return nil, errors.New("input separator cannot be empty")
	}

	var lines [][]string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, statusline.Split(scanner.Text(), separator))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

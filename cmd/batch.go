package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/plotscout/plotscout-cli/internal/model"
	"github.com/plotscout/plotscout-cli/internal/pipeline"
)

var batchFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many queries from a file, one per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queries, err := readQueries(batchFile)
		if err != nil {
			return err
		}
		if len(queries) == 0 {
			fmt.Fprintln(os.Stderr, "No queries found.")
			return nil
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return processBatch(ctx, queries, cfg.Batch.MaxConcurrentQueries, func(ctx context.Context, query string) *model.ChatResponse {
			return env.Pipeline.Run(ctx, pipeline.Request{Query: query})
		})
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "queries.txt", "file with one query per line")
	rootCmd.AddCommand(batchCmd)
}

// readQueries loads non-empty, non-comment lines from the batch file.
func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open queries file")
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	return queries, eris.Wrap(scanner.Err(), "read queries file")
}

// processBatch runs each query through fn with bounded concurrency. Every
// query owns its own pipeline context; one noisy query never stops the rest.
func processBatch(ctx context.Context, queries []string, concurrency int, fn func(context.Context, string) *model.ChatResponse) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	var withErrors atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, q := range queries {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			resp := fn(ctx, q)
			if len(resp.WorkflowTrace.Errors) > 0 {
				withErrors.Add(1)
			}

			zap.L().Info("batch query done",
				zap.Int("index", i+1),
				zap.String("query", q),
				zap.Int("recommendations", len(resp.Properties)),
				zap.Int("errors", len(resp.WorkflowTrace.Errors)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch interrupted")
	}

	fmt.Printf("Processed %d queries (%d with issues).\n", len(queries), withErrors.Load())
	return nil
}

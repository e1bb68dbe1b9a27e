package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/discogs-harvester/internal/app"
	"github.com/samvad-hq/discogs-harvester/internal/config"
	"github.com/samvad-hq/discogs-harvester/internal/logger"
	"github.com/samvad-hq/discogs-harvester/pkg/discogs"
	"github.com/samvad-hq/discogs-harvester/pkg/jobs"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("lookup", pflag.ContinueOnError)
	page := fs.Int("page", 0, "page number for list resources")
	perPage := fs.Int("per-page", 0, "items per page for list resources (max 100)")
	query := fs.StringArray("query", nil, "search parameter as key=value, repeatable, order is kept")
	out := fs.StringP("out", "o", "", "write the result to this file (required for images)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: lookup <%s> [target] [flags]\n", strings.Join(jobs.Kinds(), "|"))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	job, err := jobFromArgs(fs.Args(), *page, *perPage, *query)
	if err != nil {
		fs.Usage()
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.InitWriter(cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec, err := app.Lookup(ctx, app.NewDiscogsClient(cfg, nil, log), job)
	if err != nil {
		return err
	}

	rl, _ := json.Marshal(rec.RateLimit)
	fmt.Fprintf(os.Stderr, "rate limit: %s\n", rl)

	return app.WriteRecord(os.Stdout, rec, *out)
}

func jobFromArgs(args []string, page, perPage int, query []string) (jobs.Job, error) {
	if len(args) == 0 {
		return jobs.Job{}, fmt.Errorf("missing resource kind")
	}
	job := jobs.Job{ID: "lookup", Kind: args[0]}
	if len(args) > 1 {
		job.Target = jobs.Target(args[1])
	}
	if len(args) > 2 {
		return jobs.Job{}, fmt.Errorf("unexpected arguments %v", args[2:])
	}
	if page > 0 || perPage > 0 {
		job.Pagination = &discogs.Pagination{Page: page, PerPage: perPage}
	}
	for _, kv := range query {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return jobs.Job{}, fmt.Errorf("invalid --query %q (expected key=value)", kv)
		}
		job.Query = append(job.Query, discogs.SearchParam{Key: strings.TrimSpace(k), Value: v})
	}
	return job, nil
}

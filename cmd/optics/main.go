// Command optics clusters a stored dataset with one or more OPTICS parameter
// sets and writes one report per run.
//
// Usage:
//
//	optics -config optics.yaml
//	optics -root ./data -dataset points.csv -max-distance 0.5 -min-points 10 -xi 0.05
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "optics:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := parseArgs(args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return execute(ctx, cfg, stdout)
}

// parseArgs loads the config file named by -config and applies every flag
// that was set explicitly.
func parseArgs(args []string) (Config, error) {
	fs := flag.NewFlagSet("optics", flag.ContinueOnError)

	var (
		configPath  = fs.String("config", "", "YAML configuration file")
		storeKind   = fs.String("store", "", "blob store: local, s3 or minio")
		root        = fs.String("root", "", "local store directory")
		bucket      = fs.String("bucket", "", "s3/minio bucket")
		prefix      = fs.String("prefix", "", "s3/minio key prefix")
		endpoint    = fs.String("endpoint", "", "s3/minio endpoint")
		datasetName = fs.String("dataset", "", "dataset blob name")
		format      = fs.String("format", "", "dataset format: auto, csv, json or jsonl")
		metric      = fs.String("metric", "", "distance metric")
		codecName   = fs.String("codec", "", "report codec: json or go-json")
		reports     = fs.String("reports", "", "report prefix in the store")
		concurrency = fs.Int("concurrency", 0, "parallel runs (0 = GOMAXPROCS)")
		metricsAddr = fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
		logLevel    = fs.String("log-level", "", "debug, info, warn or error")
		logFormat   = fs.String("log-format", "", "text or json")
		maxDistance = fs.Float64("max-distance", 0, "neighborhood radius of a single run")
		minPoints   = fs.Int("min-points", 5, "core point threshold of a single run")
		xi          = fs.Float64("xi", 0.05, "steepness of a single run")
	)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return cfg, err
	}

	var single bool
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "store":
			cfg.Store.Kind = *storeKind
		case "root":
			cfg.Store.Root = *root
		case "bucket":
			cfg.Store.Bucket = *bucket
		case "prefix":
			cfg.Store.Prefix = *prefix
		case "endpoint":
			cfg.Store.Endpoint = *endpoint
		case "dataset":
			cfg.Dataset.Name = *datasetName
		case "format":
			cfg.Dataset.Format = *format
		case "metric":
			cfg.Metric = *metric
		case "codec":
			cfg.Codec = *codecName
		case "reports":
			cfg.Reports = *reports
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "max-distance", "min-points", "xi":
			single = true
		}
	})

	if single {
		cfg.Runs = []RunConfig{{
			Name:        "cli",
			MaxDistance: *maxDistance,
			MinPoints:   *minPoints,
			Xi:          *xi,
		}}
	}

	return cfg, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/optics"
	"github.com/hupe1980/optics/blobstore"
	miniostore "github.com/hupe1980/optics/blobstore/minio"
	s3store "github.com/hupe1980/optics/blobstore/s3"
	"github.com/hupe1980/optics/codec"
	"github.com/hupe1980/optics/dataset"
	"github.com/hupe1980/optics/distance"
	"github.com/hupe1980/optics/progress"
	"github.com/hupe1980/optics/promcollector"
	"github.com/hupe1980/optics/report"
)

// execute loads the dataset, runs every parameter set and stores the reports.
func execute(ctx context.Context, cfg Config, stdout io.Writer) error {
	logger := cfg.Logger()

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	dsOpts, err := cfg.DatasetOptions()
	if err != nil {
		return err
	}
	ds, err := dataset.Load(ctx, store, cfg.Dataset.Name, dsOpts...)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "dataset loaded",
		"dataset", ds.Name,
		"points", ds.Len(),
		"dim", ds.Dim,
		"format", ds.Format.String(),
		"compression", ds.Compression.String(),
	)

	metric, err := distance.ParseMetric(cfg.Metric)
	if err != nil {
		return err
	}
	if ds.Dim < metric.MinDimension() {
		return fmt.Errorf("metric %s needs at least %d dimensions, dataset has %d", metric, metric.MinDimension(), ds.Dim)
	}
	dist, err := distance.Provider(metric)
	if err != nil {
		return err
	}

	sink := progress.Sink(progress.NewLogSink(logger.Logger, ds.Name, cfg.Progress))
	basic := &optics.BasicMetricsCollector{}
	var collector optics.MetricsCollector = basic

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		pc := promcollector.New(reg)
		collector = pc
		sink = progress.Multi(sink, pc.Progress(ds.Name))

		stopMetrics, err := serveMetrics(cfg.MetricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	clusterer, err := optics.New(optics.DistanceFunc[[]float64](dist),
		optics.WithLogger(logger),
		optics.WithMetricsCollector(collector),
		optics.WithProgress(sink),
		optics.WithConcurrency(cfg.Concurrency),
		optics.WithMemoryLimit(cfg.MemoryLimit),
	)
	if err != nil {
		return err
	}

	params := make([]optics.Params, len(cfg.Runs))
	for i, r := range cfg.Runs {
		params[i] = r.Params()
	}

	results, err := clusterer.ClusterBatch(ctx, ds.Vectors(), params)
	if err != nil {
		return err
	}

	cd, _ := codec.ByName(cfg.Codec)

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tMAX DISTANCE\tMIN POINTS\tXI\tCLUSTERS\tNOISE\tREPORT")

	for i, res := range results {
		r, err := report.New(res, ds.IDs())
		if err != nil {
			return err
		}
		r.Name = runName(cfg.Runs[i], i)
		r.Dataset = ds.Name
		r.Metric = metric.String()

		name := report.Path(cfg.Reports, r.RunID)
		if err := report.Write(ctx, store, name, r, cd); err != nil {
			return err
		}

		s := r.Summary()
		fmt.Fprintf(tw, "%s\t%g\t%d\t%g\t%d\t%d\t%s\n",
			r.Name, res.Params.MaxDistance, res.Params.MinPoints, res.Params.Xi, s.Clusters, s.Noise, name)
	}

	if cfg.MetricsAddr == "" {
		st := basic.GetStats()
		logger.DebugContext(ctx, "metrics",
			"runs", st.RunCount,
			"distance_calls", st.DistanceCalls,
			"clusters", st.ClustersFound,
			"noise", st.NoiseItems,
		)
	}

	return tw.Flush()
}

func runName(r RunConfig, i int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("run-%d", i)
}

func openStore(ctx context.Context, cfg StoreConfig) (blobstore.BlobStore, error) {
	switch cfg.Kind {
	case "local", "":
		return blobstore.NewLocalStore(cfg.Root), nil
	case "s3":
		opts := []s3store.Option{s3store.WithPrefix(cfg.Prefix)}
		if cfg.Region != "" {
			opts = append(opts, s3store.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(cfg.Endpoint, cfg.PathStyle))
		}
		return s3store.New(ctx, cfg.Bucket, opts...)
	case "minio":
		access, secret := cfg.AccessKey, cfg.SecretKey
		if access == "" {
			access = os.Getenv("MINIO_ACCESS_KEY")
		}
		if secret == "" {
			secret = os.Getenv("MINIO_SECRET_KEY")
		}
		store, err := miniostore.Dial(cfg.Endpoint, access, secret, cfg.Secure, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// serveMetrics starts the /metrics endpoint and returns its shutdown func.
func serveMetrics(addr string, reg *prometheus.Registry, logger *optics.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

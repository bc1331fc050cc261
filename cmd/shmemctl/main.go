package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"

	"github.com/srediag/plugin-shmem/adapter"
	"github.com/srediag/plugin-shmem/plugin"
	"github.com/srediag/plugin-shmem/pkg/shm"
)

// version displays information and exits successfully (GNU convention)
func version() {
	fmt.Println("shmemctl", plugin.Version, plugin.Revision)
}

func segmentConfig() *shm.Config {
	cfg := shm.DefaultConfig()
	if flagProcessBackend {
		cfg.Backend = shm.NewProcessBackend()
	}
	cfg.AttachRetries = flagRetries
	cfg.CheckHostMemory = !flagNoMemcheck
	return adapter.WithGlobalTelemetry(cfg)
}

func run(ctx context.Context, script io.Reader, stdout io.Writer) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := plugin.NewMetrics(reg)
	if err != nil {
		return err
	}

	tables := plugin.NewTableRegistry()
	class, err := plugin.NewClass(plugin.ClassConfig{
		Tables:  tables,
		Segment: segmentConfig(),
		Metrics: metrics,
	})
	if err != nil {
		return err
	}
	defer class.Close()

	disp, err := plugin.NewDispatcher(ctx, class, flagWorkers)
	if err != nil {
		return err
	}
	defer disp.Close()

	var srv *adapter.Server
	if flagHTTP != "" {
		mux := adapter.NewMux(reg, class, adapter.HealthOptions{Registerer: reg, Namespace: "shmem"})
		if srv, err = adapter.Listen(flagHTTP, mux); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "serving on", srv.Addr())
	}

	if err := NewScript(class, tables, disp, stdout).Run(ctx, script); err != nil {
		return err
	}

	if srv != nil {
		select {
		case <-ctx.Done():
		case err := <-srv.Err():
			return fmt.Errorf("http server: %w", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
	return nil
}

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}
	if flagVersion {
		version()
		os.Exit(0)
	}

	plugin.SetLogLevel(flagLogLevel)
	plugin.SetLogOutput(os.Stderr)

	var script io.Reader = os.Stdin
	if flagFile != "-" {
		f, err := os.Open(flagFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		script = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, script, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

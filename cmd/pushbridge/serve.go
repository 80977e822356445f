package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	pushbridge "github.com/Tap30/pushbridge-go"
	"github.com/Tap30/pushbridge-go/adapters"
)

type serveOptions struct {
	addr         string
	metricsAddr  string
	platform     string
	readyAfter   time.Duration
	emitInterval time.Duration
}

func newServeCmd(c *cli) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the bridge around a simulated push SDK",
		Long: `Serve runs a simulated push SDK that becomes ready after --ready-after and
raises a notification callback every --emit-interval. Hosts connect to the
bridge over websocket at /bridge.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", ":8080", "bridge listen address")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", ":9090", "metrics listen address, empty to disable")
	flags.StringVar(&opts.platform, "platform", "android", "simulated platform: android or ios")
	flags.DurationVar(&opts.readyAfter, "ready-after", 2*time.Second, "delay before the push SDK reports ready")
	flags.DurationVar(&opts.emitInterval, "emit-interval", 5*time.Second, "delay between simulated notifications")
	flags.Bool("hold-events-until-ready", false, "queue events until the push SDK is ready")
	cobra.CheckErr(c.v.BindPFlag(adapters.HoldEventsUntilReadyPreference, flags.Lookup("hold-events-until-ready")))

	return cmd
}

func (c *cli) serve(ctx context.Context, opts *serveOptions) error {
	if opts.emitInterval <= 0 {
		return fmt.Errorf("--emit-interval must be positive")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := adapters.NewPrometheusMetricsAdapter(reg)
	if err != nil {
		return err
	}

	logger := adapters.NewZerologLoggerAdapter(c.logger)
	ready := pushbridge.NewReadyNotifier()
	dev := &device{logger: c.logger}

	// The bridge needs the push service and the simulation needs the
	// bridge, so the dispatcher is bound once both exist.
	var dispatcher lateDispatcher
	var sim simulation
	switch opts.platform {
	case "android":
		sim = newAndroidSimulation(dev, &dispatcher, logger)
	case "ios":
		sim = newIOSSimulation(dev, &dispatcher, logger)
	default:
		return fmt.Errorf("unknown platform %q", opts.platform)
	}

	bridge, err := pushbridge.NewBridge(pushbridge.BridgeConfig{
		Push:           sim.push,
		Preferences:    adapters.NewViperPreferencesAdapter(c.v),
		ReadySignal:    ready,
		LoggerAdapter:  logger,
		MetricsAdapter: metrics,
	})
	if err != nil {
		return err
	}
	dispatcher.target = bridge

	mux := http.NewServeMux()
	mux.Handle("/bridge", bridge.Handler())
	servers := []*http.Server{{Addr: opts.addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}}
	if opts.metricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		servers = append(servers, &http.Server{Addr: opts.metricsAddr, Handler: metricsMux, ReadHeaderTimeout: 5 * time.Second})
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			c.logger.Info().Str("addr", srv.Addr).Msg("Listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		select {
		case <-time.After(opts.readyAfter):
			c.logger.Info().Msg("Push SDK is ready")
			ready.MarkReady()
		case <-ctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		return sim.run(ctx, opts.emitInterval)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := bridge.Dispose()
		for _, srv := range servers {
			err = errors.Join(err, srv.Shutdown(shutdownCtx))
		}
		c.logger.Info().Int("queued", bridge.Broker().Len()).Msg("Bridge stopped")
		return err
	})

	return g.Wait()
}

// lateDispatcher forwards to a dispatcher bound after construction.
type lateDispatcher struct {
	target interface {
		Dispatch(name adapters.EventName, payload any) error
	}
}

func (d *lateDispatcher) Dispatch(name adapters.EventName, payload any) error {
	if d.target == nil {
		return errors.New("bridge not started")
	}
	return d.target.Dispatch(name, payload)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ghgcli/internal/config"
	"ghgcli/internal/files"
	"ghgcli/internal/infrastructure"
	"ghgcli/internal/services"
	"ghgcli/internal/validation"
	"ghgcli/internal/watch"
	"ghgcli/pkg/contracts/events"
)

type watchOptions struct {
	inbox       string
	outbox      string
	backfill    bool
	strict      bool
	settle      time.Duration
	metricsAddr string
	factor      factorFlags
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	o := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Write a report for every dataset dropped into an inbox directory",
		Long: `Watches the inbox for .xlsx, .xlsm and .csv datasets and writes
<name>_report.xlsx into the outbox for each one. Runs until interrupted.`,
		Example: `  ghgreport watch --inbox ./inbox --outbox ./outbox
  ghgreport watch --inbox /srv/ghg/in --outbox /srv/ghg/out --metrics-addr :9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, root, o)
		},
	}

	cmd.Flags().StringVar(&o.inbox, "inbox", "", "directory to watch (default: configured inbox)")
	cmd.Flags().StringVar(&o.outbox, "outbox", "", "directory reports are written to (default: configured outbox)")
	cmd.Flags().BoolVar(&o.backfill, "backfill", true, "process datasets already in the inbox on start")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "reject negative consumption and factors")
	cmd.Flags().DurationVar(&o.settle, "settle", watch.DefaultSettle, "how long a file must be unchanged before it is read")
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	o.factor.register(cmd)

	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, o *watchOptions) error {
	paths, err := config.ResolvePaths(root.cfg, "")
	if err != nil {
		return err
	}
	if o.inbox == "" {
		o.inbox = paths.InboxDir
	}
	if o.outbox == "" {
		o.outbox = paths.OutboxDir
	}
	if !cmd.Flags().Changed("backfill") {
		o.backfill = root.cfg.Watch.Backfill
	}

	validator := validation.NewFileValidator(root.logger)
	if err := files.EnsureDirectory(o.inbox); err != nil {
		return err
	}
	if _, err := validator.ValidateInputDirectory(o.inbox); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(o.outbox); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := infrastructure.NoopBusinessMetrics()
	var providers *infrastructure.OTelProviders
	if o.metricsAddr != "" {
		providers, err = infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), root.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
		defer func() { _ = providers.Shutdown(context.Background()) }()

		if metrics, err = infrastructure.CreateBusinessMetrics(providers.Meter); err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
	}

	svc := root.newReportService(root.cfg.Emissions.Strict || o.strict, services.WithMetrics(metrics))
	watcher := watch.New(watch.Config{
		InboxDir:  o.inbox,
		OutboxDir: o.outbox,
		Backfill:  o.backfill,
		Settle:    o.settle,
		Factor:    o.factor.resolve(cmd, root.cfg),
	}, svc, root.logger,
		watch.WithPublisher(&linePublisher{w: cmd.OutOrStdout()}),
		watch.WithMetrics(metrics),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return watcher.Run(gctx)
	})

	if providers != nil && providers.PrometheusHTTP != nil {
		srv := &http.Server{
			Addr:              o.metricsAddr,
			Handler:           providers.PrometheusHTTP,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// linePublisher prints one line per watcher outcome
type linePublisher struct {
	w io.Writer
}

func (p *linePublisher) Publish(_ context.Context, messageType events.MessageType, data interface{}) {
	evt, ok := data.(events.WatchProcessed)
	if !ok || messageType != events.MessageTypeWatchProcessed {
		return
	}
	if evt.Error != "" {
		fmt.Fprintf(p.w, "%-9s %s: %s\n", evt.Status, evt.Input, evt.Error)
		return
	}
	fmt.Fprintf(p.w, "%-9s %s -> %s\n", evt.Status, evt.Input, evt.Output)
}

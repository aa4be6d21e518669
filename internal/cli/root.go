package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ghgcli/internal/config"
	"ghgcli/internal/infrastructure"
	"ghgcli/internal/services"
	"ghgcli/pkg/contracts/domain"
)

// rootOptions carries the state the persistent pre-run prepares for every
// subcommand
type rootOptions struct {
	configFile string
	logLevel   string
	debug      bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd creates the ghgreport command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ghgreport",
		Short: "Scope 2 emissions calculator and compliance reporter",
		Long: `ghgreport converts electricity consumption into tCO2e, classifies the
total against the regulatory reporting thresholds and exports a two-sheet
Excel report.`,
		Version:       version,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ghg.yaml or configs/ghg.yaml when present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newEvaluateCmd(opts),
		newTiersCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
	)

	return cmd
}

const rootCmdExample = `  # Evaluate a workbook with the default grid factor
  ghgreport evaluate --input consumo_2024.xlsx

  # Use a supplier-specific factor and check the written workbook
  ghgreport evaluate --input consumo.csv --factor 0.31 --source "supplier PPA" --verify

  # Show the compliance tiers
  ghgreport tiers

  # Serve the HTTP API
  ghgreport serve --port 8080

  # Turn every dataset dropped into ./inbox into a report in ./outbox
  ghgreport watch --inbox ./inbox --outbox ./outbox`

// load reads the configuration and builds the command logger. Logs go
// to stderr so report output on stdout stays clean.
func (o *rootOptions) load(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFrom(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	if o.debug {
		level = "debug"
	}

	o.cfg = cfg
	o.logger = infrastructure.NewLogger(level, cmd.ErrOrStderr())
	return nil
}

// newReportService builds a report service from the loaded configuration
func (o *rootOptions) newReportService(strict bool, opts ...services.Option) *services.ReportService {
	return services.NewReportService(services.ReportServiceConfig{
		DefaultFactor: o.cfg.Emissions.Factor(),
		Thresholds:    o.cfg.Compliance.Thresholds(),
		Strict:        strict,
		FileName:      o.cfg.Report.FileName,
	}, o.logger, opts...)
}

// factorFlags holds the --factor and --source flags shared by evaluate and watch
type factorFlags struct {
	value  float64
	source string
}

func (f *factorFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.value, "factor", domain.DefaultEmissionFactor, "emission factor in tCO2e/MWh")
	cmd.Flags().StringVar(&f.source, "source", "", "provenance of the emission factor")
}

// resolve returns nil when neither flag was set so the configured
// default applies. A source alone relabels the default value.
func (f *factorFlags) resolve(cmd *cobra.Command, cfg *config.Config) *domain.EmissionFactor {
	valueSet := cmd.Flags().Changed("factor")
	sourceSet := cmd.Flags().Changed("source")
	if !valueSet && !sourceSet {
		return nil
	}

	factor := cfg.Emissions.Factor()
	if valueSet {
		factor.Value = f.value
		factor.Source = ""
	}
	if sourceSet {
		factor.Source = f.source
	}
	return &factor
}

// isWriterTerminal reports whether w is an interactive terminal
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

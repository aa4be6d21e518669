package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ghgcli/internal/emissions"
	"ghgcli/internal/exporter"
	"ghgcli/internal/infrastructure"
	"ghgcli/internal/validation"
	api "ghgcli/pkg/contracts/api/v1"
	"ghgcli/pkg/contracts/domain"
	"ghgcli/pkg/contracts/events"
)

var (
	// ErrTierReached is returned by evaluate --fail-on when the dataset
	// classifies at or above the given tier
	ErrTierReached = errors.New("compliance tier reached")

	// ErrVerifyFailed is returned when the written workbook does not
	// read back to the evaluated figures
	ErrVerifyFailed = errors.New("report verification failed")
)

type evaluateOptions struct {
	input   string
	out     string
	strict  bool
	verify  bool
	jsonOut bool
	failOn  string
	factor  factorFlags
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	o := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a consumption dataset and write the report workbook",
		Long: `Reads an .xlsx, .xlsm or .csv consumption table (month, plant and kWh
columns), computes the emissions of every row, classifies the total and
writes the two-sheet report workbook.`,
		Example: `  ghgreport evaluate --input consumo.xlsx
  ghgreport evaluate --input consumo.csv --out reports/2024.xlsx --verify
  ghgreport evaluate --input consumo.csv --json --fail-on watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, root, o)
		},
	}

	cmd.Flags().StringVarP(&o.input, "input", "i", "", "consumption dataset (.xlsx, .xlsm or .csv)")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "report path (default: configured report file name)")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "reject negative consumption and factors")
	cmd.Flags().BoolVar(&o.verify, "verify", false, "read the written workbook back and compare it with the evaluation")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "print the evaluation as JSON instead of a summary")
	cmd.Flags().StringVar(&o.failOn, "fail-on", "", "exit with an error when the tier is at least this one (voluntary, watch, mandatory)")
	o.factor.register(cmd)
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runEvaluate(cmd *cobra.Command, root *rootOptions, o *evaluateOptions) error {
	failOn, err := parseTier(o.failOn)
	if err != nil {
		return err
	}

	out := o.out
	if out == "" {
		out = root.cfg.Report.FileName
	}
	if err := validation.NewFileValidator(root.logger).ValidateReportPath(out); err != nil {
		return err
	}

	ctx := infrastructure.EnsureTraceID(cmd.Context())
	svc := root.newReportService(root.cfg.Emissions.Strict || o.strict)

	eval, err := svc.EvaluateFile(ctx, o.input, o.factor.resolve(cmd, root.cfg))
	if err != nil {
		return err
	}

	doc, err := svc.Export(ctx, eval, events.SourceCLI)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, doc.Data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	root.logger.InfoContext(ctx, "Report written",
		slog.String("output", out),
		slog.String("tier", string(eval.Result.Tier)))

	if o.verify {
		if err := verifyReport(doc.Data, eval); err != nil {
			return err
		}
	}

	if o.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(api.NewEvaluationResponse(eval, emissions.TotalsByPlant(eval.Records))); err != nil {
			return err
		}
	} else if err := renderEvaluation(cmd.OutOrStdout(), eval, out, o.verify); err != nil {
		return err
	}

	if failOn != "" && eval.Result.Tier.Severity() >= failOn.Severity() {
		return fmt.Errorf("%w: %s", ErrTierReached, eval.Result.Tier)
	}
	return nil
}

// parseTier accepts a tier name in any case; empty means none
func parseTier(name string) (domain.ComplianceTier, error) {
	if name == "" {
		return "", nil
	}
	tier := domain.ComplianceTier(strings.ToUpper(strings.TrimSpace(name)))
	if !tier.Valid() {
		return "", fmt.Errorf("unknown tier %q: must be one of voluntary, watch, mandatory", name)
	}
	return tier, nil
}

// verifyReport reads the workbook back and checks it carries the
// evaluated records, total and status
func verifyReport(data []byte, eval *domain.Evaluation) error {
	report, err := exporter.ReadReport(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerifyFailed, err)
	}
	if len(report.Records) != len(eval.Records) {
		return fmt.Errorf("%w: %d records in workbook, %d evaluated", ErrVerifyFailed, len(report.Records), len(eval.Records))
	}
	if !closeEnough(report.Summary.Total, eval.Total) {
		return fmt.Errorf("%w: total %v in workbook, %v evaluated", ErrVerifyFailed, report.Summary.Total, eval.Total)
	}
	if report.Summary.Status != eval.Result.Label {
		return fmt.Errorf("%w: status %q in workbook, %q evaluated", ErrVerifyFailed, report.Summary.Status, eval.Result.Label)
	}
	return nil
}

func closeEnough(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ghgcli/internal/compliance"
	"ghgcli/internal/emissions"
	"ghgcli/pkg/contracts/domain"
)

const boxWidth = 64

// styleColor maps an alert style to a terminal color
func styleColor(style domain.AlertStyle) lipgloss.Color {
	switch style {
	case domain.AlertError:
		return lipgloss.Color("196") // Red
	case domain.AlertWarning:
		return lipgloss.Color("214") // Orange
	default:
		return lipgloss.Color("42") // Green
	}
}

// renderEvaluation writes the evaluation summary, boxed and colored by
// tier on a terminal and as plain text otherwise
func renderEvaluation(w io.Writer, eval *domain.Evaluation, reportPath string, verified bool) error {
	lines := evaluationLines(eval, reportPath, verified)

	if !isWriterTerminal(w) {
		_, err := fmt.Fprintf(w, "EMISSIONS REPORT\n================\n%s\n", strings.Join(lines, "\n"))
		return err
	}

	color := styleColor(eval.Result.Tier.AlertStyle())
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(boxWidth)

	var content strings.Builder
	content.WriteString(titleStyle.Render("EMISSIONS REPORT · " + string(eval.Result.Tier)))
	content.WriteString("\n\n")
	content.WriteString(strings.Join(lines, "\n"))

	_, err := fmt.Fprintln(w, boxStyle.Render(content.String()))
	return err
}

func evaluationLines(eval *domain.Evaluation, reportPath string, verified bool) []string {
	lines := []string{
		fmt.Sprintf("Records:          %d", len(eval.Records)),
		fmt.Sprintf("Emission factor:  %s tCO2e/MWh", eval.Factor),
		fmt.Sprintf("Total emissions:  %s tCO2e", compliance.FormatTonnes(eval.Total, 2)),
		fmt.Sprintf("Status:           %s (%s)", eval.Result.Label, eval.Result.Tier),
		"",
		eval.Result.Message,
	}

	totals := emissions.TotalsByPlant(eval.Records)
	if len(totals) > 0 {
		plants := make([]string, 0, len(totals))
		for p := range totals {
			plants = append(plants, p)
		}
		sort.Strings(plants)

		lines = append(lines, "", "By plant:")
		for _, p := range plants {
			lines = append(lines, fmt.Sprintf("  %-20s %12s tCO2e", p, compliance.FormatTonnes(totals[p], 2)))
		}
	}

	lines = append(lines, "", "Report: "+reportPath)
	if verified {
		lines = append(lines, "Verified: workbook matches the evaluation")
	}
	return lines
}

// renderTiers writes the compliance legend
func renderTiers(w io.Writer, legend []domain.TierDescription, thresholds compliance.Thresholds, factor domain.EmissionFactor) error {
	header := fmt.Sprintf("%-10s  %-24s  %s", "TIER", "RANGE", "LABEL")
	rows := make([]string, 0, len(legend))
	for _, d := range legend {
		rows = append(rows, fmt.Sprintf("%-10s  %-24s  %s", d.Tier, d.Range, d.Label))
	}
	footer := []string{
		fmt.Sprintf("Watch threshold:     %s tCO2e/year", compliance.FormatTonnes(thresholds.Watch, 0)),
		fmt.Sprintf("Mandatory threshold: %s tCO2e/year", compliance.FormatTonnes(thresholds.Mandatory, 0)),
		fmt.Sprintf("Default factor:      %s tCO2e/MWh", factor),
	}

	if !isWriterTerminal(w) {
		_, err := fmt.Fprintf(w, "%s\n%s\n\n%s\n", header, strings.Join(rows, "\n"), strings.Join(footer, "\n"))
		return err
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	var b strings.Builder
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	for i, d := range legend {
		b.WriteString(lipgloss.NewStyle().Foreground(styleColor(d.Style)).Render(rows[i]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Render(strings.Join(footer, "\n")))

	_, err := fmt.Fprintln(w, b.String())
	return err
}

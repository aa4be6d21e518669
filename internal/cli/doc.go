// Package cli implements the ghgreport command line.
//
//	ghgreport evaluate --input consumo.xlsx [--out report.xlsx] [--verify]
//	ghgreport tiers [--json]
//	ghgreport serve [--port 8080] [--watch]
//	ghgreport watch [--inbox DIR] [--outbox DIR]
//
// Results go to stdout and logs to stderr. Summaries are drawn with
// lipgloss when stdout is a terminal and as plain text otherwise.
package cli

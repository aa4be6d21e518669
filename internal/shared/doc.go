// Package shared holds helpers used across packages that belong to no
// single domain layer. The testutil subpackage provides captured slog
// loggers and consumption table fixtures for tests.
package shared

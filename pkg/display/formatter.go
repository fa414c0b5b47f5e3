package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// New creates a new formatter based on configuration.
func New(cfg Config) Formatter {
	if cfg.Format == "" {
		cfg.Format = FormatTable
	}
	if cfg.Currency == "" {
		cfg.Currency = "£"
	}

	switch cfg.Format {
	case FormatJSON:
		return &jsonFormatter{config: cfg}
	case FormatSimple:
		return &simpleFormatter{config: cfg}
	case FormatTable:
		fallthrough
	default:
		return &tableFormatter{config: cfg}
	}
}

// ParseFormat normalizes a format name, defaulting to table.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON
	case FormatSimple:
		return FormatSimple
	default:
		return FormatTable
	}
}

// formatFloat formats a float with the given precision.
func formatFloat(f float64, precision int) string {
	return strconv.FormatFloat(f, 'f', precision, 64)
}

// formatKwh renders an energy amount.
func formatKwh(f float64) string {
	return formatFloat(f, 1) + " kWh"
}

// money renders an amount with the configured currency symbol.
func (c Config) money(f float64) string {
	if f < 0 {
		return "-" + c.Currency + formatFloat(-f, 2)
	}
	return c.Currency + formatFloat(f, 2)
}

// writeHeader writes a section header.
func writeHeader(w io.Writer, title string, compact bool) error {
	if compact {
		_, err := fmt.Fprintf(w, "%s\n", title)
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s\n%s\n\n", title, strings.Repeat("=", len(title)))
	return err
}

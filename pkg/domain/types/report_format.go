package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ReportFormat selects the renderer of a project report
type ReportFormat string

const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatTOML ReportFormat = "toml"
	ReportFormatYAML ReportFormat = "yaml"
)

// AllReportFormats returns all supported report formats
func AllReportFormats() []ReportFormat {
	return []ReportFormat{
		ReportFormatJSON,
		ReportFormatCSV,
		ReportFormatTOML,
		ReportFormatYAML,
	}
}

// String returns the string representation of the report format
func (f ReportFormat) String() string {
	return string(f)
}

// ParseReportFormat parses a case-insensitive format name. Empty means JSON.
func ParseReportFormat(s string) (ReportFormat, error) {
	if s == "" {
		return ReportFormatJSON, nil
	}
	f := ReportFormat(strings.ToLower(s))
	for _, v := range AllReportFormats() {
		if f == v {
			return f, nil
		}
	}
	return "", goerr.Wrap(ErrInvalidArgument, "unsupported report format", goerr.V(ValueKey, s))
}

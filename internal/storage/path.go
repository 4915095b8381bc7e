package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildReportFilePath places a report file under a stable per-client layout:
// <client>/<year>/<month>/<basename>. The basename keeps its extension so the
// loader can pick a decoder.
func BuildReportFilePath(clientName string, year int, month, fileName string) (string, error) {
	clientName = strings.ToLower(strings.TrimSpace(clientName))
	if err := validatePathComponent(clientName, "client name"); err != nil {
		return "", err
	}
	if year < 2000 || year > 2100 {
		return "", fmt.Errorf("invalid year: %d", year)
	}
	if err := validatePathComponent(month, "month"); err != nil {
		return "", err
	}
	if err := validatePathComponent(fileName, "file name"); err != nil {
		return "", err
	}
	return path.Join(clientName, fmt.Sprintf("%04d", year), month, fileName), nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}

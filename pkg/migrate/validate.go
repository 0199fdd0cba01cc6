package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var migrationFilename = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks that every .sql file in dir follows the naming convention
// and carries both goose section headers. Duplicate versions are rejected.
func ValidateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	seen := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		m := migrationFilename.FindStringSubmatch(entry.Name())
		if m == nil {
			return fmt.Errorf("migration %s does not match <YYYYMMDDHHMMSS>_<name>.sql", entry.Name())
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s (%s and %s)", version, prev, entry.Name())
		}
		seen[version] = entry.Name()

		body, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		content := string(body)
		if !strings.Contains(content, "-- +goose Up") {
			return fmt.Errorf("migration %s is missing the '-- +goose Up' section", entry.Name())
		}
		if !strings.Contains(content, "-- +goose Down") {
			return fmt.Errorf("migration %s is missing the '-- +goose Down' section", entry.Name())
		}
	}
	return nil
}

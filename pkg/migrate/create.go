package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

const migrationTemplate = `-- +goose Up
-- SQL in this section is executed when the migration is applied.


-- +goose Down
-- SQL in this section is executed when the migration is rolled back.
`

// CreateSQLMigration writes an empty timestamped migration file into dir.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}

	sanitized := strings.ToLower(strings.TrimSpace(name))
	sanitized = strings.ReplaceAll(sanitized, " ", "_")
	sanitized = strings.ReplaceAll(sanitized, "-", "_")
	sanitized = nameSanitizer.ReplaceAllString(sanitized, "")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		return "", fmt.Errorf("name %q contains no usable characters", name)
	}

	version := time.Now().UTC().Format("20060102150405")
	filename := fmt.Sprintf("%s_%s.sql", version, sanitized)
	path := filepath.Join(dir, filename)

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration %s already exists", filename)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(migrationTemplate), 0o644); err != nil {
		return "", fmt.Errorf("write migration: %w", err)
	}
	return path, nil
}

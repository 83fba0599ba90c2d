package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

const (
	markUp    = "-- +goose Up"
	markDown  = "-- +goose Down"
	markBegin = "-- +goose StatementBegin"
	markEnd   = "-- +goose StatementEnd"
)

var (
	fileNameRe  = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	nonSlugRune = regexp.MustCompile(`[^a-z0-9]+`)
)

// CreateSQLMigration writes an empty Up/Down pair named
// <dir>/<UTC timestamp>_<slug>.sql and returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	slug := strings.Trim(nonSlugRune.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, time.Now().UTC().Format(versionLayout)+"_"+slug+".sql")
	body := strings.Join([]string{
		markUp, markBegin, "-- " + slug, markEnd, "",
		markDown, markBegin, "-- revert " + slug, markEnd, "",
	}, "\n")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration: %w", err)
	}
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return "", fmt.Errorf("write migration: %w", err)
	}
	return path, f.Close()
}

// ValidateDir checks every .sql file in dir for a well-formed name, a unique
// version and balanced goose annotations.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	versions := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}
		match := fileNameRe.FindStringSubmatch(name)
		if match == nil {
			return fmt.Errorf("%s: name must look like %s_description.sql", name, versionLayout)
		}
		if other, dup := versions[match[1]]; dup {
			return fmt.Errorf("%s: version %s already used by %s", name, match[1], other)
		}
		versions[match[1]] = name

		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := checkAnnotations(string(raw)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func checkAnnotations(sql string) error {
	for _, mark := range []string{markUp, markDown} {
		if !strings.Contains(sql, mark) {
			return fmt.Errorf("missing %q", mark)
		}
	}
	if b, e := strings.Count(sql, markBegin), strings.Count(sql, markEnd); b != e {
		return fmt.Errorf("%d StatementBegin vs %d StatementEnd", b, e)
	}
	return nil
}

package migration

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// fileNamePattern matches {version}_{description}.sql.
var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

const descriptionHeader = "-- Description:"

// Scan reads every migration script in the root of fsys and returns them
// ordered by version. Files that do not end in .sql are ignored; .sql files
// that do not follow the naming convention are an error.
func Scan(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, newMigrationError(0, ".", "read directory", err)
	}

	var migrations []Migration
	seen := make(map[int]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		m, err := parseFile(fsys, entry.Name())
		if err != nil {
			return nil, err
		}

		if existing, ok := seen[m.Version]; ok {
			return nil, newMigrationError(m.Version, entry.Name(), "check duplicates",
				fmt.Errorf("%w: %s and %s", ErrDuplicateVersion, existing, entry.Name()))
		}
		seen[m.Version] = entry.Name()
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func parseFile(fsys fs.FS, name string) (Migration, error) {
	matches := fileNamePattern.FindStringSubmatch(name)
	if matches == nil {
		return Migration{}, newMigrationError(0, name, "validate filename",
			fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigrationFile, name))
	}

	version, err := strconv.Atoi(matches[1])
	if err != nil || version <= 0 {
		return Migration{}, newMigrationError(0, name, "validate filename",
			fmt.Errorf("%w: version %q must be a positive number", ErrInvalidMigrationFile, matches[1]))
	}

	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Migration{}, newMigrationError(version, name, "read file", err)
	}

	sqlText := string(content)
	if len(splitStatements(sqlText)) == 0 {
		return Migration{}, newMigrationError(version, name, "validate content",
			fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
	}

	description := descriptionFromContent(sqlText)
	if description == "" {
		description = strings.ReplaceAll(matches[2], "_", " ")
	}

	return Migration{
		Version:     version,
		Description: description,
		SQL:         sqlText,
		FilePath:    path.Clean(name),
		Checksum:    checksum(sqlText),
	}, nil
}

func descriptionFromContent(sqlText string) string {
	for _, line := range strings.Split(sqlText, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, descriptionHeader) {
			return strings.TrimSpace(strings.TrimPrefix(line, descriptionHeader))
		}
	}
	return ""
}

func checksum(sqlText string) string {
	sum := blake2b.Sum256([]byte(sqlText))
	return hex.EncodeToString(sum[:])
}

// splitStatements splits a script on semicolons and drops comment-only lines.
// Scripts must not contain semicolons inside string literals or triggers.
func splitStatements(sqlText string) []string {
	var statements []string
	for _, raw := range strings.Split(sqlText, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}

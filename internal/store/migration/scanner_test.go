package migration

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name          string
		files         map[string]string
		expectedOrder []int
		expectedErr   error
	}{
		{
			name: "multiple files sorted by version",
			files: map[string]string{
				"003_add_indexes.sql":    "CREATE INDEX idx_plan_name ON plan(name);",
				"001_initial_schema.sql": "CREATE TABLE plan (id INTEGER PRIMARY KEY);",
				"002_add_users.sql":      "CREATE TABLE plan_user (id INTEGER PRIMARY KEY);",
			},
			expectedOrder: []int{1, 2, 3},
		},
		{
			name:          "empty source",
			files:         map[string]string{},
			expectedOrder: nil,
		},
		{
			name: "non-SQL files are ignored",
			files: map[string]string{
				"001_initial_schema.sql": "CREATE TABLE plan (id INTEGER PRIMARY KEY);",
				"README.md":              "# migrations",
				"embed.go":               "package migrations",
			},
			expectedOrder: []int{1},
		},
		{
			name: "invalid filename",
			files: map[string]string{
				"initial.sql": "CREATE TABLE plan (id INTEGER PRIMARY KEY);",
			},
			expectedErr: ErrInvalidMigrationFile,
		},
		{
			name: "zero version",
			files: map[string]string{
				"000_initial.sql": "CREATE TABLE plan (id INTEGER PRIMARY KEY);",
			},
			expectedErr: ErrInvalidMigrationFile,
		},
		{
			name: "comment-only script",
			files: map[string]string{
				"001_empty.sql": "-- nothing here\n",
			},
			expectedErr: ErrInvalidMigrationFile,
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_initial.sql": "CREATE TABLE plan (id INTEGER PRIMARY KEY);",
				"01_again.sql":    "CREATE TABLE other (id INTEGER PRIMARY KEY);",
			},
			expectedErr: ErrDuplicateVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for name, content := range tt.files {
				fsys[name] = &fstest.MapFile{Data: []byte(content)}
			}

			migrations, err := Scan(fsys)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("Scan() error = %v, want %v", err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Scan() unexpected error: %v", err)
			}

			if len(migrations) != len(tt.expectedOrder) {
				t.Fatalf("Scan() returned %d migrations, want %d", len(migrations), len(tt.expectedOrder))
			}
			for i, version := range tt.expectedOrder {
				if migrations[i].Version != version {
					t.Errorf("migrations[%d].Version = %d, want %d", i, migrations[i].Version, version)
				}
				if migrations[i].Checksum == "" {
					t.Errorf("migrations[%d].Checksum is empty", i)
				}
			}
		})
	}
}

func TestScan_Description(t *testing.T) {
	fsys := fstest.MapFS{
		"001_initial_schema.sql": {Data: []byte("-- Description: Create plan tables\nCREATE TABLE plan (id INTEGER);")},
		"002_add_user_dates.sql": {Data: []byte("CREATE TABLE user_date (id INTEGER);")},
	}

	migrations, err := Scan(fsys)
	if err != nil {
		t.Fatalf("Scan() unexpected error: %v", err)
	}

	if got := migrations[0].Description; got != "Create plan tables" {
		t.Errorf("header description = %q", got)
	}
	if got := migrations[1].Description; got != "add user dates" {
		t.Errorf("filename description = %q", got)
	}
}

func TestSplitStatements(t *testing.T) {
	script := `-- Description: two tables
CREATE TABLE a (
	id INTEGER PRIMARY KEY -- inline comments stay
);

-- a comment between statements
CREATE TABLE b (id INTEGER);
`
	statements := splitStatements(script)
	if len(statements) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %q", len(statements), statements)
	}
	if !strings.HasPrefix(statements[0], "CREATE TABLE a") {
		t.Errorf("statements[0] = %q", statements[0])
	}
	if statements[1] != "CREATE TABLE b (id INTEGER)" {
		t.Errorf("statements[1] = %q", statements[1])
	}
}

func TestChecksum_ChangesWithContent(t *testing.T) {
	a := checksum("CREATE TABLE a (id INTEGER);")
	b := checksum("CREATE TABLE a (id INTEGER, name TEXT);")
	if a == b {
		t.Fatal("checksum() must differ for different scripts")
	}
	if len(a) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(a))
	}
}

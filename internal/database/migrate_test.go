package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		user string
		pass string
		want string
	}{
		{
			name: "with password",
			user: "root",
			pass: "secret",
			want: "root:secret@tcp(db:3306)/filmorate?charset=utf8mb4&parseTime=true&loc=UTC",
		},
		{
			name: "without password",
			user: "root",
			want: "root@tcp(db:3306)/filmorate?charset=utf8mb4&parseTime=true&loc=UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(tt.user, tt.pass, "db", "3306", "filmorate"); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMigrationURL(t *testing.T) {
	got := MigrationURL("root@tcp(db:3306)/filmorate?parseTime=true")
	want := "mysql://root@tcp(db:3306)/filmorate?parseTime=true&multiStatements=true"
	if got != want {
		t.Errorf("MigrationURL() = %q, want %q", got, want)
	}

	if got := MigrationURL("root@tcp(db:3306)/filmorate"); !strings.HasSuffix(got, "/filmorate?multiStatements=true") {
		t.Errorf("MigrationURL() without query = %q", got)
	}
}

func TestMigrate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		dsn       string
		direction string
	}{
		{name: "empty dsn", dsn: "", direction: "up"},
		{name: "empty direction", dsn: "root@tcp(db:3306)/x", direction: ""},
		{name: "upper case", dsn: "root@tcp(db:3306)/x", direction: "UP"},
		{name: "sideways", dsn: "root@tcp(db:3306)/x", direction: "left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Migrate(tt.dsn, tt.direction); err == nil {
				t.Errorf("Migrate(%q, %q) expected error", tt.dsn, tt.direction)
			}
		})
	}
}

func TestMigrationFiles_Paired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		t.Fatalf("ReadDir error = %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %q in migrations", name)
		}
	}
	if len(ups) == 0 {
		t.Fatal("no up migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}

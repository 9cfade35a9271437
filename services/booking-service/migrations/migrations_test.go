package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := fs.Glob(FS, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	ups, downs := 0, 0
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			ups++
		case strings.HasSuffix(n, ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Fatalf("expected paired migrations, got %d up / %d down", ups, downs)
	}

	src, err := iofs.New(FS, ".")
	if err != nil {
		t.Fatalf("iofs: %v", err)
	}
	first, err := src.First()
	if err != nil || first != 1 {
		t.Fatalf("expected first version 1, got %d (%v)", first, err)
	}
}

func TestSchemaGuardsOverlap(t *testing.T) {
	b, err := FS.ReadFile("000001_init.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	schema := string(b)
	for _, want := range []string{"EXCLUDE USING gist", "WHERE (status IN ('Pending', 'Confirmed'))", "businesses_slug_key", "customers_phone_key"} {
		if !strings.Contains(schema, want) {
			t.Fatalf("schema missing %q", want)
		}
	}
}

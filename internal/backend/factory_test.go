package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"salesboard/internal/config"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	seedFile := filepath.Join(dir, "seed.json")
	data := `[{"id":1,"title":"Lamp","description":"d","price":10,"category":"home","image":"","sold":true,"dateOfSale":"2023-03-02T10:00:00+05:30"}]`
	if err := os.WriteFile(seedFile, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		config    Config
		wantCount int64
		wantErr   string
	}{
		{name: "memory empty", config: Config{Type: MemoryBackend}, wantCount: 0},
		{name: "memory from file", config: Config{Type: MemoryBackend, MemorySeedFile: seedFile}, wantCount: 1},
		{name: "sqlite", config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "test.db")}, wantCount: 0},
		{name: "sqlite missing path", config: Config{Type: SQLiteBackend}, wantErr: "SQLite database path is required"},
		{name: "postgres missing dsn", config: Config{Type: PostgresBackend}, wantErr: "PostgreSQL DSN is required"},
		{name: "mongo missing uri", config: Config{Type: MongoBackend}, wantErr: "MongoDB URI"},
		{name: "unknown", config: Config{Type: "sheets"}, wantErr: "supported: [memory sqlite postgres mongo]"},
	}

	f := NewFactory(nil)
	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.config)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("CreateBackend() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			if res.Cleanup != nil {
				t.Cleanup(func() { res.Cleanup() })
			}
			n, err := res.Store.Count(ctx)
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if n != tt.wantCount {
				t.Errorf("Count = %d, want %d", n, tt.wantCount)
			}
			if err := res.Store.Ping(ctx); err != nil {
				t.Errorf("Ping: %v", err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "postgres", PostgresDSN: "postgres://x"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.PostgresDSN != "postgres://x" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

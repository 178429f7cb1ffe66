package config

import (
	"os"
	"testing"
	"time"
)

func TestConfigLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("VIBELINK_DB_DRIVER")
	_ = os.Unsetenv("VIBELINK_GEO_INDEX_DRIVER")
	_ = os.Unsetenv("VIBELINK_MOMENT_TTL")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "memory" || cfg.GeoIndexDriver != "memory" {
		t.Fatalf("unexpected default drivers: %+v", cfg)
	}
	if cfg.DefaultRadiusMeters != 5000 || cfg.DefaultGridMeters != 500 || cfg.DefaultPageSize != 10 {
		t.Fatalf("unexpected query defaults: %+v", cfg)
	}
	if cfg.MomentTTL != 24*time.Hour {
		t.Fatalf("unexpected default moment TTL: %v", cfg.MomentTTL)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	_ = os.Setenv("VIBELINK_DB_DRIVER", "sqlite")
	_ = os.Setenv("VIBELINK_MOMENT_TTL", "1h")
	defer func() {
		_ = os.Unsetenv("VIBELINK_DB_DRIVER")
		_ = os.Unsetenv("VIBELINK_MOMENT_TTL")
	}()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("db driver env override failed, got %s", cfg.DBDriver)
	}
	if cfg.MomentTTL != time.Hour {
		t.Fatalf("moment ttl env override failed, got %v", cfg.MomentTTL)
	}
}

func TestConfigLoad_RejectsUnknownDriver(t *testing.T) {
	_ = os.Setenv("VIBELINK_DB_DRIVER", "cassandra")
	defer func() { _ = os.Unsetenv("VIBELINK_DB_DRIVER") }()

	if _, err := New(); err == nil {
		t.Fatal("expected error for unsupported DB_DRIVER")
	}
}

func TestConfigLoad_PostgresRequiresDSN(t *testing.T) {
	_ = os.Setenv("VIBELINK_DB_DRIVER", "postgres")
	_ = os.Unsetenv("VIBELINK_POSTGRES_DSN")
	defer func() { _ = os.Unsetenv("VIBELINK_DB_DRIVER") }()

	if _, err := New(); err == nil {
		t.Fatal("expected error when postgres driver has no DSN")
	}
}

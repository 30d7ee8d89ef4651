package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SWAGGER_ENABLED", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("PICKEM_SEED_FIXTURES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.SwaggerEnabled {
		t.Fatalf("expected swagger enabled by default in dev")
	}
	if cfg.AuthMode != AuthModeStatic {
		t.Fatalf("expected static auth by default in dev, got %q", cfg.AuthMode)
	}
	if !cfg.SeedFixtures {
		t.Fatalf("expected fixture seeding by default in dev")
	}

	t.Setenv("APP_ENV", EnvProd)
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SwaggerEnabled {
		t.Fatalf("expected swagger disabled by default in prod")
	}
	if cfg.AuthMode != AuthModeAnubis {
		t.Fatalf("expected anubis auth by default in prod, got %q", cfg.AuthMode)
	}
	if cfg.SeedFixtures {
		t.Fatalf("expected fixture seeding disabled by default in prod")
	}
}

func TestLoad_StaticAuthRejectedInProd(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("AUTH_MODE", AuthModeStatic)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for AUTH_MODE=static in prod")
	}
}

func TestLoad_InvalidAuthMode(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("AUTH_MODE", "ldap")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown AUTH_MODE")
	}
}

func TestLoad_StoreDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORE_DRIVER", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown STORE_DRIVER")
	}

	t.Setenv("STORE_DRIVER", "Memory")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Fatalf("unexpected store driver: %q", cfg.StoreDriver)
	}
}

func TestLoad_PickemRules(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PICKEM_TIMEZONE", "")
	t.Setenv("PICKEM_LOCK_LEAD", "")
	t.Setenv("PICKEM_MAX_PICKS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Location == nil || cfg.Location.String() != "Europe/Dublin" {
		t.Fatalf("unexpected default location: %v", cfg.Location)
	}
	if cfg.LockLead != 2*time.Hour {
		t.Fatalf("unexpected default lock lead: %s", cfg.LockLead)
	}
	if cfg.MaxPicks != 5 {
		t.Fatalf("unexpected default max picks: %d", cfg.MaxPicks)
	}

	t.Setenv("PICKEM_TIMEZONE", "America/New_York")
	t.Setenv("PICKEM_LOCK_LEAD", "90m")
	t.Setenv("PICKEM_MAX_PICKS", "3")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Location.String() != "America/New_York" || cfg.LockLead != 90*time.Minute || cfg.MaxPicks != 3 {
		t.Fatalf("unexpected rules: %s %s %d", cfg.Location, cfg.LockLead, cfg.MaxPicks)
	}
}

func TestLoad_PickemRulesValidation(t *testing.T) {
	cases := map[string][2]string{
		"unknown zone":   {"PICKEM_TIMEZONE", "Mars/Olympus"},
		"zero lead":      {"PICKEM_LOCK_LEAD", "0s"},
		"zero max picks": {"PICKEM_MAX_PICKS", "0"},
		"bad workers":    {"PICKEM_SCOREBOARD_WORKERS", "x"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("unexpected pprof addr: %s", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "pickem-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "pickem-test" {
		t.Fatalf("unexpected pyroscope app name: %s", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected default cors origins: %#v", cfg.CORSAllowedOrigins)
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://pickem.example.com, http://localhost:3000")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("unexpected cors origins len: %d", len(cfg.CORSAllowedOrigins))
	}
	if cfg.CORSAllowedOrigins[0] != "https://pickem.example.com" || cfg.CORSAllowedOrigins[1] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %#v", cfg.CORSAllowedOrigins)
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when cors origins only contain separators")
	}
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CacheEnabled {
		t.Fatalf("expected cache disabled")
	}
	if cfg.CacheTTL != 45*time.Second {
		t.Fatalf("unexpected cache ttl: %s", cfg.CacheTTL)
	}

	t.Setenv("CACHE_TTL", "-1s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative CACHE_TTL")
	}
}

func TestLoad_ProviderConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ODDS_API_KEY", " secret ")
	t.Setenv("ODDS_API_TIMEOUT", "4s")
	t.Setenv("ODDS_API_CIRCUIT_ENABLED", "true")
	t.Setenv("ODDS_API_CIRCUIT_FAILURE_COUNT", "7")
	t.Setenv("ODDS_API_CIRCUIT_OPEN_TIMEOUT", "45s")
	t.Setenv("ODDS_API_CIRCUIT_HALF_OPEN_MAX_REQ", "3")
	t.Setenv("ESPN_REQUESTS_PER_SECOND", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OddsAPIKey != "secret" {
		t.Fatalf("unexpected odds api key: %q", cfg.OddsAPIKey)
	}
	if cfg.OddsAPITimeout != 4*time.Second {
		t.Fatalf("unexpected odds api timeout: %s", cfg.OddsAPITimeout)
	}
	circuit := cfg.OddsAPICircuit
	if !circuit.Enabled || circuit.FailureThreshold != 7 || circuit.OpenTimeout != 45*time.Second || circuit.HalfOpenMaxReq != 3 {
		t.Fatalf("unexpected odds api circuit: %+v", circuit)
	}
	if cfg.ESPNRequestsPerSecond != 2.5 {
		t.Fatalf("unexpected espn rate: %v", cfg.ESPNRequestsPerSecond)
	}

	t.Setenv("ANUBIS_CIRCUIT_FAILURE_COUNT", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for ANUBIS_CIRCUIT_FAILURE_COUNT=0")
	}
}

func TestLoad_RedisConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("REDIS_STREAM_MAXLEN", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.RedisEnabled || cfg.RedisURL != "redis://cache:6379/2" || cfg.RedisStreamMaxLen != 250 {
		t.Fatalf("unexpected redis config: %+v", cfg)
	}
	if cfg.RedisResultsStream != "pickem.results.published" {
		t.Fatalf("unexpected results stream: %q", cfg.RedisResultsStream)
	}

	t.Setenv("REDIS_STREAM_MAXLEN", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for REDIS_STREAM_MAXLEN=0")
	}
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBDisablePreparedBinary {
		t.Fatalf("expected prepared binary result flag false")
	}

	t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "maybe")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
	}
}

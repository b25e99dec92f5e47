package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emiliogq/matchweek/internal/platform/logging"
)

// TeamDescriptor points a provider at one team's schedule.
type TeamDescriptor struct {
	TeamID   int
	LeagueID int
	Season   int
}

// SportConfig is the per-sport provider block. APIKeyName names the env
// variable holding the credential; the key itself never enters the config.
type SportConfig struct {
	BaseURL    string
	Host       string
	APIKeyName string
	Teams      []TeamDescriptor
	Seasons    []int
}

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// DBURL empty means the in-memory repository.
	DBURL                   string
	DBDisablePreparedBinary bool

	CacheEnabled bool
	CacheTTL     time.Duration

	CORSAllowedOrigins []string

	AuthSecret   string
	AuthUsername string
	AuthPassword string
	AuthTokenTTL time.Duration

	ActiveSports     []string
	DefaultTimeFrame string
	Sports           map[string]SportConfig

	ProviderTimeout               time.Duration
	ProviderMaxRetries            int
	ProviderCircuitEnabled        bool
	ProviderCircuitFailureCount   int
	ProviderCircuitOpenTimeout    time.Duration
	ProviderCircuitHalfOpenMaxReq int
	AggregationWorkers            int

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	providerTimeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_TIMEOUT: %w", err)
	}
	if providerTimeout <= 0 {
		return Config{}, fmt.Errorf("PROVIDER_TIMEOUT must be > 0")
	}
	providerMaxRetries, err := getEnvAsInt("PROVIDER_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_MAX_RETRIES: %w", err)
	}
	if providerMaxRetries < 0 {
		return Config{}, fmt.Errorf("PROVIDER_MAX_RETRIES must be >= 0")
	}
	providerCircuitEnabled, err := strconv.ParseBool(getEnv("PROVIDER_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_ENABLED: %w", err)
	}
	providerCircuitFailureCount, err := getEnvAsInt("PROVIDER_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if providerCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("PROVIDER_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	providerCircuitOpenTimeout, err := time.ParseDuration(getEnv("PROVIDER_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if providerCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("PROVIDER_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	providerCircuitHalfOpenMaxReq, err := getEnvAsInt("PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if providerCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	aggregationWorkers, err := getEnvAsInt("AGGREGATION_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse AGGREGATION_WORKERS: %w", err)
	}
	if aggregationWorkers < 1 {
		return Config{}, fmt.Errorf("AGGREGATION_WORKERS must be >= 1")
	}

	activeSports := splitCSV(getEnv("ACTIVE_SPORTS", "football,nba,mma"))
	if len(activeSports) == 0 {
		return Config{}, fmt.Errorf("ACTIVE_SPORTS cannot be empty")
	}

	sports := make(map[string]SportConfig, len(activeSports))
	for _, sport := range activeSports {
		sportCfg, err := loadSportConfig(sport)
		if err != nil {
			return Config{}, err
		}
		sports[sport] = sportCfg
	}

	authSecret := strings.TrimSpace(getEnv("AUTH_SECRET_KEY", ""))
	if authSecret == "" {
		return Config{}, fmt.Errorf("AUTH_SECRET_KEY is required")
	}
	authUsername := strings.TrimSpace(getEnv("AUTH_USERNAME", ""))
	if authUsername == "" {
		return Config{}, fmt.Errorf("AUTH_USERNAME is required")
	}
	authPassword := strings.TrimSpace(getEnv("AUTH_PASSWORD", ""))
	if authPassword == "" {
		return Config{}, fmt.Errorf("AUTH_PASSWORD is required")
	}
	authTokenTTL, err := time.ParseDuration(getEnv("AUTH_TOKEN_TTL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_TOKEN_TTL: %w", err)
	}
	if authTokenTTL <= 0 {
		return Config{}, fmt.Errorf("AUTH_TOKEN_TTL must be > 0")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "matchweek-api"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		DBURL:                         strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:       dbDisablePreparedBinary,
		CacheEnabled:                  cacheEnabled,
		CacheTTL:                      cacheTTL,
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		AuthSecret:                    authSecret,
		AuthUsername:                  authUsername,
		AuthPassword:                  authPassword,
		AuthTokenTTL:                  authTokenTTL,
		ActiveSports:                  activeSports,
		DefaultTimeFrame:              strings.TrimSpace(getEnv("DEFAULT_TIME_FRAME", "recent")),
		Sports:                        sports,
		ProviderTimeout:               providerTimeout,
		ProviderMaxRetries:            providerMaxRetries,
		ProviderCircuitEnabled:        providerCircuitEnabled,
		ProviderCircuitFailureCount:   providerCircuitFailureCount,
		ProviderCircuitOpenTimeout:    providerCircuitOpenTimeout,
		ProviderCircuitHalfOpenMaxReq: providerCircuitHalfOpenMaxReq,
		AggregationWorkers:            aggregationWorkers,
		PprofEnabled:                  pprofEnabled,
		PprofAddr:                     pprofAddr,
		UptraceEnabled:                uptraceEnabled,
		UptraceDSN:                    uptraceDSN,
		UptraceLogsEnabled:            uptraceLogsEnabled,
		PyroscopeEnabled:              pyroscopeEnabled,
		PyroscopeServerAddress:        pyroscopeServerAddress,
		PyroscopeAuthToken:            strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:        strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:    strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:           pyroscopeUploadRate,
		LogLevel:                      parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

// loadSportConfig reads one sport's block, keyed by the uppercased sport
// name: FOOTBALL_URL, FOOTBALL_API_KEY_NAME, FOOTBALL_TEAMS and so on. Team
// descriptors are a comma-separated list of team_id:league_id:season
// triples; sports without team-scoped endpoints list bare seasons instead.
func loadSportConfig(sport string) (SportConfig, error) {
	prefix := strings.ToUpper(strings.TrimSpace(sport))
	if prefix == "" {
		return SportConfig{}, fmt.Errorf("sport name cannot be empty")
	}

	baseURL := strings.TrimSpace(getEnv(prefix+"_URL", defaultSportURL(sport)))
	if baseURL == "" {
		return SportConfig{}, fmt.Errorf("%s_URL is required", prefix)
	}
	apiKeyName := strings.TrimSpace(getEnv(prefix+"_API_KEY_NAME", "API_KEY_"+prefix))
	if apiKeyName == "" {
		return SportConfig{}, fmt.Errorf("%s_API_KEY_NAME is required", prefix)
	}

	teams, err := parseTeamDescriptors(getEnv(prefix+"_TEAMS", ""))
	if err != nil {
		return SportConfig{}, fmt.Errorf("parse %s_TEAMS: %w", prefix, err)
	}
	seasons, err := parseIntList(getEnv(prefix+"_SEASONS", ""))
	if err != nil {
		return SportConfig{}, fmt.Errorf("parse %s_SEASONS: %w", prefix, err)
	}
	if len(teams) == 0 && len(seasons) == 0 {
		return SportConfig{}, fmt.Errorf("%s_TEAMS or %s_SEASONS is required", prefix, prefix)
	}

	return SportConfig{
		BaseURL:    baseURL,
		Host:       strings.TrimSpace(getEnv(prefix+"_HOST", defaultSportHost(sport))),
		APIKeyName: apiKeyName,
		Teams:      teams,
		Seasons:    seasons,
	}, nil
}

func defaultSportURL(sport string) string {
	switch strings.ToLower(strings.TrimSpace(sport)) {
	case "football":
		return "https://api-football-v1.p.rapidapi.com/v3"
	case "nba":
		return "https://v2.nba.api-sports.io"
	case "mma":
		return "https://v1.mma.api-sports.io"
	default:
		return ""
	}
}

func defaultSportHost(sport string) string {
	if strings.EqualFold(strings.TrimSpace(sport), "football") {
		return "api-football-v1.p.rapidapi.com"
	}
	return ""
}

func parseTeamDescriptors(raw string) ([]TeamDescriptor, error) {
	out := make([]TeamDescriptor, 0, 4)
	for _, item := range splitCSV(raw) {
		segments := strings.Split(item, ":")
		if len(segments) != 3 {
			return nil, fmt.Errorf("invalid team descriptor %q, expected team_id:league_id:season", item)
		}
		values := make([]int, 3)
		for i, segment := range segments {
			value, err := strconv.Atoi(strings.TrimSpace(segment))
			if err != nil {
				return nil, fmt.Errorf("invalid number in descriptor %q: %w", item, err)
			}
			if value <= 0 {
				return nil, fmt.Errorf("descriptor values must be > 0 in %q", item)
			}
			values[i] = value
		}
		out = append(out, TeamDescriptor{
			TeamID:   values[0],
			LeagueID: values[1],
			Season:   values[2],
		})
	}
	return out, nil
}

func parseIntList(raw string) ([]int, error) {
	out := make([]int, 0, 4)
	for _, item := range splitCSV(raw) {
		value, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("value must be > 0: %q", item)
		}
		out = append(out, value)
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the dashboard API service.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	DefaultPageSize int
	MaxPageSize     int
	DefaultFleet    string

	AllowExport     bool
	AllowViewWrites bool

	FleetDBEnabled      bool
	FleetDBHost         string
	FleetDBPort         int
	FleetDBUser         string
	FleetDBPassword     string
	FleetDBName         string
	FleetDBConnTimeout  time.Duration
	FleetDBQueryTimeout time.Duration
	TankReadingStale    time.Duration

	FleetMapSQLitePath string

	PayDBEnabled      bool
	PayDBHost         string
	PayDBPort         int
	PayDBUser         string
	PayDBPassword     string
	PayDBName         string
	PayDBConnTimeout  time.Duration
	PayDBQueryTimeout time.Duration

	TelematicsEnabled  bool
	TelematicsEndpoint string
	TelematicsProvider string
	TelematicsTimeout  time.Duration
	TelematicsLookback int

	GaugesEnabled         bool
	GaugeTargets          []string
	GaugeMatchPrefix      string
	GaugeScrapeTimeout    time.Duration
	GaugeScrapeInterval   time.Duration
	GaugeHistoryMaxPoints int

	RiskSecondaryHotCount   int
	RiskScoreFloor          float64
	TankCriticalPercent     float64
	TankLowPercent          float64
	TankWatchPercent        float64
	MaintenanceDueSoonDays  int
	MaintenanceDueLaterDays int
	SearchMinLength         int
}

// FromEnv loads configuration from environment variables with sensible defaults.
func FromEnv() Config {
	loadConfigDefaultsFromFile()
	loadSecretsDefaultsFromFile()

	return Config{
		ListenAddr:      getEnv("APP_LISTEN_ADDR", ":8080"),
		ReadTimeout:     time.Duration(getEnvInt("APP_READ_TIMEOUT_SEC", 10)) * time.Second,
		WriteTimeout:    time.Duration(getEnvInt("APP_WRITE_TIMEOUT_SEC", 20)) * time.Second,
		ShutdownTimeout: time.Duration(getEnvInt("APP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		DefaultPageSize: getEnvInt("APP_DEFAULT_PAGE_SIZE", 25),
		MaxPageSize:     getEnvInt("APP_MAX_PAGE_SIZE", 500),
		DefaultFleet:    getEnv("APP_DEFAULT_FLEET", "all"),

		AllowExport:     getEnvBool("APP_ALLOW_EXPORT", true),
		AllowViewWrites: getEnvBool("APP_ALLOW_VIEW_WRITES", true),

		FleetDBEnabled:      getEnvBool("APP_FLEET_DB_ENABLED", false),
		FleetDBHost:         getEnv("APP_FLEET_DB_HOST", "127.0.0.1"),
		FleetDBPort:         getEnvInt("APP_FLEET_DB_PORT", 3306),
		FleetDBUser:         getEnv("APP_FLEET_DB_USER", "fleetops"),
		FleetDBPassword:     getEnv("APP_FLEET_DB_PASSWORD", "demo"),
		FleetDBName:         getEnv("APP_FLEET_DB_NAME", "FLEET"),
		FleetDBConnTimeout:  time.Duration(getEnvInt("APP_FLEET_DB_CONN_TIMEOUT_SEC", 5)) * time.Second,
		FleetDBQueryTimeout: time.Duration(getEnvInt("APP_FLEET_DB_QUERY_TIMEOUT_SEC", 10)) * time.Second,
		TankReadingStale:    time.Duration(getEnvInt("APP_TANK_READING_STALE_MINUTES", 120)) * time.Minute,

		FleetMapSQLitePath: getEnv("APP_FLEET_MAP_SQLITE_PATH", ""),

		PayDBEnabled:      getEnvBool("APP_PAY_DB_ENABLED", false),
		PayDBHost:         getEnv("APP_PAY_DB_HOST", "127.0.0.1"),
		PayDBPort:         getEnvInt("APP_PAY_DB_PORT", 3306),
		PayDBUser:         getEnv("APP_PAY_DB_USER", "fleetops"),
		PayDBPassword:     getEnv("APP_PAY_DB_PASSWORD", "demo"),
		PayDBName:         getEnv("APP_PAY_DB_NAME", "CAPTIVE"),
		PayDBConnTimeout:  time.Duration(getEnvInt("APP_PAY_DB_CONN_TIMEOUT_SEC", 5)) * time.Second,
		PayDBQueryTimeout: time.Duration(getEnvInt("APP_PAY_DB_QUERY_TIMEOUT_SEC", 10)) * time.Second,

		TelematicsEnabled:  getEnvBool("APP_TELEMATICS_ENABLED", false),
		TelematicsEndpoint: getEnv("APP_TELEMATICS_ENDPOINT", "http://127.0.0.1:7090"),
		TelematicsProvider: getEnv("APP_TELEMATICS_PROVIDER", "lytx"),
		TelematicsTimeout:  time.Duration(getEnvInt("APP_TELEMATICS_TIMEOUT_SEC", 5)) * time.Second,
		TelematicsLookback: getEnvInt("APP_TELEMATICS_LOOKBACK_DAYS", 30),

		GaugesEnabled:         getEnvBool("APP_GAUGES_ENABLED", false),
		GaugeTargets:          getEnvList("APP_GAUGE_TARGETS", []string{"http://127.0.0.1:7999/metrics"}),
		GaugeMatchPrefix:      getEnv("APP_GAUGE_MATCH_PREFIX", "tank_"),
		GaugeScrapeTimeout:    time.Duration(getEnvInt("APP_GAUGE_SCRAPE_TIMEOUT_SEC", 5)) * time.Second,
		GaugeScrapeInterval:   time.Duration(getEnvInt("APP_GAUGE_SCRAPE_INTERVAL_SEC", 60)) * time.Second,
		GaugeHistoryMaxPoints: getEnvInt("APP_GAUGE_HISTORY_MAX_POINTS", 720),

		RiskSecondaryHotCount:   getEnvInt("APP_RISK_SECONDARY_HOT_COUNT", 3),
		RiskScoreFloor:          getEnvFloat("APP_RISK_SCORE_FLOOR", 60),
		TankCriticalPercent:     getEnvFloat("APP_TANK_CRITICAL_PERCENT", 10),
		TankLowPercent:          getEnvFloat("APP_TANK_LOW_PERCENT", 25),
		TankWatchPercent:        getEnvFloat("APP_TANK_WATCH_PERCENT", 40),
		MaintenanceDueSoonDays:  getEnvInt("APP_MAINTENANCE_DUE_SOON_DAYS", 7),
		MaintenanceDueLaterDays: getEnvInt("APP_MAINTENANCE_DUE_LATER_DAYS", 30),
		SearchMinLength:         getEnvInt("APP_SEARCH_MIN_LENGTH", 2),
	}
}

func loadConfigDefaultsFromFile() {
	bootstrapCandidates := []string{
		"./fleet-ops-dashboard.env",
		"/etc/default/fleet-ops-dashboard",
	}

	for _, candidate := range bootstrapCandidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}
		_ = applyEnvDefaultsFromFile(abs)
	}

	candidates := make([]string, 0, 2)
	if explicit := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, "/etc/fleet-ops-dashboard/config.env")

	for _, candidate := range candidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}

		if err := applyEnvDefaultsFromFile(abs); err == nil {
			return
		}
	}
}

func loadSecretsDefaultsFromFile() {
	candidates := make([]string, 0, 3)
	if explicit := strings.TrimSpace(os.Getenv("APP_SECRETS_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	if credDir := strings.TrimSpace(os.Getenv("CREDENTIALS_DIRECTORY")); credDir != "" {
		credName := strings.TrimSpace(os.Getenv("APP_SECRETS_CREDENTIAL_NAME"))
		if credName == "" {
			credName = "app-secrets"
		}
		candidates = append(candidates, filepath.Join(credDir, credName))
	}
	candidates = append(candidates, "/etc/fleet-ops-dashboard/secrets.env")
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if err := applyEnvDefaultsFromFile(candidate); err == nil {
			return
		}
	}
}

func applyEnvDefaultsFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if key == "" {
			continue
		}

		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
				val = val[1 : len(val)-1]
			}
		}

		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}

	return scanner.Err()
}

// FleetDSN returns a mysql driver DSN for the fleet telemetry database.
func (c Config) FleetDSN() string {
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("timeout", c.FleetDBConnTimeout.String())
	params.Set("readTimeout", c.FleetDBQueryTimeout.String())
	params.Set("writeTimeout", c.FleetDBQueryTimeout.String())
	params.Set("charset", "utf8mb4")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.FleetDBUser, c.FleetDBPassword, c.FleetDBHost, c.FleetDBPort, c.FleetDBName, params.Encode())
}

// PayDSN returns a mysql driver DSN for the captive-payments database.
func (c Config) PayDSN() string {
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("timeout", c.PayDBConnTimeout.String())
	params.Set("readTimeout", c.PayDBQueryTimeout.String())
	params.Set("writeTimeout", c.PayDBQueryTimeout.String())
	params.Set("charset", "utf8mb4")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.PayDBUser, c.PayDBPassword, c.PayDBHost, c.PayDBPort, c.PayDBName, params.Encode())
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvFloat(key string, def float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvList(key string, def []string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		out := make([]string, 0, len(def))
		for _, d := range def {
			d = strings.TrimSpace(d)
			if d != "" {
				out = append(out, d)
			}
		}
		return out
	}

	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

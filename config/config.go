package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data must be provided via the config file or the environment.
type AppConfig struct {
	AppPort   string
	GinMode   string
	JWTSecret string

	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Redis for the home page cache
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// Listing/page behaviour
	PageSize            int
	HomeCacheTTLSeconds int
	SessionTTLHours     int

	// Uploads
	UploadsDir string

	// Templates (glob is overridable so tests can load them from a
	// different working directory)
	TemplatesGlob string

	// Rate limiting for auth endpoints
	RateLimitPerMinute int

	AllowedOrigins []string

	// Logging configuration
	LogLevel      string
	LogPath       string
	GinLogPath    string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load reads the application configuration once during boot.
// Precedence: config/config.json -> defaults -> environment overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads a flat JSON file into cfg if present. A missing
// file is not an error; invalid JSON is.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(key string) string {
		if v, ok := raw[key].(string); ok {
			return v
		}
		return ""
	}
	getInt := func(key string) int {
		switch t := raw[key].(type) {
		case float64:
			return int(t)
		case json.Number:
			i, _ := t.Int64()
			return int(i)
		}
		return 0
	}
	getBool := func(key string) bool {
		if v, ok := raw[key].(bool); ok {
			return v
		}
		return false
	}
	getStringSlice := func(key string) []string {
		arr, ok := raw[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	out.AppPort = getString("AppPort")
	out.GinMode = getString("GinMode")
	out.JWTSecret = getString("JWTSecret")
	out.DatabaseURI = getString("DatabaseURI")
	out.DBHost = getString("DBHost")
	out.DBPort = getString("DBPort")
	out.DBUser = getString("DBUser")
	out.DBPassword = getString("DBPassword")
	out.DBName = getString("DBName")
	out.RedisHost = getString("RedisHost")
	out.RedisPort = getInt("RedisPort")
	out.RedisDB = getInt("RedisDB")
	out.RedisPassword = getString("RedisPassword")
	out.PageSize = getInt("PageSize")
	out.HomeCacheTTLSeconds = getInt("HomeCacheTTLSeconds")
	out.SessionTTLHours = getInt("SessionTTLHours")
	out.UploadsDir = getString("UploadsDir")
	out.TemplatesGlob = getString("TemplatesGlob")
	out.RateLimitPerMinute = getInt("RateLimitPerMinute")
	out.AllowedOrigins = getStringSlice("AllowedOrigins")
	out.LogLevel = getString("LogLevel")
	out.LogPath = getString("LogPath")
	out.GinLogPath = getString("GinLogPath")
	out.LogMaxSizeMB = getInt("LogMaxSizeMB")
	out.LogMaxBackups = getInt("LogMaxBackups")
	out.LogMaxAgeDays = getInt("LogMaxAgeDays")
	out.LogCompress = getBool("LogCompress")
	return nil
}

func applyDefaults(out *AppConfig) {
	if out.AppPort == "" {
		out.AppPort = "8080"
	}
	if out.GinMode == "" {
		out.GinMode = "release"
	}
	if out.DBHost == "" {
		out.DBHost = "127.0.0.1"
	}
	if out.DBPort == "" {
		out.DBPort = "3306"
	}
	if out.DBUser == "" {
		out.DBUser = "postline"
	}
	if out.DBName == "" {
		out.DBName = "postline"
	}
	if out.RedisPort == 0 {
		out.RedisPort = 6379
	}
	if out.PageSize == 0 {
		out.PageSize = 10
	}
	if out.HomeCacheTTLSeconds == 0 {
		out.HomeCacheTTLSeconds = 20
	}
	if out.SessionTTLHours == 0 {
		out.SessionTTLHours = 24 * 7
	}
	if out.UploadsDir == "" {
		out.UploadsDir = filepath.Join("static", "uploads")
	}
	if out.TemplatesGlob == "" {
		out.TemplatesGlob = filepath.Join("templates", "*.html")
	}
	if out.RateLimitPerMinute == 0 {
		out.RateLimitPerMinute = 30
	}
	if len(out.AllowedOrigins) == 0 {
		out.AllowedOrigins = []string{"*"}
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	if out.LogPath == "" {
		out.LogPath = filepath.Join("logs", "app.log")
	}
	if out.GinLogPath == "" {
		out.GinLogPath = filepath.Join("logs", "gin.log")
	}
}

func applyEnvOverrides(out *AppConfig) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}

	setString(&out.AppPort, "APP_PORT")
	setString(&out.GinMode, "GIN_MODE")
	setString(&out.JWTSecret, "JWT_SECRET")
	setString(&out.DatabaseURI, "DATABASE_URI")
	setString(&out.DBHost, "DB_HOST")
	setString(&out.DBPort, "DB_PORT")
	setString(&out.DBUser, "DB_USER")
	setString(&out.DBPassword, "DB_PASSWORD")
	setString(&out.DBName, "DB_NAME")
	setString(&out.RedisHost, "REDIS_HOST")
	setInt(&out.RedisPort, "REDIS_PORT")
	setInt(&out.RedisDB, "REDIS_DB")
	setString(&out.RedisPassword, "REDIS_PASSWORD")
	setInt(&out.PageSize, "PAGE_SIZE")
	setInt(&out.HomeCacheTTLSeconds, "HOME_CACHE_TTL_SECONDS")
	setInt(&out.SessionTTLHours, "SESSION_TTL_HOURS")
	setString(&out.UploadsDir, "UPLOADS_DIR")
	setString(&out.TemplatesGlob, "TEMPLATES_GLOB")
	setInt(&out.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if len(origins) > 0 {
			out.AllowedOrigins = origins
		}
	}
	setString(&out.LogLevel, "LOG_LEVEL")
	setString(&out.LogPath, "LOG_PATH")
	setString(&out.GinLogPath, "GIN_LOG_PATH")
	setInt(&out.LogMaxSizeMB, "LOG_MAX_SIZE_MB")
	setInt(&out.LogMaxBackups, "LOG_MAX_BACKUPS")
	setInt(&out.LogMaxAgeDays, "LOG_MAX_AGE_DAYS")
	setBool(&out.LogCompress, "LOG_COMPRESS")
}

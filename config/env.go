package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIBaseURL       = "http://localhost:5000/api"
	defaultAppEnv           = "local"
	defaultGatewayTimeout   = "30s"
	defaultNewBillDelay     = "2s"
	defaultLowStockLevel    = "10"
	defaultArchiveDriver    = "sqlite"
	defaultArchiveSQLiteDSN = "dukaan.db"
	defaultRedisAddr        = "localhost:6379"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once. Later calls are no-ops.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"API_BASE_URL":           defaultAPIBaseURL,
		"APP_ENV":                defaultAppEnv,
		"GATEWAY_TIMEOUT":        defaultGatewayTimeout,
		"CHECKOUT_NEWBILL_DELAY": defaultNewBillDelay,
		"LOW_STOCK_THRESHOLD":    defaultLowStockLevel,
		"ARCHIVE_DRIVER":         defaultArchiveDriver,
		"ARCHIVE_DSN":            "",
		"REDIS_ADDR":             defaultRedisAddr,
		"REDIS_PASSWORD":         "",
		"DIAG_ADDR":              "",
		"MONGO_LOG_URI":          "",
		"MONGO_LOG_DB":           "dukaan",
		"MONGO_LOG_COLLECTION":   "logs",
	}
}

// APIBaseURL is the root of the remote POS backend, e.g. http://host:5000/api.
func APIBaseURL() string {
	_ = Load()
	return strings.TrimRight(get("API_BASE_URL", defaultAPIBaseURL), "/")
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// GatewayTimeout is the per-attempt timeout for outbound backend calls.
func GatewayTimeout() time.Duration {
	_ = Load()
	return duration("GATEWAY_TIMEOUT", defaultGatewayTimeout)
}

// CheckoutNewBillDelay is how long the billing session waits after a
// successful checkout before creating the next bill. Long enough for the
// receipt view to settle; tunable, not load-bearing.
func CheckoutNewBillDelay() time.Duration {
	_ = Load()
	return duration("CHECKOUT_NEWBILL_DELAY", defaultNewBillDelay)
}

// LowStockThreshold is the stock level below which a product is flagged.
func LowStockThreshold() int {
	_ = Load()
	return integer("LOW_STOCK_THRESHOLD", defaultLowStockLevel)
}

// ── Receipt archive ──────────────────────────────────────────────────────────

func ArchiveDriver() string {
	_ = Load()
	driver := strings.ToLower(get("ARCHIVE_DRIVER", defaultArchiveDriver))
	switch driver {
	case "sqlite", "postgres", "mysql", "sqlserver":
		return driver
	default:
		return defaultArchiveDriver
	}
}

func ArchiveDSN() string {
	_ = Load()
	if dsn := get("ARCHIVE_DSN", ""); dsn != "" {
		return dsn
	}
	return defaultArchiveSQLiteDSN
}

// ── Identity cache ───────────────────────────────────────────────────────────

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// ── Diagnostics ──────────────────────────────────────────────────────────────

// DiagAddr is the listen address for /metrics and /healthz.
// Empty disables the listener.
func DiagAddr() string {
	_ = Load()
	return get("DIAG_ADDR", "")
}

// ── Log shipping ─────────────────────────────────────────────────────────────

func MongoLogURI() string        { _ = Load(); return get("MONGO_LOG_URI", "") }
func MongoLogDB() string         { _ = Load(); return get("MONGO_LOG_DB", "dukaan") }
func MongoLogCollection() string { _ = Load(); return get("MONGO_LOG_COLLECTION", "logs") }

// ── File loading ─────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	// Real environment variables win over both files.
	for key := range loaded {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			loaded[key] = v
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}
	return fallback
}

func duration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(get(key, fallback))
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func integer(key, fallback string) int {
	n, err := strconv.Atoi(get(key, fallback))
	if err != nil {
		n, _ = strconv.Atoi(fallback)
	}
	return n
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a config key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}

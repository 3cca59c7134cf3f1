package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultConfigPath = "config/app.json"
	defaultEnvPath    = ".env"
)

// Config is the full process configuration. Every field can be set from
// config/app.json, .env or the process environment (highest precedence).
type Config struct {
	Port     string `env:"PORT" envDefault:"3000"`
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL"`

	Pages    Pages
	Location Location
	Dir      Dirs
	Storage  Storage
	Server   Server
	Metrics  Metrics
	LogSink  LogSink
}

// Pages are the resources served by the fixed page routes.
type Pages struct {
	HomeRoute       string `env:"HOME_ROUTE" envDefault:"/home"`
	ControllerRoute string `env:"CONTROLLER_ROUTE" envDefault:"/controller"`
	HomeHTML        string `env:"HOME_HTML" envDefault:"home/index.html"`
	ControllerHTML  string `env:"CONTROLLER_HTML" envDefault:"controller/index.html"`
}

// Location holds redirect targets.
type Location struct {
	Home string `env:"HOME_LOCATION" envDefault:"/home"`
}

// Dirs are the resource root directories. Empty sub-directories are derived
// from their parent in finalize.
type Dirs struct {
	Root   string `env:"ROOT_DIR" envDefault:"."`
	Public string `env:"PUBLIC_DIR"`
	Audio  string `env:"AUDIO_DIR"`
	Songs  string `env:"SONGS_DIR"`
	FX     string `env:"FX_DIR"`
}

// Storage selects the backend the resource resolver reads from.
type Storage struct {
	Disk       string `env:"STORAGE_DISK" envDefault:"local"`
	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Key      string `env:"S3_KEY"`
	S3Secret   string `env:"S3_SECRET"`
	S3Endpoint string `env:"S3_ENDPOINT"`
	S3Prefix   string `env:"S3_PREFIX"`
}

// Server carries http.Server tuning. WriteTimeout defaults to zero so long
// audio streams are not cut off.
type Server struct {
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// LogSink configures the optional MongoDB copy of warning and error logs.
// The sink is disabled while MongoURI is empty.
type LogSink struct {
	MongoURI        string `env:"LOG_MONGO_URI"`
	MongoDB         string `env:"LOG_MONGO_DB" envDefault:"radio"`
	MongoCollection string `env:"LOG_MONGO_COLLECTION" envDefault:"logs"`
	MinLevel        string `env:"LOG_MONGO_LEVEL" envDefault:"warn"`
}

var (
	loadOnce sync.Once
	loadErr  error

	mu      sync.RWMutex
	current *Config
)

// Load reads config/app.json, .env and the process environment once.
func Load() error {
	loadOnce.Do(func() {
		cfg, err := load(defaultConfigPath, defaultEnvPath, os.Environ())
		if err != nil {
			loadErr = err
			return
		}
		mu.Lock()
		current = cfg
		mu.Unlock()
	})
	return loadErr
}

// LoadFrom builds a Config from explicit files and environment entries
// ("KEY=value"). Missing files are skipped.
func LoadFrom(configPath, envPath string, environ []string) (*Config, error) {
	return load(configPath, envPath, environ)
}

// Current returns the loaded configuration, loading it on first use.
// A failed load falls back to defaults; callers that care check Load().
func Current() Config {
	_ = Load()

	mu.RLock()
	defer mu.RUnlock()
	if current != nil {
		return *current
	}
	return Defaults()
}

// Defaults returns the configuration with no files and no environment.
func Defaults() Config {
	cfg, err := load("", "", nil)
	if err != nil {
		// Only reachable if a struct tag default fails to parse.
		panic(fmt.Sprintf("config: defaults: %v", err))
	}
	return *cfg
}

func load(configPath, envPath string, environ []string) (*Config, error) {
	raw := map[string]string{}

	if configPath != "" {
		if err := mergeJSONConfig(configPath, raw); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	if envPath != "" {
		if err := mergeDotEnv(envPath, raw); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		raw[strings.ToUpper(k)] = v
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: raw}); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.finalize()

	return &cfg, nil
}

func (c *Config) finalize() {
	if c.Dir.Public == "" {
		c.Dir.Public = filepath.Join(c.Dir.Root, "public")
	}
	if c.Dir.Audio == "" {
		c.Dir.Audio = filepath.Join(c.Dir.Root, "audio")
	}
	if c.Dir.Songs == "" {
		c.Dir.Songs = filepath.Join(c.Dir.Audio, "songs")
	}
	if c.Dir.FX == "" {
		c.Dir.FX = filepath.Join(c.Dir.Audio, "fx")
	}
	if c.LogLevel == "" {
		c.LogLevel = "debug"
		switch strings.ToLower(c.AppEnv) {
		case "production", "prod":
			c.LogLevel = "info"
		}
	}
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
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64, bool:
			s = fmt.Sprint(v)
		default:
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
	parsed, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range parsed {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

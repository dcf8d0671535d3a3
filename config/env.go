package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultMaxInlineImageBytes keeps a product document below the hosted
// document-size ceiling once the rest of the fields are added.
const DefaultMaxInlineImageBytes = 1048487

// Config holds every runtime setting of the catalog service.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"local"`
	AppPort         string        `envconfig:"APP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017/?replicaSet=rs0"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"livraria"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	StorageDisk      string `envconfig:"STORAGE_DISK" default:"local"`
	StorageLocalRoot string `envconfig:"STORAGE_LOCAL_ROOT" default:"storage"`
	StorageURL       string `envconfig:"STORAGE_URL" default:"http://localhost:8080/storage"`

	S3Bucket   string `envconfig:"S3_BUCKET"`
	S3Region   string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Key      string `envconfig:"S3_KEY"`
	S3Secret   string `envconfig:"S3_SECRET"`
	S3Endpoint string `envconfig:"S3_ENDPOINT"`
	S3URL      string `envconfig:"S3_URL"`

	MaxBodyBytes        int64    `envconfig:"MAX_BODY_BYTES" default:"4194304"`
	MaxUploadBytes      int64    `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	MaxInlineImageBytes int      `envconfig:"MAX_INLINE_IMAGE_BYTES" default:"1048487"`
	RateLimitPerMinute  int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"200"`
	CORSAllowedOrigins  []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	LogMongoCollection string `envconfig:"LOG_MONGO_COLLECTION"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c != nil && (c.AppEnv == "production" || c.AppEnv == "prod")
}

// Addr is the listen address derived from AppPort.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.AppPort, ":")
}

var (
	loadOnce sync.Once
	loadErr  error

	mu      sync.RWMutex
	current = &Config{}
)

// Load merges config/app.json and .env into the process environment and
// decodes the result into a Config. Variables already set in the
// environment win over both files.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

// Get returns the loaded configuration. A failed file load still yields
// the environment/default values.
func Get() *Config {
	_ = Load()
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func loadFromFiles(configPath, envPath string) error {
	fileValues := map[string]string{}

	var fileErr error
	if err := mergeJSONConfig(configPath, fileValues); err != nil && !os.IsNotExist(err) {
		fileErr = err
	}
	if err := mergeDotEnv(envPath, fileValues); err != nil && !os.IsNotExist(err) {
		fileErr = err
	}

	for key, value := range fileValues {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		_ = os.Setenv(key, value)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("config: decode environment: %w", err)
	}

	mu.Lock()
	current = &cfg
	mu.Unlock()

	return fileErr
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
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		switch v := val.(type) {
		case string:
			out[k] = strings.TrimSpace(v)
		case float64, bool:
			out[k] = fmt.Sprint(v)
		}
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

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		out[key] = strings.Trim(strings.TrimSpace(value), `"'`)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

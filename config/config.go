package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	DB      DBConfig      `mapstructure:"db"`
	R2      R2Config      `mapstructure:"r2"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Sentry  SentryConfig  `mapstructure:"sentry"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	Port     string `mapstructure:"port"`
	Language string `mapstructure:"language"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type StorageConfig struct {
	// postgres or memory
	Driver string `mapstructure:"driver"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type R2Config struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	// When set, read URLs are built as <public_base_url>/<key> instead of presigned.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type LLMConfig struct {
	// gemini or openai
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type QueueConfig struct {
	BrokerAddress string `mapstructure:"broker_address"`
}

type SentryConfig struct {
	DSN     string `mapstructure:"dsn"`
	Release string `mapstructure:"release"`
}

// Legacy flat environment variable names kept working next to the nested keys.
var envAliases = map[string][]string{
	"llm.api_key":          {"GEMINI_API_KEY", "VITE_GEMINI_API_KEY"},
	"auth.jwt_secret":      {"JWT_SECRET"},
	"r2.account_id":        {"R2_ACCOUNT_ID"},
	"r2.access_key_id":     {"R2_ACCESS_KEY_ID"},
	"r2.access_key_secret": {"R2_ACCESS_KEY_SECRET"},
	"r2.bucket_name":       {"R2_BUCKET_NAME"},
	"queue.broker_address": {"ASYNC_BROKER_ADDRESS"},
	"db.host":              {"DB_HOST"},
	"db.port":              {"DB_PORT"},
	"db.username":          {"DB_USERNAME"},
	"db.password":          {"DB_PASSWORD"},
	"db.name":              {"DB_NAME"},
	"sentry.dsn":           {"SENTRY_DSN"},
	"app.env":              {"ENV"},
	"app.port":             {"PORT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "local")
	v.SetDefault("app.port", "8083")
	v.SetDefault("app.language", "ja")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("r2.account_id", "")
	v.SetDefault("r2.access_key_id", "")
	v.SetDefault("r2.access_key_secret", "")
	v.SetDefault("r2.bucket_name", "")
	v.SetDefault("r2.public_base_url", "")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("queue.broker_address", "localhost:6379")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.release", "wardrobeapi@1.0.0")
}

// Load reads .env (if present), then the optional YAML file at path, then the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	return &cfg, nil
}

// FromEnv loads the config using the file named by CONFIG_FILE, if any.
func FromEnv() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

func (c *Config) IsLocal() bool {
	return c.App.Env == "local"
}

// HasCredential reports whether a remote generation call can be attempted at all.
func (c LLMConfig) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.Username, d.Password, d.Host, d.Port, d.Name)
}

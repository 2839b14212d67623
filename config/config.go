package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MarketplaceConfig — настройки одного модуля маркетплейса
type MarketplaceConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	SellerID  string `mapstructure:"seller_id"`
	// Sandbox переключает модуль на тестовый контур внешнего API.
	// Выбор контура — только этот флаг, никогда не содержимое учетных данных.
	Sandbox  bool `mapstructure:"sandbox"`
	PageSize int  `mapstructure:"page_size"`
}

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		BodyLimit       int // максимальный размер запроса в МБ
	}

	Postgres struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		Timeout  time.Duration
		PoolSize int // размер пула соединений
	}

	Redis struct {
		Host              string
		Port              int
		Password          string
		DB                int
		PoolSize          int
		MinIdleConns      int
		ConnectTimeout    time.Duration
		ReadTimeout       time.Duration
		WriteTimeout      time.Duration
		MaxRetries        int
		DefaultExpiration time.Duration // срок действия кэша по умолчанию
	}

	Cache struct {
		// Backend выбирает реализацию кэша: redis или memory
		Backend string
		TTL     time.Duration
	}

	Kafka struct {
		Enabled bool     `mapstructure:"enabled"`
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	}

	Sync struct {
		// VendorID — продавец, от имени которого работает сервис
		VendorID string
		// UseFakeModule включает тестовый модуль с фиксированным каталогом.
		// Только явный флаг: модуль никогда не выбирается по учетным данным.
		UseFakeModule bool
		PageSize      int
	}

	// Marketplaces — настройки модулей по имени маркетплейса
	Marketplaces struct {
		Trendyol    MarketplaceConfig `mapstructure:"trendyol"`
		Hepsiburada MarketplaceConfig `mapstructure:"hepsiburada"`
	}

	Metrics struct {
		Enabled  bool
		Endpoint string
	}

	Security struct {
		JWTSecret        string
		JWTExpirationMin time.Duration
		CORSAllowOrigins []string
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	var cfg Config

	viper.SetConfigName(configFile)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("../config")
	viper.AddConfigPath("../../config")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Продолжаем, если файл не найден, будем использовать только переменные окружения
	}

	setDefaults()

	bindEnvVariables()

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	cfg.ENV = viper.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	return &cfg, nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults() {
	// Основные настройки
	viper.SetDefault("appName", "sync-service")
	viper.SetDefault("version", "1.0.0")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("env", "development")

	// Настройки сервера
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", "10s")
	viper.SetDefault("server.writeTimeout", "30s")
	viper.SetDefault("server.shutdownTimeout", "5s")
	viper.SetDefault("server.bodyLimit", 10) // 10 МБ

	// Настройки Postgres
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.dbname", "sync")
	viper.SetDefault("postgres.sslmode", "disable")
	viper.SetDefault("postgres.timeout", "5s")
	viper.SetDefault("postgres.poolSize", 10)

	// Настройки Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.poolSize", 10)
	viper.SetDefault("redis.minIdleConns", 2)
	viper.SetDefault("redis.connectTimeout", "1s")
	viper.SetDefault("redis.readTimeout", "1s")
	viper.SetDefault("redis.writeTimeout", "1s")
	viper.SetDefault("redis.maxRetries", 3)
	viper.SetDefault("redis.defaultExpiration", "10m")

	// Настройки кэша
	viper.SetDefault("cache.backend", "redis")
	viper.SetDefault("cache.ttl", "5m")

	// Настройки Kafka
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.groupID", "sync-service")

	// Настройки синхронизации
	viper.SetDefault("sync.vendorID", "")
	viper.SetDefault("sync.useFakeModule", false)
	viper.SetDefault("sync.pageSize", 50)

	// Настройки модулей маркетплейсов
	viper.SetDefault("marketplaces.trendyol.enabled", false)
	viper.SetDefault("marketplaces.trendyol.sandbox", false)
	viper.SetDefault("marketplaces.hepsiburada.enabled", false)
	viper.SetDefault("marketplaces.hepsiburada.sandbox", false)

	// Настройки метрик
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.endpoint", "/metrics")

	// Настройки безопасности
	viper.SetDefault("security.jwtSecret", "your-secret-key")
	viper.SetDefault("security.jwtExpirationMin", "60m")
	viper.SetDefault("security.corsAllowOrigins", []string{"*"})
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables() {
	// Основные настройки
	viper.BindEnv("appName", "APP_NAME")
	viper.BindEnv("version", "APP_VERSION")
	viper.BindEnv("logLevel", "LOG_LEVEL")
	viper.BindEnv("env", "APP_ENV")

	// Настройки сервера
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.readTimeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")
	viper.BindEnv("server.bodyLimit", "SERVER_BODY_LIMIT")

	// Настройки Postgres
	viper.BindEnv("postgres.host", "POSTGRES_HOST")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.dbname", "POSTGRES_DBNAME")
	viper.BindEnv("postgres.sslmode", "POSTGRES_SSLMODE")
	viper.BindEnv("postgres.timeout", "POSTGRES_TIMEOUT")
	viper.BindEnv("postgres.poolSize", "POSTGRES_POOL_SIZE")

	// Настройки Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("redis.poolSize", "REDIS_POOL_SIZE")
	viper.BindEnv("redis.minIdleConns", "REDIS_MIN_IDLE_CONNS")
	viper.BindEnv("redis.connectTimeout", "REDIS_CONNECT_TIMEOUT")
	viper.BindEnv("redis.readTimeout", "REDIS_READ_TIMEOUT")
	viper.BindEnv("redis.writeTimeout", "REDIS_WRITE_TIMEOUT")
	viper.BindEnv("redis.maxRetries", "REDIS_MAX_RETRIES")
	viper.BindEnv("redis.defaultExpiration", "REDIS_DEFAULT_EXPIRATION")

	// Настройки кэша
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.ttl", "CACHE_TTL")

	// Настройки Kafka
	viper.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("kafka.groupID", "KAFKA_GROUP_ID")

	// Настройки синхронизации
	viper.BindEnv("sync.vendorID", "SYNC_VENDOR_ID")
	viper.BindEnv("sync.useFakeModule", "SYNC_USE_FAKE_MODULE")
	viper.BindEnv("sync.pageSize", "SYNC_PAGE_SIZE")

	// Настройки модулей маркетплейсов
	viper.BindEnv("marketplaces.trendyol.enabled", "TRENDYOL_ENABLED")
	viper.BindEnv("marketplaces.trendyol.api_key", "TRENDYOL_API_KEY")
	viper.BindEnv("marketplaces.trendyol.api_secret", "TRENDYOL_API_SECRET")
	viper.BindEnv("marketplaces.trendyol.seller_id", "TRENDYOL_SELLER_ID")
	viper.BindEnv("marketplaces.trendyol.sandbox", "TRENDYOL_SANDBOX")
	viper.BindEnv("marketplaces.hepsiburada.enabled", "HEPSIBURADA_ENABLED")
	viper.BindEnv("marketplaces.hepsiburada.api_key", "HEPSIBURADA_API_KEY")
	viper.BindEnv("marketplaces.hepsiburada.api_secret", "HEPSIBURADA_API_SECRET")
	viper.BindEnv("marketplaces.hepsiburada.seller_id", "HEPSIBURADA_SELLER_ID")
	viper.BindEnv("marketplaces.hepsiburada.sandbox", "HEPSIBURADA_SANDBOX")

	// Настройки метрик
	viper.BindEnv("metrics.enabled", "METRICS_ENABLED")
	viper.BindEnv("metrics.endpoint", "METRICS_ENDPOINT")

	// Настройки безопасности
	viper.BindEnv("security.jwtSecret", "JWT_SECRET")
	viper.BindEnv("security.jwtExpirationMin", "JWT_EXPIRATION_MIN")
	viper.BindEnv("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")
}

package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init跟read分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取  需要使用讀寫鎖
*/
var config_singleton *ConfigSingleTon
var muonce sync.Once

// ConfigFileEnv 指定設定檔路徑的環境變數，未設定時讀取工作目錄下的 .env
const ConfigFileEnv = "STOREFRONT_CONFIG"

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogFormat  string `mapstructure:"LOG_FORMAT"`

	CatalogBackend string `mapstructure:"CATALOG_BACKEND"`
	MongoURI       string `mapstructure:"MONGO_URI"`
	MongoDB        string `mapstructure:"MONGO_DB"`
	ImageBaseURL   string `mapstructure:"IMAGE_BASE_URL"`

	OrderStore    string `mapstructure:"ORDER_STORE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	DbName        string `mapstructure:"POSTGRES_DB"`
	DbHost        string `mapstructure:"POSTGRES_HOST"`
	DbPort        string `mapstructure:"POSTGRES_PORT"`
	DbUser        string `mapstructure:"POSTGRES_USER"`
	DbPas         string `mapstructure:"POSTGRES_PASSWORD"`

	EventTransport     string `mapstructure:"EVENT_TRANSPORT"`
	KafkaBrokers       string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic    string `mapstructure:"KAFKA_ORDER_TOPIC"`
	KafkaConsumerGroup string `mapstructure:"KAFKA_CONSUMER_GROUP"`

	AdminPinHash     string        `mapstructure:"ADMIN_PIN_HASH"`
	AdminDefaultPin  string        `mapstructure:"ADMIN_DEFAULT_PIN"`
	AdminTokenSecret string        `mapstructure:"ADMIN_TOKEN_SECRET"`
	AdminTokenTTL    time.Duration `mapstructure:"ADMIN_TOKEN_TTL"`
	// 每分鐘允許的登入嘗試次數
	AdminLoginRate int `mapstructure:"ADMIN_LOGIN_RATE"`

	CartSessionTTL       time.Duration `mapstructure:"CART_SESSION_TTL"`
	ReconcileConcurrency int           `mapstructure:"RECONCILE_CONCURRENCY"`
	ReconcileMaxRetries  int           `mapstructure:"RECONCILE_MAX_RETRIES"`

	SeedFile string `mapstructure:"SEED_FILE"`
}

// GetKafkaBrokers KAFKA_BROKERS 以逗號分隔
func (c *Config) GetKafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

var defaults = map[string]any{
	"SERVER_PORT":           "8080",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
	"CATALOG_BACKEND":       "memory",
	"MONGO_URI":             "mongodb://localhost:27017",
	"MONGO_DB":              "storefront",
	"IMAGE_BASE_URL":        "/api/v1/images/",
	"ORDER_STORE":           "memory",
	"REDIS_ADDR":            "localhost:6379",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"POSTGRES_DB":           "storefront",
	"POSTGRES_HOST":         "localhost",
	"POSTGRES_PORT":         "5432",
	"POSTGRES_USER":         "postgres",
	"POSTGRES_PASSWORD":     "",
	"EVENT_TRANSPORT":       "local",
	"KAFKA_BROKERS":         "localhost:9092",
	"KAFKA_ORDER_TOPIC":     "order-events",
	"KAFKA_CONSUMER_GROUP":  "storefront-stock-reconciler",
	"ADMIN_PIN_HASH":        "",
	"ADMIN_DEFAULT_PIN":     "1234",
	"ADMIN_TOKEN_SECRET":    "",
	"ADMIN_TOKEN_TTL":       "8h",
	"ADMIN_LOGIN_RATE":      5,
	"CART_SESSION_TTL":      "24h",
	"RECONCILE_CONCURRENCY": 4,
	"RECONCILE_MAX_RETRIES": 3,
	"SEED_FILE":             "",
}

func GetConfig() *Config {
	initConfig()
	config_singleton.mu.RLock()
	defer config_singleton.mu.RUnlock()
	return config_singleton.Config
}

func initConfig() {
	muonce.Do(func() {
		config_singleton = &ConfigSingleTon{}
		v := viper.GetViper()
		cf, err := LoadConfig(v, configPath())
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		config_singleton.Config = cf

		if v.ConfigFileUsed() == "" {
			return
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			cf, err := LoadConfig(v, e.Name)
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			config_singleton.mu.Lock()
			config_singleton.Config = cf
			config_singleton.mu.Unlock()
		})
		v.WatchConfig()
	})
}

func configPath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}
	return ".env"
}

/*
單純回傳錯誤  由外部決定要不要Fatal
設定檔不存在時只使用環境變數與預設值
*/
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvLocal      = "local"
	EnvProduction = "production"

	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"

	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
	CacheDriverNone   = "none"
)

var loadConfigOnce sync.Once
var configInstance AppConfig

// LoadConfig reads config/server.yaml once. Every key can be overridden with a
// CATFEEDER_SERVER_ prefixed variable, dots replaced by underscores.
func LoadConfig() AppConfig {
	loadConfigOnce.Do(func() {
		v := viper.GetViper()
		v.SetEnvPrefix("catfeeder_server")
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.SetConfigName("server")
		v.AddConfigPath("config")
		v.AddConfigPath("/config")
		setDefaults(v)
		if err := v.ReadInConfig(); err != nil {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
		configInstance = fromViper(v, Environment())
	})

	return configInstance
}

// Environment reads ENV, defaulting to production.
func Environment() string {
	env, ok := os.LookupEnv("ENV")
	if !ok || env == "" {
		return EnvProduction
	}
	return env
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.timezone", "Local")
	v.SetDefault("http.address", ":3000")
	v.SetDefault("database.driver", DatabaseDriverPostgres)
	v.SetDefault("live_feed.driver", "postgres")
	v.SetDefault("live_feed.channel", "sensor_data_insert")
	v.SetDefault("live_feed.install_trigger", true)
	v.SetDefault("mqtt_client.topic", "catfeeder/sensor_data/insert")
	v.SetDefault("mqtt_client.payload_format", "json")
	v.SetDefault("kafka.topic", "sensor_data")
	v.SetDefault("kafka.codec", "json")
	v.SetDefault("cache.driver", CacheDriverMemory)
	v.SetDefault("cache.past_day_ttl", 24*time.Hour)
	v.SetDefault("dashboard.log_size", 50)
	v.SetDefault("simulator.interval", 2*time.Second)
}

func fromViper(v *viper.Viper, env string) AppConfig {
	config := AppConfig{
		Environment: env,
		General: GeneralConfig{
			LogLevel: v.GetString("general.log_level"),
			Timezone: v.GetString("general.timezone"),
		},
		HTTP: HTTPConfig{
			Address:        v.GetString("http.address"),
			AllowedOrigins: v.GetStringSlice("http.allowed_origins"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		LiveFeed: LiveFeedConfig{
			Driver:         v.GetString("live_feed.driver"),
			Channel:        v.GetString("live_feed.channel"),
			InstallTrigger: v.GetBool("live_feed.install_trigger"),
		},
		MQTTClient: MQTTClientConfig{
			Broker:        v.GetString("mqtt_client.broker"),
			ClientID:      v.GetString("mqtt_client.client_id"),
			Username:      v.GetString("mqtt_client.username"),
			Password:      v.GetString("mqtt_client.password"),
			Topic:         v.GetString("mqtt_client.topic"),
			PayloadFormat: v.GetString("mqtt_client.payload_format"),
		},
		Kafka: KafkaConfig{
			Brokers:        v.GetStringSlice("kafka.brokers"),
			Group:          v.GetString("kafka.group"),
			Topic:          v.GetString("kafka.topic"),
			Codec:          v.GetString("kafka.codec"),
			SchemaRegistry: v.GetString("kafka.schema_registry"),
		},
		Cache: CacheConfig{
			Driver:     v.GetString("cache.driver"),
			PastDayTTL: v.GetDuration("cache.past_day_ttl"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Dashboard: DashboardConfig{
			LogSize: v.GetInt("dashboard.log_size"),
		},
		Simulator: SimulatorConfig{
			Enabled:  v.GetBool("simulator.enabled"),
			Interval: v.GetDuration("simulator.interval"),
		},
	}

	if env == EnvLocal {
		config.Database.Driver = DatabaseDriverSQLite
		config.LiveFeed.Driver = "memory"
		config.Simulator.Enabled = true
	}

	return config
}

type AppConfig struct {
	Environment string
	General     GeneralConfig
	HTTP        HTTPConfig
	Database    DatabaseConfig
	LiveFeed    LiveFeedConfig
	MQTTClient  MQTTClientConfig
	Kafka       KafkaConfig
	Cache       CacheConfig
	Redis       RedisConfig
	Dashboard   DashboardConfig
	Simulator   SimulatorConfig
}

type GeneralConfig struct {
	LogLevel string
	Timezone string
}

type HTTPConfig struct {
	Address        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type LiveFeedConfig struct {
	Driver         string
	Channel        string
	InstallTrigger bool
}

type MQTTClientConfig struct {
	Broker        string
	ClientID      string
	Username      string
	Password      string
	Topic         string
	PayloadFormat string
}

type KafkaConfig struct {
	Brokers        []string
	Group          string
	Topic          string
	Codec          string
	SchemaRegistry string
}

type CacheConfig struct {
	Driver     string
	PastDayTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DashboardConfig struct {
	LogSize int
}

type SimulatorConfig struct {
	Enabled  bool
	Interval time.Duration
}

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeocodingBaseURL string
	GeocodingAPIKey  string
	RoutingBaseURL   string

	SimulationTickInterval time.Duration
	SimulationStoreTimeout time.Duration
	SimulationStateTTL     time.Duration
	ApprovalWindow         time.Duration
	RecoverySchedule       string

	MQTTBrokerURL     string
	MQTTClientID      string
	MQTTLocationTopic string

	// WSAllowedOrigins lists browser origins besides the server's own that
	// may subscribe to events. "*" allows any origin.
	WSAllowedOrigins []string
}

// LoadConfig reads envFile into the process environment when it exists and
// resolves every setting from the environment, falling back to defaults.
func LoadConfig(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return Config{
		HTTPPort:   v.GetString("HTTP_PORT"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		GeocodingBaseURL: v.GetString("GEOCODING_BASE_URL"),
		GeocodingAPIKey:  v.GetString("GEOCODING_API_KEY"),
		RoutingBaseURL:   v.GetString("ROUTING_BASE_URL"),

		SimulationTickInterval: v.GetDuration("SIMULATION_TICK_INTERVAL"),
		SimulationStoreTimeout: v.GetDuration("SIMULATION_STORE_TIMEOUT"),
		SimulationStateTTL:     v.GetDuration("SIMULATION_STATE_TTL"),
		ApprovalWindow:         v.GetDuration("APPROVAL_WINDOW"),
		RecoverySchedule:       v.GetString("RECOVERY_SCHEDULE"),

		MQTTBrokerURL:     v.GetString("MQTT_BROKER_URL"),
		MQTTClientID:      v.GetString("MQTT_CLIENT_ID"),
		MQTTLocationTopic: v.GetString("MQTT_LOCATION_TOPIC"),

		WSAllowedOrigins: splitList(v.GetString("WS_ALLOWED_ORIGINS")),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "logistics")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("GEOCODING_BASE_URL", "")
	v.SetDefault("GEOCODING_API_KEY", "")
	v.SetDefault("ROUTING_BASE_URL", "https://router.project-osrm.org")

	v.SetDefault("SIMULATION_TICK_INTERVAL", "3s")
	v.SetDefault("SIMULATION_STORE_TIMEOUT", "2s")
	v.SetDefault("SIMULATION_STATE_TTL", "1h")
	v.SetDefault("APPROVAL_WINDOW", "5m")
	v.SetDefault("RECOVERY_SCHEDULE", "@every 30s")

	v.SetDefault("MQTT_BROKER_URL", "")
	v.SetDefault("MQTT_CLIENT_ID", "logistics")
	v.SetDefault("MQTT_LOCATION_TOPIC", "tenants/+/drivers/+/location")

	v.SetDefault("WS_ALLOWED_ORIGINS", "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DSN builds the postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

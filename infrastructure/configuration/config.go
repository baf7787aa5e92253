package configuration

import (
	"fmt"
	"os"

	"video-sync/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	VideoCloud  VideoCloud  `json:"videoCloud"`
	Sync        Sync        `json:"sync"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	Psql Db `json:"psql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// VideoCloud holds the remote video-management service endpoints.
type VideoCloud struct {
	OAuthBase  string `json:"oauthBase"`
	CMSBase    string `json:"cmsBase"`
	IngestBase string `json:"ingestBase"`
	// IngestProfile is the encoding profile submitted with video ingest requests.
	IngestProfile string `json:"ingestProfile"`
	// CallbackBase is the externally reachable base URL for ingest callbacks.
	CallbackBase string `json:"callbackBase"`
}

// Sync tunes the queue workers and the ingest callback handler.
type Sync struct {
	PageSize int `json:"pageSize"`
	// WorkerBudget caps items processed per queue per Run invocation.
	WorkerBudget int `json:"workerBudget"`
	// TokenMarginSeconds is subtracted from the server-declared token lifetime.
	TokenMarginSeconds int `json:"tokenMarginSeconds"`
	// CallbackTTLMinutes is the ingest-token validity window.
	CallbackTTLMinutes int `json:"callbackTTLMinutes"`
	// AcquireAttempts bounds the ingest-callback semaphore poll loop.
	AcquireAttempts int `json:"acquireAttempts"`
	LeaseSeconds    int `json:"leaseSeconds"`
}

var C Config

func init() {
	LoadConfig()
	applyDefaults(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func applyDefaults(c *Config) {
	if c.App.Port == 0 {
		c.App.Port = 10010
	}
	if c.Database.Psql.Name == "" {
		c.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if c.Database.Psql.Host == "" {
		c.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if c.Database.Psql.Port == "" {
		c.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if c.Database.Psql.User == "" {
		c.Database.Psql.User = os.Getenv("DB_USER")
	}
	if c.Database.Psql.Password == "" {
		c.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if c.VideoCloud.OAuthBase == "" {
		c.VideoCloud.OAuthBase = getConfigValue("", "VC_OAUTH_BASE", "https://oauth.brightcove.com/v4")
	}
	if c.VideoCloud.CMSBase == "" {
		c.VideoCloud.CMSBase = getConfigValue("", "VC_CMS_BASE", "https://cms.api.brightcove.com/v1")
	}
	if c.VideoCloud.IngestBase == "" {
		c.VideoCloud.IngestBase = getConfigValue("", "VC_INGEST_BASE", "https://ingest.api.brightcove.com/v1")
	}
	if c.VideoCloud.CallbackBase == "" {
		c.VideoCloud.CallbackBase = os.Getenv("VC_CALLBACK_BASE")
	}
	if c.VideoCloud.IngestProfile == "" {
		c.VideoCloud.IngestProfile = "multi-platform-standard-static"
	}
	if c.Sync.PageSize <= 0 {
		c.Sync.PageSize = 20
	}
	if c.Sync.WorkerBudget <= 0 {
		c.Sync.WorkerBudget = 5
	}
	if c.Sync.TokenMarginSeconds <= 0 {
		c.Sync.TokenMarginSeconds = 30
	}
	if c.Sync.CallbackTTLMinutes <= 0 {
		c.Sync.CallbackTTLMinutes = 60
	}
	if c.Sync.AcquireAttempts <= 0 {
		c.Sync.AcquireAttempts = 600
	}
	if c.Sync.LeaseSeconds <= 0 {
		c.Sync.LeaseSeconds = 120
	}
}

// getConfigValue returns the environment value when set, then the config
// value, then the default.
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" {
		return configValue
	}
	return defaultValue
}

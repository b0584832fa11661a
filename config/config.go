package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HuaTug/video-comment/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ConfigInfo config

func setDefaults() {
	viper.SetDefault("server.addr", "0.0.0.0:8888")
	viper.SetDefault("server.max_request_body_size", 4*1024*1024)
	viper.SetDefault("server.allow_origins", []string{"*"})

	viper.SetDefault("storage.driver", "mongo")
	viper.SetDefault("storage.timeout", "10s")

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "tiktok")
	viper.SetDefault("mongo.collection", constants.CommentCollection)

	viper.SetDefault("mysql.addr", "localhost:3306")
	viper.SetDefault("mysql.database", "tiktok")
	viper.SetDefault("mysql.username", "root")
	viper.SetDefault("mysql.charset", "utf8mb4")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.page_ttl", "10m")
	viper.SetDefault("redis.enabled", true)

	viper.SetDefault("rabbitmq.addr", "localhost:5672")
	viper.SetDefault("rabbitmq.username", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.enabled", true)

	viper.SetDefault("jwt.realm", "tiktok comment")
	viper.SetDefault("jwt.timeout", "2h")

	viper.SetDefault("jaeger.enabled", false)
	viper.SetDefault("jaeger.agent_addr", "localhost:6831")

	viper.SetDefault("sentinel.create_qps", 100)

	viper.SetDefault("pagination.default_limit", 15)
	viper.SetDefault("pagination.max_limit", 100)

	viper.SetDefault("rate_limit.window", "1m")
	viper.SetDefault("rate_limit.max_comments", 10)
}

// Init fills ConfigInfo from defaults, config.yml and the environment.
// A missing config file is not fatal; every key has a default and any key can
// be overridden with COMMENT_<SECTION>_<KEY>.
func Init() {
	if err := godotenv.Load(); err == nil {
		logrus.Info("Loaded environment from .env")
	}

	wd, _ := os.Getwd()
	logrus.Infof("Current working directory: %s", wd)

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvPrefix("COMMENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	configPaths := []string{
		"../../config",
		"./config",
		"../config",
		".",
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
		absPath, _ := filepath.Abs(path)
		logrus.Debugf("Added config path: %s (absolute: %s)", path, absPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Warnf("config file not found, using defaults: %v", err)
		} else {
			logrus.Errorf("config error: %v", err)
		}
	} else {
		logrus.Infof("Successfully read config file: %s", viper.ConfigFileUsed())
	}

	if err := viper.Unmarshal(&ConfigInfo); err != nil {
		logrus.Errorf("config unmarshal error: %v", err)
		return
	}

	if ConfigInfo.Jwt.Secret == "" {
		logrus.Warn("jwt.secret is empty, tokens are signed with an insecure development key")
		ConfigInfo.Jwt.Secret = "tiktok-comment-dev-secret"
	}

	logrus.Infof("Config loaded - storage: %s, mongo: %s/%s, mysql: %s:%s@%s/%s",
		ConfigInfo.Storage.Driver, ConfigInfo.Mongo.URI, ConfigInfo.Mongo.Database,
		ConfigInfo.Mysql.Username, "***", ConfigInfo.Mysql.Addr, ConfigInfo.Mysql.Database)
}

// Duration parses a duration option, falling back to def when it is empty or
// malformed.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.Errorf("Failed to parse duration %q: %v", value, err)
		return def
	}
	return d
}

func RabbitMqURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s/", ConfigInfo.RabbitMq.Username, ConfigInfo.RabbitMq.Password, ConfigInfo.RabbitMq.Addr)
}

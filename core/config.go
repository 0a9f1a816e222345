package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | inmem
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	SweeperConfig struct {
		Schedule string // cron spec
		Timeout  time.Duration
	}

	LineConfig struct {
		ChannelSecret string
		ChannelToken  string
		APIBaseURL    string
		ReplyTimeout  time.Duration
	}

	AttendanceConfig struct {
		PresentKeyword string
	}

	Config struct {
		Debug        bool
		TestMode     bool
		AppName      string
		Env          string
		Build        string
		Timezone     string
		RollbarToken string

		Server     ServerConfig
		Database   DatabaseConfig
		Sweeper    SweeperConfig
		Line       LineConfig
		Attendance AttendanceConfig
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// Location loads the timezone lessons are scheduled in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Kadai")
	conf.SetDefault("build", "dev")
	conf.SetDefault("timezone", "Asia/Tokyo")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.shutdownTimeout", 10*time.Second)
	conf.SetDefault("server.disableReqLogs", false)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "kadai")
	conf.SetDefault("database.user", "kadai")
	conf.SetDefault("database.password", "kadai")
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("sweeper.schedule", "@every 1m")
	conf.SetDefault("sweeper.timeout", 30*time.Second)

	conf.SetDefault("line.channelSecret", "")
	conf.SetDefault("line.channelToken", "")
	conf.SetDefault("line.apiBaseURL", "https://api.line.me")
	conf.SetDefault("line.replyTimeout", 5*time.Second)

	conf.SetDefault("attendance.presentKeyword", "出席")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Timezone:     conf.GetString("timezone"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         conf.GetString("server.address"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  conf.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Sweeper: SweeperConfig{
			Schedule: conf.GetString("sweeper.schedule"),
			Timeout:  conf.GetDuration("sweeper.timeout"),
		},
		Line: LineConfig{
			ChannelSecret: conf.GetString("line.channelSecret"),
			ChannelToken:  conf.GetString("line.channelToken"),
			APIBaseURL:    conf.GetString("line.apiBaseURL"),
			ReplyTimeout:  conf.GetDuration("line.replyTimeout"),
		},
		Attendance: AttendanceConfig{
			PresentKeyword: conf.GetString("attendance.presentKeyword"),
		},
	}
}

package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/matchdeck/internal/filtering"
)

const (
	app = "matchdeck"
)

type Config struct {
	API         *APIConfig         `mapstructure:"api"`
	User        *UserConfig        `mapstructure:"user"`
	Filters     filtering.Criteria `mapstructure:"filters"`
	ExcludeFile string             `mapstructure:"exclude-file"`
	Tracking    *TrackingConfig    `mapstructure:"tracking"`
	LogFile     string             `mapstructure:"log-file"`
	UI          *UIConfig          `mapstructure:"ui"`
}

type APIConfig struct {
	URL       string `mapstructure:"url"`
	UserAgent string `mapstructure:"user-agent"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token-file"`
}

type UserConfig struct {
	ID     string `mapstructure:"id"`
	IDFile string `mapstructure:"id-file"`
}

type TrackingConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	URL     string  `mapstructure:"url"`
	Rate    float64 `mapstructure:"rate"`
	Burst   int     `mapstructure:"burst"`
}

type UIConfig struct {
	Width         int    `mapstructure:"width"`
	AssessmentURL string `mapstructure:"assessment-url"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "matchdeck is a terminal client for browsing your job matches as a swipeable deck",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindings := map[string]string{
		"api.token-file": "MATCHDECK_TOKEN_FILE",
		"api.url":        "MATCHDECK_API_URL",
		"user.id":        "MATCHDECK_USER_ID",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("api.url", "http://localhost:8000")
	viper.SetDefault("tracking.enabled", true)
	viper.SetDefault("ui.width", 64)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is matchdeck.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	// A missing .env is fine; the process environment is used as is.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit config must exist; the default one is optional.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.API == nil {
		config.API = &APIConfig{}
	}
	if config.User == nil {
		config.User = &UserConfig{}
	}
	if config.Tracking == nil {
		config.Tracking = &TrackingConfig{}
	}
	if config.UI == nil {
		config.UI = &UIConfig{}
	}

	return config, nil
}

package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server        Server
	Storage       Storage
	Database      Database
	Redis         Redis
	Admin         Admin
	GeminiApiKey  string
	SessionSecret string
}

type Server struct {
	Port string
}

// Storage selects the snapshot backend: "postgres", "redis" or "memory".
type Storage struct {
	Backend string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Admin holds the fixed operator credentials. This is a single-operator
// tool; the check gates accidental writes, nothing more.
type Admin struct {
	Username string
	Password string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STORAGE_BACKEND", "postgres")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("ADMIN_USERNAME", "admin")

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Storage.Backend = viper.GetString("STORAGE_BACKEND")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Admin.Username = viper.GetString("ADMIN_USERNAME")
	config.Admin.Password = viper.GetString("ADMIN_PASSWORD")
	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.SessionSecret = viper.GetString("SESSION_SECRET")

	log.Info().Str("port", config.Server.Port).Str("storage", config.Storage.Backend).Msg("Config loaded")
	return &config, nil
}

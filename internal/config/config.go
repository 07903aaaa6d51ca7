package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// eSewa gateway contract. The secret signs every redirect payload;
	// a missing secret is a deploy mistake, not something to limp past.
	EsewaSecretKey   string
	EsewaProductCode string
	EsewaSuccessURL  string
	EsewaFailureURL  string

	RedisAddr string
	JWTSecret string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:           os.Getenv("DB_HOST"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBPort:           os.Getenv("DB_PORT"),
		AppPort:          os.Getenv("APP_PORT"),
		AppEnv:           os.Getenv("APP_ENV"),
		EsewaSecretKey:   os.Getenv("ESEWA_SECRET_KEY"),
		EsewaProductCode: os.Getenv("ESEWA_PRODUCT_CODE"),
		EsewaSuccessURL:  os.Getenv("ESEWA_SUCCESS_URL"),
		EsewaFailureURL:  os.Getenv("ESEWA_FAILURE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		JWTSecret:        os.Getenv("SECRET_KEY"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.EsewaSecretKey == "" {
		log.Fatal("ESEWA_SECRET_KEY is not set")
	}

	return cfg
}

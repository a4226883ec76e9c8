// Package config loads application configuration from environment
// variables.  Required variables halt startup when missing; optional ones
// carry defaults.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds the runtime configuration.  Each field corresponds to an
// environment variable.
type Config struct {
	Env            string // application environment (dev/test/prod)
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	BcryptCost     int    // bcrypt cost for password hashing
	AuthHeader     string // request header carrying the session token
	RequireConfirm bool   // gate login on a confirmed email/phone
	AMQPURL        string // RabbitMQ URL for order events (optional)
}

// Load reads the configuration.  Required variables are enforced by must()
// and missing values exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		AuthHeader:     getenv("AUTH_HEADER", "X-AccessToken"),
		RequireConfirm: getenv("AUTH_REQUIRE_CONFIRM", "true") == "true",
		AMQPURL:        os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

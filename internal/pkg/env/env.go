package env

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var Env map[string]string

// GetEnv reads a config value: the loaded .env file wins, then the process
// environment, then the default.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile loads the nearest .env file. Running without one is fine, for
// example in containers where everything arrives via the process environment.
func SetupEnvFile() {
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/tuberank to project root
		"../../../.env", // Fallback for deeper nesting
	}

	for _, envFile := range envFiles {
		if env, err := godotenv.Read(envFile); err == nil {
			Env = env
			return
		}
	}

	log.Println("No .env file found, using process environment only")
}

// IsDev reports whether the app runs in the dev environment.
func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}

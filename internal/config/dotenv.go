package config

import (
	"github.com/joho/godotenv"
)

// LoadDotEnv reads a .env file and sets environment variables.
// It does NOT override existing env vars (env takes precedence).
// A missing file is returned as an error; callers usually ignore it.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

package initializers

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvVariables applies .env when present. Deployed environments inject
// variables directly and have no .env file.
func LoadEnvVariables() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}
	return nil
}

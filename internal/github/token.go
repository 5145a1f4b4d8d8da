package gh

import (
	"errors"
	"os"
)

// TokenFromEnv returns the GitHub API token from the GH_TOKEN environment
// variable.
func TokenFromEnv() (string, error) {
	if token := os.Getenv("GH_TOKEN"); token != "" {
		return token, nil
	}
	return "", errors.New("GH_TOKEN is not set")
}

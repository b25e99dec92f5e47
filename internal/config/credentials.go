package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/emiliogq/matchweek/internal/usecase"
)

// EnvCredentials resolves provider API keys from the environment, keyed by
// the variable name the sport block points at.
type EnvCredentials struct{}

func (EnvCredentials) Credential(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: credential name is empty", usecase.ErrMissingCredential)
	}
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("%w: %s is not set", usecase.ErrMissingCredential, name)
	}
	return value, nil
}

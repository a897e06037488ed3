package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"articlegen/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

type EnvService struct {
	appEnv string
	loaded []string
}

// NewEnvService loads .env and then .env.<APP_ENV> over it. Both files are
// optional; process environment variables set before start win over .env.
func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	svc := &EnvService{appEnv: appEnv}

	if err := godotenv.Load(".env"); err == nil {
		svc.loaded = append(svc.loaded, ".env")
	}

	envFile := fmt.Sprintf(".env.%s", appEnv)
	if err := godotenv.Overload(envFile); err == nil {
		svc.loaded = append(svc.loaded, envFile)
	}

	return svc
}

func (e *EnvService) AppEnv() string { return e.appEnv }

// LoadedFiles lists the dotenv files that were found and applied.
func (e *EnvService) LoadedFiles() []string {
	return append([]string(nil), e.loaded...)
}

func (e *EnvService) Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (e *EnvService) GetWithDefault(key, defaultValue string) string {
	if val := e.Get(key); val != "" {
		return val
	}
	return defaultValue
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) (int, error) {
	val := e.Get(key)
	if val == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, val)
	}
	return parsed, nil
}

func (e *EnvService) GetFloat(key string, defaultValue float64) (float64, error) {
	val := e.Get(key)
	if val == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, val)
	}
	return parsed, nil
}

func (e *EnvService) GetDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	val := e.Get(key)
	if val == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", key, val)
	}
	return parsed, nil
}

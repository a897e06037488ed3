package di

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"
	"articlegen/internal/infrastructure/llm/gemini"
	"articlegen/internal/infrastructure/llm/openrouter"
	"articlegen/internal/usecase/executor"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"

	SearchSerper  = "serper"
	SearchSerpAPI = "serpapi"

	ReaderHTTP    = "http"
	ReaderBrowser = "browser"
	ReaderNone    = "none"

	DefaultHTTPAddr = ":8501"
)

// Source is where configuration values come from; env.EnvService in
// production.
type Source interface {
	output.ConfigPort
	GetBool(key string, defaultValue bool) bool
	GetInt(key string, defaultValue int) (int, error)
	GetFloat(key string, defaultValue float64) (float64, error)
	GetDuration(key string, defaultValue time.Duration) (time.Duration, error)
}

// Config is built once at startup and never mutated afterwards.
type Config struct {
	AppEnv string

	LLMProvider       string
	LLMModel          string
	LLMTemperature    float32
	GoogleAPIKey      string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string

	SearchProvider string
	SerperAPIKey   string
	SerpAPIKey     string
	SearchTimeout  time.Duration

	PageReader      string
	BrowserHeadless bool

	LogLevel string
	LogDir   string

	HTTPAddr      string
	CrewFile      string
	MaxIterations int
}

func (c Config) Development() bool {
	return c.AppEnv == "" || c.AppEnv == "dev"
}

func LoadConfig(src Source) (Config, error) {
	var errs []error

	cfg := Config{
		AppEnv:            src.GetWithDefault("APP_ENV", "dev"),
		LLMProvider:       strings.ToLower(src.GetWithDefault("LLM_PROVIDER", ProviderGemini)),
		GoogleAPIKey:      src.Get("GOOGLE_API_KEY"),
		OpenRouterAPIKey:  src.Get("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: src.GetWithDefault("OPENROUTER_BASE_URL", openrouter.DefaultBaseURL),
		SearchProvider:    strings.ToLower(src.GetWithDefault("SEARCH_PROVIDER", SearchSerper)),
		SerperAPIKey:      src.Get("SERPER_API_KEY"),
		SerpAPIKey:        src.Get("SERPAPI_API_KEY"),
		PageReader:        strings.ToLower(src.GetWithDefault("PAGE_READER", ReaderHTTP)),
		BrowserHeadless:   src.GetBool("BROWSER_HEADLESS", true),
		LogLevel:          src.GetWithDefault("LOG_LEVEL", "info"),
		LogDir:            src.Get("LOG_DIR"),
		HTTPAddr:          src.GetWithDefault("HTTP_ADDR", DefaultHTTPAddr),
		CrewFile:          src.Get("CREW_FILE"),
	}

	switch cfg.LLMProvider {
	case ProviderOpenRouter:
		cfg.LLMModel = src.GetWithDefault("LLM_MODEL", src.GetWithDefault("OPENROUTER_MODEL_NAME", openrouter.DefaultModel))
	default:
		cfg.LLMModel = src.GetWithDefault("LLM_MODEL", gemini.DefaultModel)
	}

	temperature, err := src.GetFloat("LLM_TEMPERATURE", 0.3)
	errs = append(errs, err)
	cfg.LLMTemperature = float32(temperature)

	cfg.MaxIterations, err = src.GetInt("MAX_ITERATIONS", executor.DefaultMaxIterations)
	errs = append(errs, err)

	cfg.SearchTimeout, err = src.GetDuration("SEARCH_TIMEOUT", 30*time.Second)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("%w: %w", entity.ErrStartup, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every missing credential and bad setting at once.
func (c Config) Validate() error {
	var problems []string

	switch c.LLMProvider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			problems = append(problems, "GOOGLE_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			problems = append(problems, "OPENROUTER_API_KEY is required for the openrouter provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("LLM_PROVIDER %q is not one of gemini, openrouter", c.LLMProvider))
	}

	switch c.SearchProvider {
	case SearchSerper:
		if c.SerperAPIKey == "" {
			problems = append(problems, "SERPER_API_KEY is required for the serper search provider")
		}
	case SearchSerpAPI:
		if c.SerpAPIKey == "" {
			problems = append(problems, "SERPAPI_API_KEY is required for the serpapi search provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("SEARCH_PROVIDER %q is not one of serper, serpapi", c.SearchProvider))
	}

	switch c.PageReader {
	case ReaderHTTP, ReaderBrowser, ReaderNone:
	default:
		problems = append(problems, fmt.Sprintf("PAGE_READER %q is not one of http, browser, none", c.PageReader))
	}

	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		problems = append(problems, fmt.Sprintf("LLM_TEMPERATURE %.2f is outside [0, 2]", c.LLMTemperature))
	}
	if c.MaxIterations < 1 {
		problems = append(problems, "MAX_ITERATIONS must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", entity.ErrStartup, strings.Join(problems, "; "))
	}
	return nil
}

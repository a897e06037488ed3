package di

import (
	"context"
	"fmt"

	"articlegen/internal/adapter/tool"
	"articlegen/internal/adapter/web"
	"articlegen/internal/application/port/input"
	"articlegen/internal/application/port/output"
	"articlegen/internal/application/service"
	"articlegen/internal/domain/entity"
	"articlegen/internal/infrastructure/browser/httpreader"
	"articlegen/internal/infrastructure/browser/rod"
	"articlegen/internal/infrastructure/llm/gemini"
	"articlegen/internal/infrastructure/llm/openrouter"
	"articlegen/internal/infrastructure/logger"
	"articlegen/internal/infrastructure/search/serpapi"
	"articlegen/internal/infrastructure/search/serper"
	"articlegen/internal/usecase/article"
	"articlegen/internal/usecase/crew"
	"articlegen/internal/usecase/executor"
	"articlegen/internal/usecase/orchestrator"

	"github.com/go-chi/httplog"
)

const searchResultsInPrompt = 5

type Container struct {
	Config     Config
	Logger     output.LoggerPort
	LLM        output.LLMPort
	Search     output.SearchPort
	PageReader output.PageReaderPort
	Tools      output.ToolRegistry
	Crew       *crew.Crew
	Executor   input.AgentExecutor
	Pipeline   input.PipelineRunner
	Generator  input.ArticleGenerator
	Runs       *service.RunRegistry
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerAdapter(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
		Dir:         cfg.LogDir,
		Name:        "articlegen",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create logger: %w", entity.ErrStartup, err)
	}

	c := &Container{Config: cfg, Logger: log}

	c.Crew, err = loadCrew(cfg.CrewFile)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: failed to load crew: %w", entity.ErrStartup, err)
	}

	c.LLM, err = newLLM(ctx, cfg, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: failed to create LLM client: %w", entity.ErrStartup, err)
	}

	c.Search, err = newSearch(cfg, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: failed to create search client: %w", entity.ErrStartup, err)
	}

	c.PageReader = newPageReader(cfg, log)

	tools := service.NewToolRegistry()
	tools.Register(tool.NewSearchTool(c.Search, log, searchResultsInPrompt))
	if c.PageReader != nil {
		tools.Register(tool.NewReadPageTool(c.PageReader, log))
	}
	c.Tools = tools

	c.Executor = executor.New(c.LLM, tools, log,
		executor.WithMaxIterations(cfg.MaxIterations),
		executor.WithDelegation(tool.NewDelegationTools(log)),
	)
	c.Pipeline = orchestrator.New(c.Executor, log)
	c.Generator = article.New(c.Crew, c.Pipeline, log)
	c.Runs = service.NewRunRegistry(service.DefaultRunHistory)

	log.Info("Container ready",
		"llmProvider", cfg.LLMProvider,
		"model", cfg.LLMModel,
		"searchProvider", cfg.SearchProvider,
		"pageReader", cfg.PageReader,
		"maxIterations", cfg.MaxIterations)

	return c, nil
}

// WebServer builds the HTTP front end with zerolog access logging.
func (c *Container) WebServer() *web.Server {
	accessLog := httplog.NewLogger("articlegen", httplog.Options{
		JSON:    !c.Config.Development(),
		Concise: true,
	})
	return web.NewServer(c.Generator, c.Runs, c.Logger, web.WithAccessLog(accessLog))
}

func (c *Container) Close() {
	if c.PageReader != nil {
		c.PageReader.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}

func loadCrew(path string) (*crew.Crew, error) {
	if path == "" {
		return crew.Default()
	}
	return crew.LoadFile(path)
}

func newLLM(ctx context.Context, cfg Config, log output.LoggerPort) (output.LLMPort, error) {
	switch cfg.LLMProvider {
	case ProviderOpenRouter:
		llmCfg := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.LLMModel)
		llmCfg.BaseURL = cfg.OpenRouterBaseURL
		llmCfg.Temperature = cfg.LLMTemperature
		llmCfg.Logger = log
		return openrouter.NewOpenRouterAdapter(llmCfg), nil
	default:
		llmCfg := gemini.DefaultConfig(cfg.GoogleAPIKey, cfg.LLMModel)
		llmCfg.Temperature = cfg.LLMTemperature
		llmCfg.Logger = log
		llm, err := gemini.New(ctx, llmCfg)
		if err != nil {
			return nil, err
		}
		return llm, nil
	}
}

func newSearch(cfg Config, log output.LoggerPort) (output.SearchPort, error) {
	switch cfg.SearchProvider {
	case SearchSerpAPI:
		search, err := serpapi.New(cfg.SerpAPIKey, log)
		if err != nil {
			return nil, err
		}
		return search, nil
	default:
		return serper.New(serper.Config{
			APIKey:  cfg.SerperAPIKey,
			Timeout: cfg.SearchTimeout,
			Logger:  log,
		}), nil
	}
}

func newPageReader(cfg Config, log output.LoggerPort) output.PageReaderPort {
	switch cfg.PageReader {
	case ReaderNone:
		return nil
	case ReaderBrowser:
		browserCfg := rod.DefaultConfig()
		browserCfg.Headless = cfg.BrowserHeadless
		return rod.NewPageReader(browserCfg, log)
	default:
		return httpreader.New(httpreader.Config{Timeout: cfg.SearchTimeout, Logger: log})
	}
}

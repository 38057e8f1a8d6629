// Package bankdesk assembles the conversational banking assistant: the
// banking data layer, the personas, the model binding and the orchestration
// engine, driven by the loaded configuration.
package bankdesk

import (
	"context"
	"fmt"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/seybold/bankdesk/assistant"
	"github.com/seybold/bankdesk/banking"
	"github.com/seybold/bankdesk/checkpoint"
	sqlitecp "github.com/seybold/bankdesk/checkpoint/sqlite"
	"github.com/seybold/bankdesk/config"
	"github.com/seybold/bankdesk/engine"
	"github.com/seybold/bankdesk/faq"
	"github.com/seybold/bankdesk/logging"
	"github.com/seybold/bankdesk/model"
	anthropicmodel "github.com/seybold/bankdesk/model/anthropic"
	openaimodel "github.com/seybold/bankdesk/model/openai"
)

// App is an assembled application: the engine plus the resources it owns.
type App struct {
	Engine *engine.Engine
	Store  *banking.Store
	Logger logging.Logger

	checkpoints *sqlitecp.Store
}

// New wires an App from configuration: opens the banking database and the
// checkpoint store, loads the FAQ corpus, builds the personas and binds the
// configured model.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(&logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})

	store, err := banking.Open(ctx, cfg.Banking)
	if err != nil {
		return nil, fmt.Errorf("bankdesk: open banking store: %w", err)
	}
	repo := banking.NewRepository(store)

	checkpoints, err := sqlitecp.Open(ctx, cfg.Checkpoints)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("bankdesk: open checkpoint store: %w", err)
	}

	corpus, err := loadCorpus(cfg.FAQPath)
	if err != nil {
		_ = store.Close()
		_ = checkpoints.Close()
		return nil, err
	}

	m, err := buildModel(cfg.Model)
	if err != nil {
		_ = store.Close()
		_ = checkpoints.Close()
		return nil, err
	}

	dispatcher, specialists := assistant.All(assistant.Dependencies{
		Repo: repo,
		FAQ:  corpus,
		Now:  time.Now,
	})

	eng, err := engine.New(m, banking.NewProvider(repo), dispatcher, specialists,
		func(o *engine.Options) {
			o.Checkpoints = checkpoints
			o.Logger = logger
			if cfg.Engine.MaxInvalidRetries > 0 {
				o.MaxInvalidRetries = cfg.Engine.MaxInvalidRetries
			}
		},
	)
	if err != nil {
		_ = store.Close()
		_ = checkpoints.Close()
		return nil, fmt.Errorf("bankdesk: build engine: %w", err)
	}

	return &App{Engine: eng, Store: store, Logger: logger, checkpoints: checkpoints}, nil
}

// Checkpoints exposes the checkpoint store, mainly for inspection tooling.
func (a *App) Checkpoints() checkpoint.Store { return a.checkpoints }

// Close releases the database handles.
func (a *App) Close() error {
	var firstErr error
	if err := a.checkpoints.Close(); err != nil {
		firstErr = err
	}
	if err := a.Store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func loadCorpus(path string) (*faq.Corpus, error) {
	if path == "" {
		corpus, err := faq.Default()
		if err != nil {
			return nil, fmt.Errorf("bankdesk: load embedded faq: %w", err)
		}
		return corpus, nil
	}
	corpus, err := faq.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bankdesk: load faq corpus: %w", err)
	}
	return corpus, nil
}

func buildModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderScripted:
		return model.NewScriptedModel("scripted"), nil

	case config.ProviderOpenAI:
		var clientOpts []option.RequestOption
		if cfg.APIKey != "" {
			clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
		}
		client := openaisdk.NewClient(clientOpts...)
		return openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temperature
		}), nil

	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Name != "" {
				o.Model = anthropicmodel.ModelID(cfg.Name)
			}
			o.Temperature = cfg.Temperature
			o.APIKey = cfg.APIKey
		}), nil

	default:
		return nil, fmt.Errorf("bankdesk: unknown model provider %q", cfg.Provider)
	}
}

package bot

import (
	"context"
	"strings"

	"github.com/sllt/railbot/internal/ai"
	"github.com/sllt/railbot/internal/chatlog"
	"github.com/sllt/railbot/internal/config"
	"github.com/sllt/railbot/internal/session"
	"github.com/sllt/railbot/internal/store/redisstore"
	"github.com/sllt/railbot/internal/ticket"
	"go.uber.org/zap"
)

// Build assembles an Engine from configuration. The returned cleanup closes
// whatever external connections were opened. Both entrypoints (HTTP server
// and queue bridge) share this wiring.
func Build(cfg config.Config, log *zap.Logger) (*Engine, func(), error) {
	reg := ai.NewRegistry()
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m,
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	provider, err := reg.Get(context.Background(), cfg.AIProvider, cfg.AIModel)
	if err != nil {
		return nil, nil, err
	}

	var cleanups []func()
	cleanup := func() {
		for _, f := range cleanups {
			f()
		}
	}

	var cache ticket.SearchCache
	if cfg.RedisAddr != "" {
		rs := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SearchCacheTTL, log)
		cleanups = append(cleanups, func() { _ = rs.Close() })
		cache = rs
	}

	var archive *chatlog.Repo
	if cfg.ChatlogDSN != "" {
		db, err := chatlog.Open(cfg.ChatlogDSN)
		if err != nil {
			// the archive is an optional mirror; the engine runs without it
			log.Warn("message archive disabled", zap.Error(err))
		} else {
			archive = chatlog.NewRepo(db)
		}
	}

	engine := New(
		ticket.NewParser(log),
		ticket.NewClient(cfg.TicketAPIBaseURL, cfg.TicketAPITimeout, cache, log),
		ticket.NewRefiner(provider, log),
		session.NewStore(),
		archive,
		cfg.SessionIdleTTL,
		log,
	)
	return engine, cleanup, nil
}

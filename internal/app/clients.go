package app

import (
	"fmt"

	"github.com/studybuddy/studybuddy-backend/internal/clients/blob"
	"github.com/studybuddy/studybuddy-backend/internal/clients/llm"
	goredis "github.com/studybuddy/studybuddy-backend/internal/clients/redis"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type Clients struct {
	Blob  blob.Store
	Cache *goredis.Cache
	LLM   llm.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	store, err := blob.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init blob store: %w", err)
	}

	// cache is nil when REDIS_ADDR is unset; everything downstream is
	// nil-safe and falls back to in-process behaviour
	cache, err := goredis.NewCache(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis cache: %w", err)
	}

	llmClient, err := llm.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init llm client: %w", err)
	}

	return Clients{Blob: store, Cache: cache, LLM: llmClient}, nil
}

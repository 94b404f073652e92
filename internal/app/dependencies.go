package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/thuyngan/bookstore/internal/domain"
	"github.com/thuyngan/bookstore/internal/storage/memory"
	"github.com/thuyngan/bookstore/internal/storage/postgres"
)

// dependencies — собранный слой хранилища. Один и тот же набор интерфейсов
// получается и из PostgreSQL, и из in-memory стора, остальное приложение
// разницы не видит.
type dependencies struct {
	gateway    domain.Gateway
	bookRepo   domain.BookRepository
	outboxRepo domain.OutboxRepository
	// healthCheck проверяет доступность хранилища; nil для in-memory.
	healthCheck func() error
	close       func() error
}

// buildDependencies выбирает backend хранилища: PostgreSQL при заданном DSN,
// иначе in-memory (локальная разработка и тесты).
func buildDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*dependencies, error) {
	if cfg.PostgresDSN == "" {
		logger.Info("postgres DSN не задан, используется in-memory хранилище")
		store := memory.NewStore()
		return &dependencies{
			gateway:    store,
			bookRepo:   store,
			outboxRepo: store,
			close:      func() error { return nil },
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	if err := store.MigrateUp(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info("postgres подключен, миграции применены")

	return &dependencies{
		gateway:    postgres.NewGateway(store),
		bookRepo:   postgres.NewCatalogRepository(store),
		outboxRepo: postgres.NewOutboxRepository(store),
		healthCheck: func() error {
			return store.Ping(context.Background())
		},
		close: store.Close,
	}, nil
}

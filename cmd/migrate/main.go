// Command migrate opens the component store database and applies pending
// schema migrations.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/vkazarins/pagecraft/internal/logging"
	"github.com/vkazarins/pagecraft/internal/server/config"
	"github.com/vkazarins/pagecraft/internal/server/shared/db"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	m, err := db.NewPostgresStoreManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "migration failed", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	logger.Info(ctx, "migrations applied")
}

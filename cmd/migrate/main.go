package main

import (
	"context"
	"time"

	"wanderlust/internal/migrations/mongo"
	"wanderlust/pkg/config"
)

const (
	JobName    = "mongo-migration"
	jobTimeout = 2 * time.Minute
)

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	collections := mongo.Collections()
	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName, "collections", len(collections))
	if err := mongo.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cancel()
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}

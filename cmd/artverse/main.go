// Command artverse runs the ArtVerse marketplace API and its maintenance
// tasks.
package main

import (
	"context"
	"os"
	"time"

	"github.com/fjod/artverse/internal/config"
	"github.com/fjod/artverse/internal/logger"
	"github.com/fjod/artverse/internal/repository"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "artverse",
	Short: "ArtVerse marketplace API",
	Long: `ArtVerse connects artists and buyers: artwork sales, commissions,
video courses, carts, wishlists and an artist dashboard.

Settings come from .env, an optional YAML file (--config) and the
environment, later sources winning.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the logger every command
// starts from.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func connectMongo(ctx context.Context, cfg *config.Config, log *zap.Logger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db, err := repository.Connect(ctx, repository.MongoConfig{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.DBName,
		AppName:  "artverse",
		MaxPool:  100,
		MinPool:  10,
	})
	if err != nil {
		return nil, err
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.DBName))
	return db, nil
}

func disconnectMongo(db *mongo.Database, log *zap.Logger) {
	if err := repository.Disconnect(db, 5*time.Second); err != nil {
		log.Warn("error disconnecting from MongoDB", zap.Error(err))
	}
}

func syncLogger(log *zap.Logger) {
	// stderr/stdout sync errors are not actionable
	_ = log.Sync()
}

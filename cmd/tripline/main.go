package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tripline/tripline/internal/clock"
	"github.com/tripline/tripline/internal/config"
	"github.com/tripline/tripline/internal/logger"
	"github.com/tripline/tripline/internal/migration"
	"github.com/tripline/tripline/internal/observability"
	"github.com/tripline/tripline/internal/server"
	"github.com/tripline/tripline/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)

	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

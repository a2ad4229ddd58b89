package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/hoikulink/tsumugi/internal/clock"
	"github.com/hoikulink/tsumugi/internal/migration"
	"github.com/hoikulink/tsumugi/internal/observability"
	"github.com/hoikulink/tsumugi/internal/server"
	"github.com/hoikulink/tsumugi/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

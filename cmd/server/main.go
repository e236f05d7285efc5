package main

import (
	"github.com/cinematch/backend/internal/server"
	"github.com/cinematch/backend/internal/util"
	"github.com/cinematch/backend/pkg/logger"
	"github.com/cinematch/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}

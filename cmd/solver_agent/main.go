package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"linear-solver/internal/agent"
	"linear-solver/internal/config"
	"linear-solver/internal/logger"
)

func main() {
	config.InitConfig("configs/.env")
	logger.InitAgentLogger()
	defer logger.CloseLogger()

	// Единственный аргумент - адрес источника задач
	endpoint := config.AppConfig.TaskSourceURL
	if len(os.Args) > 1 {
		endpoint = os.Args[1]
	}

	if config.AppConfig.MetricsPort != "" {
		agent.StartMetricsServer(config.AppConfig.MetricsPort)
	}

	client, err := agent.NewTaskClient(endpoint, config.AppConfig.RequestTimeout)
	if err != nil {
		logger.ERROR.Println(err)
		logger.CloseLogger()
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.INFO.Println("Agent started, task source " + endpoint)

	if err := agent.NewWorker(client).Run(ctx); err != nil {
		logger.ERROR.Println(err)
		client.Close()
		logger.CloseLogger()
		os.Exit(1)
	}
}

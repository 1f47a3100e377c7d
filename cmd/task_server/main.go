package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"linear-solver/internal/config"
	"linear-solver/internal/db"
	"linear-solver/internal/grpc"
	"linear-solver/internal/logger"
	"linear-solver/internal/orchestrator"
)

func main() {
	config.InitConfig(".env")
	logger.InitServerLogger()
	defer logger.CloseLogger()

	// Инициализируем базу данных
	err := db.InitDB(config.AppConfig.DBPath)
	if err != nil {
		logger.ERROR.Fatalf("Ошибка инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	source := orchestrator.NewSource(config.AppConfig.TaskSize, config.AppConfig.TaskLimit, uint64(time.Now().UnixNano()))

	httpServer := &http.Server{
		Addr:    ":" + config.AppConfig.ServerPort,
		Handler: orchestrator.NewRouter(source),
	}

	go func() {
		logger.INFO.Println("HTTP сервер запущен на порту " + config.AppConfig.ServerPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ERROR.Fatalf("Ошибка запуска HTTP сервера: %v", err)
		}
	}()

	// Используем порт HTTP + 1 для gRPC
	httpPort, err := strconv.Atoi(config.AppConfig.ServerPort)
	if err != nil {
		logger.ERROR.Fatalf("SERVER_PORT не является числом: %v", err)
	}
	grpcAddress := fmt.Sprintf(":%d", httpPort+1)

	grpcServer, addr, err := grpc.StartGRPCServer(grpcAddress, source)
	if err != nil {
		logger.ERROR.Fatalf("Ошибка запуска gRPC сервера: %v", err)
	}
	logger.INFO.Println("gRPC сервер слушает " + addr.String())

	// Ожидаем сигнал для остановки
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.INFO.Println("Получен сигнал остановки, завершаем работу серверов...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.LogERROR("Ошибка остановки HTTP сервера: " + err.Error())
	}
	grpcServer.GracefulStop()

	logger.INFO.Printf("Источник задач остановлен, выдано задач: %d", source.Issued())
}

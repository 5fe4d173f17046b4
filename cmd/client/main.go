package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tactics-client/internal/engine"
	"tactics-client/internal/network"
	"tactics-client/internal/version"
	"tactics-client/pkg/logger"
)

const tickRate = 60 // тиков в секунду

func init() {
	// .env удобен для локальной разработки; в проде его просто нет.
	_ = godotenv.Load()
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var configPath string
	var serverURL string
	var token string
	var player string
	flag.StringVar(&configPath, "config", "", "Path to YAML board config (empty for defaults)")
	flag.StringVar(&serverURL, "server", "ws://localhost:8080/ws", "Authority websocket URL")
	flag.StringVar(&token, "token", "", "Session token")
	flag.StringVar(&player, "player", "", "Player ID (owner of our units)")
	flag.Parse()

	logger.Log.Info("Starting tactics client...")
	logger.Log.Info(version.String())

	if player == "" {
		player = os.Getenv("TC_PLAYER_ID")
	}
	if token == "" {
		token = os.Getenv("TC_TOKEN")
	}

	cfg := engine.NewConfig()
	if configPath != "" {
		var err error
		cfg, err = engine.LoadConfig(configPath)
		if err != nil {
			logger.Log.Fatal("Failed to load config: ", err)
		}
	}

	// 2. Сборка ядра
	dispatcher := network.NewDispatcher()
	sink := newLogSink()

	eng := engine.New(cfg, player, token, sink, network.Discard{}, dispatcher)

	client, err := network.Dial(serverURL, token, eng)
	if err != nil {
		logger.Log.Fatal("Failed to connect: ", err)
	}
	defer client.Close()

	// Ядро собиралось до коннекта с заглушкой вместо Authority,
	// чтобы Dial мог получить готовый приемник снапшотов. Теперь
	// переключаем отправку намерений на живое соединение.
	eng.SetAuthority(client)

	// Слушаем события ядра и показываем их в логе
	events := dispatcher.Subscribe("headless")
	go func() {
		for evt := range events {
			logger.Log.WithField("type", evt.Type).WithField("entity", evt.EntityID).Info("event")
		}
	}()

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 3. Тиковый цикл
	// Безголовый клиент не трогает указатель: жесты спят, ядро живет
	// на одних снапшотах. Для ручных сценариев есть Engine.Buy.
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			eng.Tick(engine.PointerSample{})
		case <-stop:
			logger.Log.Info("Shutting down...")
			return
		}
	}
}

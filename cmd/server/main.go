package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/api"
	"github.com/cbodonnell/dirtydishes/pkg/config"
	"github.com/cbodonnell/dirtydishes/pkg/game"
	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/cbodonnell/dirtydishes/pkg/network"
	"github.com/cbodonnell/dirtydishes/pkg/sessions"
	"github.com/cbodonnell/dirtydishes/pkg/version"
	"github.com/cbodonnell/dirtydishes/pkg/workers"
)

func main() {
	configPath := flag.String("config", "", fmt.Sprintf("Path to a YAML config file (default $%s)", config.EnvConfigPath))
	port := flag.Int("port", 0, "Port to listen on, overrides the config file")
	logLevel := flag.String("log-level", "", "Log level, overrides the config file")
	printConfig := flag.Bool("print-config", false, "Print the default config and exit")
	flag.Parse()

	if *printConfig {
		fmt.Print(config.DefaultYAML())
		return
	}

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Server.LogLevel = *logLevel
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting kitchen server version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverMessageChannelSize := 100
	serverMessageChan := make(chan workers.ServerMessage, serverMessageChannelSize)

	kitchenSettings := cfg.KitchenSettings()
	sessionManager := sessions.NewSessionManager(sessions.NewSessionManagerOptions{
		NewKitchen: func(sessionID string) *game.KitchenManager {
			return game.NewKitchenManager(game.NewKitchenManagerOptions{
				SessionID:         sessionID,
				ServerMessageChan: serverMessageChan,
				GameLoopInterval:  cfg.Kitchen.LoopInterval.Std(),
				Settings:          kitchenSettings,
			})
		},
		MaxSessions: cfg.Sessions.MaxSessions,
	})
	defer sessionManager.CloseAll()

	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{
		ClientManager:  network.NewClientManager(),
		SessionManager: sessionManager,
		OriginPatterns: cfg.Server.OriginPatterns,
	})

	serverMessageWorker := workers.NewServerMessageWorker(workers.NewServerMessageWorkerOptions{
		Broadcaster:       networkManager,
		ServerMessageChan: serverMessageChan,
		WriteTimeout:      5 * time.Second,
	})
	go serverMessageWorker.Start(ctx)

	sessionReaperWorker := workers.NewSessionReaperWorker(workers.NewSessionReaperWorkerOptions{
		Sessions: sessionManager,
		Interval: cfg.Sessions.ReapInterval.Std(),
		IdleTTL:  cfg.Sessions.IdleTimeout.Std(),
	})
	go sessionReaperWorker.Start(ctx)

	apiServerOpts := api.NewAPIServerOptions{
		Port:           cfg.Server.Port,
		SessionManager: sessionManager,
		WSHandler:      networkManager.WSServer,
	}
	tlsCertFile := os.Getenv("DISHES_TLS_CERT_FILE")
	tlsKeyFile := os.Getenv("DISHES_TLS_KEY_FILE")
	if tlsCertFile != "" && tlsKeyFile != "" {
		apiServerOpts.TLS = &api.TLSConfig{
			CertFile: tlsCertFile,
			KeyFile:  tlsKeyFile,
		}
	}
	apiServer := api.NewAPIServer(apiServerOpts)
	go apiServer.Start()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
}

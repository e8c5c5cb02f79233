package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JaySpiffy/void-reckoning-engine-sub001/internal/api"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using environment variables only")
		}
	} else {
		log.Println("loaded environment from ../.env")
	}

	log.Println("================================")
	log.Println(" tactical combat core")
	log.Println("================================")

	port := getEnvWithDefault("PORT", "3000")

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	sockDir := getEnvWithDefault("BATTLE_SOCKET_DIR", "")
	registry := api.NewBattleRegistry(sockDir)

	operatorAuthEnabled := os.Getenv("OPERATOR_AUTH_ENABLED") == "true"
	var sessionManager *api.SessionManager
	if operatorAuthEnabled {
		operatorID := getEnvInt64("OPERATOR_ID", 0)
		sessionManager = api.NewSessionManager(operatorID)
		log.Printf("operator authentication ENABLED (operator id: %d)", operatorID)
	} else {
		log.Println("operator authentication DISABLED (set OPERATOR_AUTH_ENABLED=true to enable)")
	}

	server := api.NewServerWithAuth(registry, sessionManager, operatorAuthEnabled)

	go func() {
		addr := ":" + port
		log.Printf("control plane on http://localhost%s", addr)
		log.Printf("metrics on http://localhost%s/metrics", addr)

		if err := server.Start(addr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("ready. press ctrl+c to stop.")
	<-quit

	log.Println("shutting down...")
	server.Stop()
	log.Println("goodbye")
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

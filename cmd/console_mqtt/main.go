package main

import (
	"log"

	"github.com/relabs-tech/balance_board/internal/app"
	"github.com/relabs-tech/balance_board/internal/config"
)

func main() {
	log.Println("starting balance board console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("balance_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

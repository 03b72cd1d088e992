// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/relabs-tech/balance_board/internal/app"
	"github.com/relabs-tech/balance_board/internal/config"
)

func main() {
	log.Println("starting balance board web server (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("balance_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("Note: live data requires the monitor to be running (./monitor)")

	if err := app.RunWeb(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

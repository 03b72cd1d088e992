package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/balance_board/internal/config"
	"github.com/relabs-tech/balance_board/internal/status"
)

// RunConsoleMQTT subscribes to the board's status topics and prints every
// update, for watching a live board from another machine.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to status (zone changes)
	statusToken := client.Subscribe(cfg.TopicStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var u status.Update
		if err := json.Unmarshal(msg.Payload(), &u); err != nil {
			log.Printf("console: status unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[ZONE]  %-6s  TILT=%5.2f deg  calibrated=%v\n",
			u.Zone, u.MagnitudeDeg, u.Calibrated,
		)
	})
	statusToken.Wait()
	if statusToken.Error() != nil {
		return statusToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicStatus)

	// Subscribe to magnitude (numeric refreshes)
	magToken := client.Subscribe(cfg.TopicMagnitude, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m status.Magnitude
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("console: magnitude unmarshal error: %v", err)
			return
		}

		fmt.Printf("[TILT]  %5.2f deg\n", m.MagnitudeDeg)
	})
	magToken.Wait()
	if magToken.Error() != nil {
		return magToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicMagnitude)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

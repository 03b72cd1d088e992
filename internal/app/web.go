package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/balance_board/internal/config"
	"github.com/relabs-tech/balance_board/internal/status"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsHub fans each status update out to every connected websocket client.
type wsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *wsHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *wsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *wsHub) broadcast(u status.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(u); err != nil {
			log.Printf("web: websocket write error: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// RunWeb serves the latest board status over HTTP: a JSON snapshot at
// /api/status, a live websocket stream at /ws, and static files from ./web.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu         sync.RWMutex
		lastStatus status.Update
		haveStatus bool
	)
	hub := newWSHub()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to zone status
	statusToken := client.Subscribe(cfg.TopicStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var u status.Update
		if err := json.Unmarshal(msg.Payload(), &u); err != nil {
			log.Printf("web: status unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastStatus = u
		haveStatus = true
		mu.Unlock()
		hub.broadcast(u)
	})
	statusToken.Wait()
	if statusToken.Error() != nil {
		return statusToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicStatus)

	// 3) Numeric refreshes update the snapshot between zone changes
	magToken := client.Subscribe(cfg.TopicMagnitude, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m status.Magnitude
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("web: magnitude unmarshal error: %v", err)
			return
		}
		mu.Lock()
		if !haveStatus {
			mu.Unlock()
			return
		}
		lastStatus.MagnitudeDeg = m.MagnitudeDeg
		lastStatus.Time = m.Time
		u := lastStatus
		mu.Unlock()
		hub.broadcast(u)
	})
	magToken.Wait()
	if magToken.Error() != nil {
		return magToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicMagnitude)

	// 4) JSON API endpoint: latest status
	http.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveStatus {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastStatus); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 5) Live stream endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		hub.add(conn)

		// Send the current snapshot right away so new clients don't wait
		// for the next zone change.
		mu.RLock()
		u, have := lastStatus, haveStatus
		mu.RUnlock()
		if have {
			if err := conn.WriteJSON(u); err != nil {
				hub.remove(conn)
				return
			}
		}

		// Drain (and ignore) client messages to detect disconnects.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.remove(conn)
					return
				}
			}
		}()
	})

	// 6) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/mpu6886/internal/config"
	imu_sample "github.com/relabs-tech/mpu6886/internal/imu"
	"github.com/relabs-tech/mpu6886/internal/orientation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// webState holds the latest samples received over MQTT plus the set of
// websocket clients to fan poses out to.
type webState struct {
	mu         sync.RWMutex
	lastPose   orientation.Pose
	havePose   bool
	lastSample imu_sample.Sample
	haveSample bool

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

func RunWeb() error {
	cfg := config.Get()

	state := &webState{clients: make(map[*websocket.Conn]struct{})}

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to pose topic, update lastPose and fan out to websockets
	token := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("MQTT pose unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.lastPose = p
		state.havePose = true
		state.mu.Unlock()

		state.broadcastPose(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicPose)

	// 3) Subscribe to converted IMU samples
	imuToken := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s imu_sample.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("MQTT imu unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.lastSample = s
		state.haveSample = true
		state.mu.Unlock()
	})
	imuToken.Wait()
	if imuToken.Error() != nil {
		return imuToken.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicIMU)

	// 4) JSON API endpoints
	http.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		state.mu.RLock()
		defer state.mu.RUnlock()

		if !state.havePose {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.lastPose); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	http.HandleFunc("/api/imu", func(w http.ResponseWriter, r *http.Request) {
		state.mu.RLock()
		defer state.mu.RUnlock()

		if !state.haveSample {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.lastSample); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 5) Live pose stream over websocket
	http.HandleFunc("/ws", state.handlePoseWS)

	// 6) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// handlePoseWS registers the connection for pose fan-out and replays the
// latest pose immediately so a fresh client does not wait a full tick.
func (s *webState) handlePoseWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	s.mu.RLock()
	pose, have := s.lastPose, s.havePose
	s.mu.RUnlock()
	if have {
		if err := conn.WriteJSON(pose); err != nil {
			log.Printf("websocket initial pose write error: %v", err)
		}
	}

	// Register only after the replay write so broadcastPose never writes
	// concurrently with it. One writer per connection.
	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	s.clientsMu.Unlock()

	// Drain reads until the client goes away; writes happen in broadcastPose.
	go func() {
		defer func() {
			s.clientsMu.Lock()
			delete(s.clients, conn)
			s.clientsMu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("websocket read error: %v", err)
				}
				return
			}
		}
	}()
}

func (s *webState) broadcastPose(payload []byte) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error, dropping client: %v", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

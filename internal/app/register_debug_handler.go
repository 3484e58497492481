// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/mpu6886"
	"github.com/relabs-tech/mpu6886/internal/config"
	imu_sample "github.com/relabs-tech/mpu6886/internal/imu"
	"github.com/relabs-tech/mpu6886/internal/orientation"
)

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn *websocket.Conn
	Dev  *mpu6886.Dev
}

// RegisterResponse is the single response envelope for all debug actions.
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "error"
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	RegisterMap []mpu6886.RegisterInfo `json:"register_map,omitempty"`
}

// RegisterConfigFile represents the JSON structure for exported register configuration
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// NewRegisterDebugWS returns the WebSocket handler for register debugging
// against the given device handle.
func NewRegisterDebugWS(dev *mpu6886.Dev) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("register_debug: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		session := &RegisterDebugSession{Conn: conn, Dev: dev}

		// Send register map on connection
		if err := session.sendRegisterMap(); err != nil {
			log.Printf("register_debug: error sending register map: %v", err)
			return
		}

		// Message loop
		for {
			var rawMsg map[string]interface{}
			err := conn.ReadJSON(&rawMsg)
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("register_debug: websocket error: %v", err)
				}
				break
			}

			action, ok := rawMsg["action"].(string)
			if !ok {
				session.sendError("missing or invalid action field")
				continue
			}

			// Route based on action
			switch action {
			case "get_map":
				session.sendRegisterMap()
			case "read":
				session.handleRead(rawMsg)
			case "read_all":
				session.handleReadAll(rawMsg)
			case "write":
				session.handleWrite(rawMsg)
			case "init":
				session.handleInit(rawMsg)
			case "export_config":
				session.handleExportConfig(rawMsg)
			default:
				session.sendError(fmt.Sprintf("unknown action: %s", action))
			}
		}
	}
}

func (s *RegisterDebugSession) handleRead(rawMsg map[string]interface{}) {
	addr, _ := rawMsg["addr"].(string)
	if addr == "" {
		s.sendError("missing addr field")
		return
	}

	// Parse hex address
	var addrByte byte
	if _, err := fmt.Sscanf(addr, "0x%X", &addrByte); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}

	value, err := s.Dev.ReadRegister(addrByte)
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Address:   addr,
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleReadAll(rawMsg map[string]interface{}) {
	// Walk the register map; reserved addresses stay untouched.
	regMap := make(map[string]string)
	for _, info := range mpu6886.RegisterMap() {
		var addrByte byte
		if _, err := fmt.Sscanf(info.Address, "0x%X", &addrByte); err != nil {
			continue
		}
		value, err := s.Dev.ReadRegister(addrByte)
		if err != nil {
			s.sendError(fmt.Sprintf("read all error at %s: %v", info.Address, err))
			return
		}
		regMap[info.Address] = fmt.Sprintf("0x%02X", value)
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Registers: regMap,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleWrite(rawMsg map[string]interface{}) {
	addr, _ := rawMsg["addr"].(string)
	valueStr, _ := rawMsg["value"].(string)

	if addr == "" || valueStr == "" {
		s.sendError("missing addr or value field")
		return
	}

	// Parse hex address and value
	var addrByte, valueByte byte
	if _, err := fmt.Sscanf(addr, "0x%X", &addrByte); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}
	if _, err := fmt.Sscanf(valueStr, "0x%X", &valueByte); err != nil {
		s.sendError(fmt.Sprintf("invalid value format: %s", valueStr))
		return
	}

	cfg := config.Get()
	if !isRegisterWritable(addrByte, cfg.RegisterDebugAllowedRanges) {
		s.sendError(fmt.Sprintf("register 0x%02X not in allowed write ranges", addrByte))
		return
	}

	if err := s.Dev.WriteRegister(addrByte, valueByte); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Address:   addr,
		Value:     valueStr,
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleInit(rawMsg map[string]interface{}) {
	if err := s.Dev.Init(); err != nil {
		s.sendError(fmt.Sprintf("reinit error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:    "status",
		Status:  "initialized",
		Message: "device reinitialized successfully",
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleExportConfig(rawMsg map[string]interface{}) {
	regMap := make(map[string]string)
	for _, info := range mpu6886.RegisterMap() {
		var addrByte byte
		if _, err := fmt.Sscanf(info.Address, "0x%X", &addrByte); err != nil {
			continue
		}
		value, err := s.Dev.ReadRegister(addrByte)
		if err != nil {
			s.sendError(fmt.Sprintf("export error at %s: %v", info.Address, err))
			return
		}
		regMap[info.Address] = fmt.Sprintf("0x%02X", value)
	}

	configFile := RegisterConfigFile{
		Version:   1,
		Device:    "mpu6886",
		Timestamp: time.Now().Format(time.RFC3339),
		Registers: regMap,
	}

	// Send as download
	configJSON, _ := json.Marshal(configFile)
	rawResp := map[string]interface{}{
		"type":     "export_config",
		"message":  "config exported",
		"config":   string(configJSON),
		"filename": fmt.Sprintf("mpu6886_%s_registers.json", time.Now().Format("20060102_150405")),
	}
	s.Conn.WriteJSON(rawResp)
}

func (s *RegisterDebugSession) sendRegisterMap() error {
	resp := RegisterResponse{
		Type:        "register_map",
		RegisterMap: mpu6886.RegisterMap(),
	}
	return s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) sendError(message string) {
	resp := RegisterResponse{
		Type:    "error",
		Message: message,
	}
	s.Conn.WriteJSON(resp)
}

// NewIMUDataHandler serves one live converted sample via REST API.
func NewIMUDataHandler(dev *mpu6886.Dev) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		raw, err := dev.ReadRaw()
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error": "%v"}`, err), http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(imu_sample.FromReading(dev.Convert(raw)))
	}
}

// NewOrientationHandler serves the live tilt estimate via REST API.
func NewOrientationHandler(dev *mpu6886.Dev) http.HandlerFunc {
	src := orientation.NewDeviceSource(dev)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		pose, err := src.Next()
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error": "%v"}`, err), http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(pose)
	}
}

// isRegisterWritable checks if a register address is in the allowed write
// ranges. Ranges look like "0x19-0x20,0x37-0x38,0x6B"; empty means no
// writes allowed.
func isRegisterWritable(addr byte, allowedRanges string) bool {
	if allowedRanges == "" {
		return false
	}

	for _, part := range strings.Split(allowedRanges, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lowStr, highStr, isRange := strings.Cut(part, "-")
		low, err := strconv.ParseUint(strings.TrimSpace(lowStr), 0, 8)
		if err != nil {
			log.Printf("register_debug: invalid allowed range %q: %v", part, err)
			continue
		}
		high := low
		if isRange {
			high, err = strconv.ParseUint(strings.TrimSpace(highStr), 0, 8)
			if err != nil {
				log.Printf("register_debug: invalid allowed range %q: %v", part, err)
				continue
			}
		}

		if uint64(addr) >= low && uint64(addr) <= high {
			return true
		}
	}
	return false
}

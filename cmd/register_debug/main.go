// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/mpu6886/internal/app"
	"github.com/relabs-tech/mpu6886/internal/config"
)

func main() {
	configPath := flag.String("config", "./mpu6886_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting MPU-6886 register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	log.Println("Initializing MPU-6886...")
	dev, err := app.OpenDevice(cfg)
	if err != nil {
		log.Fatalf("failed to initialize MPU-6886: %v", err)
	}
	log.Printf("device ready: %s", dev)

	http.HandleFunc("/ws", app.NewRegisterDebugWS(dev))

	// API endpoints for live IMU data and tilt estimate
	http.HandleFunc("/api/imu", app.NewIMUDataHandler(dev))
	http.HandleFunc("/api/orientation", app.NewOrientationHandler(dev))

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost%s in your browser", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

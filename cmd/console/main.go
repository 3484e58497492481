// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/mpu6886/internal/app"
	"github.com/relabs-tech/mpu6886/internal/config"
)

func main() {
	configPath := flag.String("config", "./mpu6886_config.txt", "path to configuration file")
	mock := flag.Bool("mock", false, "print a synthetic pose stream without MQTT")
	flag.Parse()

	if *mock {
		if err := app.RunMockConsole(); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	log.Println("starting mpu6886 console (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

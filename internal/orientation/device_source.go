// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"

	"github.com/relabs-tech/mpu6886"
)

type deviceSource struct {
	dev *mpu6886.Dev
}

// NewDeviceSource wraps an initialized MPU-6886 handle as an orientation
// source. Each Next reads one accelerometer sample and returns the tilt
// estimate; Yaw stays 0 until something fuses a heading in.
func NewDeviceSource(dev *mpu6886.Dev) Source {
	return &deviceSource{dev: dev}
}

func (s *deviceSource) Next() (Pose, error) {
	roll, pitch, err := s.dev.AccAngles()
	if err != nil {
		return Pose{}, fmt.Errorf("imu tilt estimate: %w", err)
	}
	return Pose{Roll: roll, Pitch: pitch}, nil
}

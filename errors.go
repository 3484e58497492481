// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6886

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a range, clock or bandwidth value is
// outside the supported set. Unreachable when callers stick to the exported
// constants.
var ErrInvalidConfig = errors.New("mpu6886: configuration value outside supported set")

// ErrNoFIFOData is returned by ReadFIFO when the FIFO holds no frame.
var ErrNoFIFOData = errors.New("mpu6886: no data in FIFO")

// TransportError wraps a failed bus transaction. The underlying bus error is
// propagated unchanged; the driver never retries.
type TransportError struct {
	Op  string // "read" or "write"
	Reg byte
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mpu6886: %s register 0x%02X: %v", e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IdentityError reports an unexpected WHO_AM_I value during Init, which means
// the bus is wired to an incompatible or absent device.
type IdentityError struct {
	Got byte
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("mpu6886: unexpected WHO_AM_I 0x%02X (want 0x%02X)", e.Got, whoAmIValue)
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6886

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/physic"
)

// regWrite records one register write seen by the fake bus.
type regWrite struct {
	reg byte
	val byte
}

// fakeBus is a stateful in-memory i2c.Bus. Reads return the current register
// contents, burst reads walk consecutive addresses, writes are logged so
// tests can assert ordering. Errors can be injected per register.
type fakeBus struct {
	regs   map[byte]byte
	writes []regWrite

	readErr     error
	readErrReg  int // -1 = any register
	writeErr    error
	writeErrReg int
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		regs:        map[byte]byte{},
		readErrReg:  -1,
		writeErrReg: -1,
	}
}

// newReadyBus returns a fake bus that passes the identity check.
func newReadyBus() *fakeBus {
	b := newFakeBus()
	b.regs[regWhoAmI] = whoAmIValue
	return b
}

func (b *fakeBus) failReadsOn(reg byte, err error) {
	b.readErr = err
	b.readErrReg = int(reg)
}

func (b *fakeBus) failWritesOn(reg byte, err error) {
	b.writeErr = err
	b.writeErrReg = int(reg)
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	switch {
	case len(w) == 1 && len(r) > 0: // register read / burst read
		reg := w[0]
		if b.readErr != nil && (b.readErrReg == -1 || byte(b.readErrReg) == reg) {
			return b.readErr
		}
		for i := range r {
			r[i] = b.regs[reg+byte(i)]
		}
		return nil
	case len(w) == 2 && len(r) == 0: // register write
		reg, val := w[0], w[1]
		if b.writeErr != nil && (b.writeErrReg == -1 || byte(b.writeErrReg) == reg) {
			return b.writeErr
		}
		b.regs[reg] = val
		b.writes = append(b.writes, regWrite{reg: reg, val: val})
		return nil
	}
	return errors.New("fakeBus: unexpected transaction shape")
}

func (b *fakeBus) String() string { return "fake" }

func (b *fakeBus) SetSpeed(f physic.Frequency) error { return nil }

// writesTo returns the values written to reg, in order.
func (b *fakeBus) writesTo(reg byte) []byte {
	var out []byte
	for _, w := range b.writes {
		if w.reg == reg {
			out = append(out, w.val)
		}
	}
	return out
}

// noDelay replaces time.Sleep in tests.
func noDelay(d time.Duration) {}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6886

// AccelRange selects the accelerometer full-scale range. Each range maps to a
// fixed sensitivity divisor (LSB per g); a larger range gives coarser
// resolution.
type AccelRange byte

const (
	Range2G AccelRange = iota
	Range4G
	Range8G
	Range16G
)

// Sensitivity divisors per full-scale range: divisor = 2^15 / range.
var accelSens = [4]float64{16384, 8192, 4096, 2048}

// Sensitivity returns the divisor in LSB per g.
func (r AccelRange) Sensitivity() float64 {
	if !r.valid() {
		return accelSens[Range2G]
	}
	return accelSens[r]
}

func (r AccelRange) valid() bool { return r <= Range16G }

// bits returns the FS_SEL field value, shifted into register position.
func (r AccelRange) bits() byte { return byte(r) << fsSelShift }

func accelRangeFromBits(b byte) AccelRange {
	return AccelRange(b&maskFSSel) >> fsSelShift
}

func (r AccelRange) String() string {
	switch r {
	case Range2G:
		return "±2g"
	case Range4G:
		return "±4g"
	case Range8G:
		return "±8g"
	case Range16G:
		return "±16g"
	}
	return "invalid"
}

// GyroRange selects the gyroscope full-scale range, with a matching
// sensitivity divisor in LSB per °/s.
type GyroRange byte

const (
	Range250DPS GyroRange = iota
	Range500DPS
	Range1000DPS
	Range2000DPS
)

var gyroSens = [4]float64{131, 65.5, 32.8, 16.4}

// Sensitivity returns the divisor in LSB per °/s.
func (r GyroRange) Sensitivity() float64 {
	if !r.valid() {
		return gyroSens[Range250DPS]
	}
	return gyroSens[r]
}

func (r GyroRange) valid() bool { return r <= Range2000DPS }

func (r GyroRange) bits() byte { return byte(r) << fsSelShift }

func gyroRangeFromBits(b byte) GyroRange {
	return GyroRange(b&maskFSSel) >> fsSelShift
}

func (r GyroRange) String() string {
	switch r {
	case Range250DPS:
		return "±250°/s"
	case Range500DPS:
		return "±500°/s"
	case Range1000DPS:
		return "±1000°/s"
	case Range2000DPS:
		return "±2000°/s"
	}
	return "invalid"
}

// ClockSource selects the device clock via the CLKSEL bits of PWR_MGMT_1.
// Values 1-5 all auto-select the best available source (PLL if ready,
// internal oscillator otherwise).
type ClockSource byte

const (
	ClockInternal ClockSource = 0 // internal 20 MHz oscillator
	ClockAutoPLL  ClockSource = 1 // PLL if ready, else internal oscillator
	ClockStopped  ClockSource = 7 // stops the clock, timing generator in reset
)

func (c ClockSource) valid() bool { return c <= ClockStopped }

func (c ClockSource) bits() byte { return byte(c) & maskClkSel }

// AccelBandwidth selects the accelerometer digital low pass filter. The field
// spans ACCEL_CONFIG_2 bits 3:0; bit 3 set bypasses the filter entirely.
type AccelBandwidth byte

const (
	Bandwidth218Hz AccelBandwidth = 0x00
	Bandwidth99Hz  AccelBandwidth = 0x02
	Bandwidth45Hz  AccelBandwidth = 0x03
	Bandwidth21Hz  AccelBandwidth = 0x04
	Bandwidth10Hz  AccelBandwidth = 0x05
	Bandwidth5Hz   AccelBandwidth = 0x06
	Bandwidth420Hz AccelBandwidth = 0x07
	BandwidthNone  AccelBandwidth = 0x08 // DLPF bypassed, ~1046 Hz
)

func (b AccelBandwidth) valid() bool {
	switch b {
	case Bandwidth218Hz, Bandwidth99Hz, Bandwidth45Hz, Bandwidth21Hz,
		Bandwidth10Hz, Bandwidth5Hz, Bandwidth420Hz, BandwidthNone:
		return true
	}
	return false
}

func (b AccelBandwidth) bits() byte { return byte(b) & maskAccelDLPF }

// Freq returns the nominal 3 dB bandwidth in Hz.
func (b AccelBandwidth) Freq() float64 {
	switch b {
	case Bandwidth218Hz:
		return 218.1
	case Bandwidth99Hz:
		return 99.0
	case Bandwidth45Hz:
		return 44.8
	case Bandwidth21Hz:
		return 21.2
	case Bandwidth10Hz:
		return 10.2
	case Bandwidth5Hz:
		return 5.1
	case Bandwidth420Hz:
		return 420.0
	case BandwidthNone:
		return 1046.0
	}
	return 0
}

// GyroBandwidth selects the gyroscope digital low pass filter via the
// DLPF_CFG bits of CONFIG. Frequencies follow Table 16 of the datasheet.
type GyroBandwidth byte

const (
	GyroBandwidth250Hz GyroBandwidth = iota
	GyroBandwidth176Hz
	GyroBandwidth92Hz
	GyroBandwidth41Hz
	GyroBandwidth20Hz
	GyroBandwidth10Hz
	GyroBandwidth5Hz
	GyroBandwidth3281Hz
)

func (b GyroBandwidth) valid() bool { return b <= GyroBandwidth3281Hz }

func (b GyroBandwidth) bits() byte { return byte(b) & maskDLPFCfg }

// Temperature conversion constants, register map rev 4.2. These are fixed for
// the device family and independent of the range tables.
const (
	tempSensitivity = 326.8 // LSB per °C
	tempOffset      = 25.0  // °C at raw 0
)

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mpu6886 is an I2C driver for the TDK InvenSense MPU-6886 6-axis
// IMU (3-axis accelerometer, 3-axis gyroscope, temperature sensor).
//
// The driver owns the register map, the raw-to-physical conversion tables and
// the power-on sequence. It is synchronous and blocking; a Dev is not safe
// for concurrent use without external locking, because register updates go
// through a non-atomic read-modify-write.
package mpu6886

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// settleTime is how long the device needs after wake or reset before its
// registers are reliable.
const settleTime = 100 * time.Millisecond

// Opts holds construction options. The zero values of the range fields select
// the device power-on defaults (±2g, ±250°/s).
type Opts struct {
	Addr           uint16 // I2C address, DefaultAddr when 0
	AccelRange     AccelRange
	GyroRange      GyroRange
	Clock          ClockSource
	AccelBandwidth AccelBandwidth
	GyroBandwidth  GyroBandwidth

	// Delay is invoked for the settling wait after wake/reset. Defaults to
	// time.Sleep; tests inject a no-op.
	Delay func(time.Duration)
}

// DefaultOpts matches the configuration the original firmware brings the
// device up with.
var DefaultOpts = Opts{
	AccelRange:     Range2G,
	GyroRange:      Range250DPS,
	Clock:          ClockAutoPLL,
	AccelBandwidth: Bandwidth218Hz,
	GyroBandwidth:  GyroBandwidth176Hz,
}

// Raw is one unscaled sample straight off the sensor registers: signed 16-bit
// big-endian counts in burst order (accel X,Y,Z, temperature, gyro X,Y,Z).
type Raw struct {
	Ax, Ay, Az int16 // accel counts
	Temp       int16
	Gx, Gy, Gz int16 // gyro counts
}

// Reading is a Raw sample converted to physical units with the sensitivity
// divisors active at conversion time.
type Reading struct {
	Ax, Ay, Az float64 // g
	Gx, Gy, Gz float64 // °/s
	Temp       float64 // °C
}

// Dev is an MPU-6886 on an I2C bus. The bus handle is owned exclusively by
// the Dev; construction performs no I/O, Init must run before reads mean
// anything.
type Dev struct {
	dev   i2c.Dev
	opts  Opts
	delay func(time.Duration)

	// Last successfully written configuration; divisors used by the
	// conversion pipeline.
	accelRange AccelRange
	gyroRange  GyroRange
	accelSens  float64
	gyroSens   float64
}

// New wraps bus in a device handle. opts may be nil for DefaultOpts; the
// range and filter values in opts are applied during Init.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if !opts.AccelRange.valid() || !opts.GyroRange.valid() ||
		!opts.Clock.valid() || !opts.AccelBandwidth.valid() || !opts.GyroBandwidth.valid() {
		return nil, ErrInvalidConfig
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}
	delay := opts.Delay
	if delay == nil {
		delay = time.Sleep
	}
	d := &Dev{
		dev:        i2c.Dev{Bus: bus, Addr: addr},
		delay:      delay,
		accelRange: opts.AccelRange,
		gyroRange:  opts.GyroRange,
		accelSens:  opts.AccelRange.Sensitivity(),
		gyroSens:   opts.GyroRange.Sensitivity(),
	}
	d.opts = *opts
	return d, nil
}

// Init brings the device from power-on to a readable state:
// wake, settle, identity check, clock select, ranges, filters.
// Any failing step aborts; a Dev whose Init failed must not be read from.
func (d *Dev) Init() error {
	// The device powers up with SLEEP set; clear the whole register to wake.
	if err := d.writeReg(regPwrMgmt1, 0x00); err != nil {
		return err
	}
	d.delay(settleTime)

	id, err := d.readReg(regWhoAmI)
	if err != nil {
		return err
	}
	if id != whoAmIValue {
		return &IdentityError{Got: id}
	}

	// Clock select touches only CLKSEL; sleep/cycle/reset bits stay as-is.
	if err := d.modifyReg(regPwrMgmt1, maskClkSel, d.opts.Clock.bits()); err != nil {
		return err
	}
	if err := d.SetAccelRange(d.opts.AccelRange); err != nil {
		return err
	}
	if err := d.SetGyroRange(d.opts.GyroRange); err != nil {
		return err
	}
	if err := d.SetAccelBandwidth(d.opts.AccelBandwidth); err != nil {
		return err
	}
	return d.SetGyroBandwidth(d.opts.GyroBandwidth)
}

// Reset sets DEVICE_RESET and waits for the part to come back. All registers
// return to their power-on defaults (SLEEP included), so Init must run again.
func (d *Dev) Reset() error {
	if err := d.modifyReg(regPwrMgmt1, bitDeviceReset, bitDeviceReset); err != nil {
		return err
	}
	d.delay(settleTime)
	return nil
}

// SetAccelRange writes the accelerometer full-scale select and, on success,
// switches the conversion divisor. On a bus failure the previous range stays
// active so the driver's view matches the last written hardware state.
func (d *Dev) SetAccelRange(r AccelRange) error {
	if !r.valid() {
		return ErrInvalidConfig
	}
	if err := d.modifyReg(regAccelConfig, maskFSSel, r.bits()); err != nil {
		return err
	}
	d.accelRange = r
	d.accelSens = r.Sensitivity()
	return nil
}

// AccelRange returns the active accelerometer range (last successful write).
func (d *Dev) AccelRange() AccelRange { return d.accelRange }

// SetGyroRange writes the gyroscope full-scale select, same contract as
// SetAccelRange.
func (d *Dev) SetGyroRange(r GyroRange) error {
	if !r.valid() {
		return ErrInvalidConfig
	}
	if err := d.modifyReg(regGyroConfig, maskFSSel, r.bits()); err != nil {
		return err
	}
	d.gyroRange = r
	d.gyroSens = r.Sensitivity()
	return nil
}

// GyroRange returns the active gyroscope range (last successful write).
func (d *Dev) GyroRange() GyroRange { return d.gyroRange }

// ReadAccelRange reads the full-scale select back from the device.
func (d *Dev) ReadAccelRange() (AccelRange, error) {
	b, err := d.readReg(regAccelConfig)
	if err != nil {
		return 0, err
	}
	return accelRangeFromBits(b), nil
}

// ReadGyroRange reads the full-scale select back from the device.
func (d *Dev) ReadGyroRange() (GyroRange, error) {
	b, err := d.readReg(regGyroConfig)
	if err != nil {
		return 0, err
	}
	return gyroRangeFromBits(b), nil
}

// SetClockSource selects the device clock, touching only the CLKSEL bits of
// PWR_MGMT_1.
func (d *Dev) SetClockSource(c ClockSource) error {
	if !c.valid() {
		return ErrInvalidConfig
	}
	return d.modifyReg(regPwrMgmt1, maskClkSel, c.bits())
}

// ClockSource reads the CLKSEL bits back from the device.
func (d *Dev) ClockSource() (ClockSource, error) {
	b, err := d.readReg(regPwrMgmt1)
	if err != nil {
		return 0, err
	}
	return ClockSource(b & maskClkSel), nil
}

// SetAccelBandwidth configures the accelerometer DLPF.
func (d *Dev) SetAccelBandwidth(bw AccelBandwidth) error {
	if !bw.valid() {
		return ErrInvalidConfig
	}
	return d.modifyReg(regAccelConfig2, maskAccelDLPF, bw.bits())
}

// SetGyroBandwidth configures the gyroscope DLPF.
func (d *Dev) SetGyroBandwidth(bw GyroBandwidth) error {
	if !bw.valid() {
		return ErrInvalidConfig
	}
	return d.modifyReg(regConfig, maskDLPFCfg, bw.bits())
}

// SetSleep toggles the SLEEP bit.
func (d *Dev) SetSleep(enable bool) error {
	var v byte
	if enable {
		v = bitSleep
	}
	return d.modifyReg(regPwrMgmt1, bitSleep, v)
}

// SetTempEnabled toggles the temperature sensor. The register bit stores the
// disabled state, hence the inversion.
func (d *Dev) SetTempEnabled(enable bool) error {
	var v byte
	if !enable {
		v = bitTempDis
	}
	return d.modifyReg(regPwrMgmt1, bitTempDis, v)
}

// Acceleration reads the accelerometer and converts to g.
func (d *Dev) Acceleration() (ax, ay, az float64, err error) {
	x, y, z, err := d.readVector(regAccelXoutH)
	if err != nil {
		return 0, 0, 0, err
	}
	return float64(x) / d.accelSens, float64(y) / d.accelSens, float64(z) / d.accelSens, nil
}

// Rotation reads the gyroscope and converts to °/s.
func (d *Dev) Rotation() (gx, gy, gz float64, err error) {
	x, y, z, err := d.readVector(regGyroXoutH)
	if err != nil {
		return 0, 0, 0, err
	}
	return float64(x) / d.gyroSens, float64(y) / d.gyroSens, float64(z) / d.gyroSens, nil
}

// Temperature reads the die temperature in °C.
func (d *Dev) Temperature() (float64, error) {
	var buf [2]byte
	if err := d.readRegBlock(regTempOutH, buf[:]); err != nil {
		return 0, err
	}
	raw := int16(binary.BigEndian.Uint16(buf[:]))
	return float64(raw)/tempSensitivity + tempOffset, nil
}

// AccAngles estimates roll and pitch in degrees from one accelerometer
// sample:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// This is a tilt-from-gravity estimate (AN3461 eq. 28/29): it is only valid
// when the net acceleration is close to gravity, and does no gyro fusion or
// filtering. With the device flat (az=+1g) both angles are 0; nose down
// (ax=+1g) gives pitch -90°.
func (d *Dev) AccAngles() (roll, pitch float64, err error) {
	ax, ay, az, err := d.Acceleration()
	if err != nil {
		return 0, 0, err
	}
	roll, pitch = TiltAngles(ax, ay, az)
	return roll, pitch, nil
}

// TiltAngles is the pure estimator behind AccAngles, exposed for callers that
// already hold an accelerometer sample. Inputs need not be in g; only the
// ratios matter.
func TiltAngles(ax, ay, az float64) (roll, pitch float64) {
	roll = math.Atan2(ay, az) * 180.0 / math.Pi
	pitch = math.Atan2(-ax, math.Sqrt(ay*ay+az*az)) * 180.0 / math.Pi
	return roll, pitch
}

// ReadRaw fetches accel, temperature and gyro in one 14-byte burst, so the
// axes of a sample are correlated relative to other bus traffic.
func (d *Dev) ReadRaw() (Raw, error) {
	var buf [14]byte
	if err := d.readRegBlock(regAccelXoutH, buf[:]); err != nil {
		return Raw{}, err
	}
	return decodeRaw(buf[:]), nil
}

// Convert scales a Raw sample with the currently active divisors.
func (d *Dev) Convert(r Raw) Reading {
	return Reading{
		Ax:   float64(r.Ax) / d.accelSens,
		Ay:   float64(r.Ay) / d.accelSens,
		Az:   float64(r.Az) / d.accelSens,
		Gx:   float64(r.Gx) / d.gyroSens,
		Gy:   float64(r.Gy) / d.gyroSens,
		Gz:   float64(r.Gz) / d.gyroSens,
		Temp: float64(r.Temp)/tempSensitivity + tempOffset,
	}
}

func decodeRaw(buf []byte) Raw {
	return Raw{
		Ax:   int16(binary.BigEndian.Uint16(buf[0:2])),
		Ay:   int16(binary.BigEndian.Uint16(buf[2:4])),
		Az:   int16(binary.BigEndian.Uint16(buf[4:6])),
		Temp: int16(binary.BigEndian.Uint16(buf[6:8])),
		Gx:   int16(binary.BigEndian.Uint16(buf[8:10])),
		Gy:   int16(binary.BigEndian.Uint16(buf[10:12])),
		Gz:   int16(binary.BigEndian.Uint16(buf[12:14])),
	}
}

// EnableMotionDetection programs wake-on-motion: latched active-high
// interrupt pin, 5 Hz accel HPF, the given threshold and duration, then the
// WoM interrupt enables. Threshold LSB is range dependent; duration LSB is
// 1 ms at the 1 kHz rate.
func (d *Dev) EnableMotionDetection(threshold, duration byte) error {
	if err := d.modifyReg(regPwrMgmt1, bitSleep|bitCycle, 0x00); err != nil {
		return err
	}
	if err := d.writeReg(regIntPinCfg, bitLatchIntEn); err != nil {
		return err
	}
	if err := d.modifyReg(regAccelConfig, maskAccelHPF, hpf5Hz); err != nil {
		return err
	}
	if err := d.writeReg(regMotThr, threshold); err != nil {
		return err
	}
	if err := d.writeReg(regMotDur, duration); err != nil {
		return err
	}
	if err := d.writeReg(regMotDetectCtrl, motDetectCtrlValue); err != nil {
		return err
	}
	return d.modifyReg(regIntEnable, maskWoMInt, maskWoMInt)
}

// SetMotionThreshold writes the wake-on-motion threshold register.
func (d *Dev) SetMotionThreshold(v byte) error { return d.writeReg(regMotThr, v) }

// SetMotionDuration writes the wake-on-motion duration register.
func (d *Dev) SetMotionDuration(v byte) error { return d.writeReg(regMotDur, v) }

// MotionDetected reports whether any WoM interrupt bit is set. Reading
// INT_STATUS clears it.
func (d *Dev) MotionDetected() (bool, error) {
	s, err := d.readReg(regIntStatus)
	if err != nil {
		return false, err
	}
	return s&maskWoMInt != 0, nil
}

// EnableFIFO routes accel and/or gyro samples into the FIFO. Enabling gyro
// also enables temperature. Resets the signal path and the FIFO first.
func (d *Dev) EnableFIFO(accel, gyro bool) error {
	var en byte
	if accel {
		en |= bitFifoAccelEn
	}
	if gyro {
		en |= bitFifoGyroEn
	}
	if err := d.modifyReg(regFifoEn, bitFifoAccelEn|bitFifoGyroEn, en); err != nil {
		return err
	}
	ctl := byte(bitSigCondRst | bitFifoReset | bitFifoEnable)
	return d.modifyReg(regUserCtrl, ctl, ctl)
}

// ReadFIFO pops one 14-byte accel+temp+gyro frame from the FIFO and converts
// it. Returns ErrNoFIFOData when the FIFO has nothing to give.
func (d *Dev) ReadFIFO() (Reading, error) {
	var buf [14]byte
	if err := d.readRegBlock(regFifoRW, buf[:]); err != nil {
		return Reading{}, err
	}
	if buf[0] == 0xFF {
		return Reading{}, ErrNoFIFOData
	}
	return d.Convert(decodeRaw(buf[:])), nil
}

// ReadRegister exposes a single register read for the register-debug tooling.
func (d *Dev) ReadRegister(reg byte) (byte, error) { return d.readReg(reg) }

// WriteRegister exposes a raw register write for the register-debug tooling.
// It bypasses the configuration model; prefer the typed setters.
func (d *Dev) WriteRegister(reg, value byte) error { return d.writeReg(reg, value) }

func (d *Dev) String() string {
	return fmt.Sprintf("MPU6886{addr:0x%02X, accel:%s, gyro:%s}", d.dev.Addr, d.accelRange, d.gyroRange)
}

// readReg reads one register.
func (d *Dev) readReg(reg byte) (byte, error) {
	var b [1]byte
	if err := d.readRegBlock(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// readVector reads three consecutive big-endian int16 values starting at reg.
func (d *Dev) readVector(reg byte) (x, y, z int16, err error) {
	var buf [6]byte
	if err := d.readRegBlock(reg, buf[:]); err != nil {
		return 0, 0, 0, err
	}
	x = int16(binary.BigEndian.Uint16(buf[0:2]))
	y = int16(binary.BigEndian.Uint16(buf[2:4]))
	z = int16(binary.BigEndian.Uint16(buf[4:6]))
	return x, y, z, nil
}

// readRegBlock reads len(buf) contiguous registers starting at reg in a
// single bus transaction.
func (d *Dev) readRegBlock(reg byte, buf []byte) error {
	if err := d.dev.Tx([]byte{reg}, buf); err != nil {
		return &TransportError{Op: "read", Reg: reg, Err: err}
	}
	return nil
}

// writeReg writes one register.
func (d *Dev) writeReg(reg, value byte) error {
	if err := d.dev.Tx([]byte{reg, value}, nil); err != nil {
		return &TransportError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

// modifyReg updates only the bits in mask: bits outside the mask are read
// back and preserved. All partial-register configuration goes through here.
func (d *Dev) modifyReg(reg, mask, value byte) error {
	cur, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, (cur&^mask)|(value&mask))
}

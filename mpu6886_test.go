// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6886

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDev(t *testing.T, bus *fakeBus, opts *Opts) *Dev {
	t.Helper()
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.Delay == nil {
		opts.Delay = noDelay
	}
	d, err := New(bus, opts)
	require.NoError(t, err)
	return d
}

// setAccelRaw loads big-endian accelerometer counts into the data registers.
func setAccelRaw(b *fakeBus, x, y, z int16) {
	b.regs[regAccelXoutH] = byte(uint16(x) >> 8)
	b.regs[regAccelXoutH+1] = byte(uint16(x))
	b.regs[regAccelXoutH+2] = byte(uint16(y) >> 8)
	b.regs[regAccelXoutH+3] = byte(uint16(y))
	b.regs[regAccelXoutH+4] = byte(uint16(z) >> 8)
	b.regs[regAccelXoutH+5] = byte(uint16(z))
}

func TestNewPerformsNoIO(t *testing.T) {
	bus := newFakeBus()
	_ = newTestDev(t, bus, nil)
	assert.Empty(t, bus.writes)
}

func TestModifyRegPreservesUnmaskedBits(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	initials := []byte{0x00, 0xFF, 0xA5, 0x5A, 0x18, 0xE7}
	masks := []byte{0x00, 0x07, 0x18, 0xE0, 0x0F, 0xFF}
	for _, initial := range initials {
		for _, mask := range masks {
			for value := 0; value < 256; value += 23 {
				bus.regs[regConfig] = initial
				require.NoError(t, d.modifyReg(regConfig, mask, byte(value)))
				want := (initial &^ mask) | (byte(value) & mask)
				assert.Equalf(t, want, bus.regs[regConfig],
					"initial=0x%02X mask=0x%02X value=0x%02X", initial, mask, value)
			}
		}
	}
}

func TestInitSequence(t *testing.T) {
	bus := newReadyBus()
	var slept []time.Duration
	opts := Opts{
		AccelRange:     Range8G,
		GyroRange:      Range500DPS,
		Clock:          ClockAutoPLL,
		AccelBandwidth: Bandwidth99Hz,
		GyroBandwidth:  GyroBandwidth92Hz,
		Delay:          func(d time.Duration) { slept = append(slept, d) },
	}
	d, err := New(bus, &opts)
	require.NoError(t, err)
	require.NoError(t, d.Init())

	// Wake write comes first, then the settle delay.
	require.NotEmpty(t, bus.writes)
	assert.Equal(t, regWrite{reg: regPwrMgmt1, val: 0x00}, bus.writes[0])
	require.Len(t, slept, 1)
	assert.Equal(t, settleTime, slept[0])

	// Final register state reflects the requested configuration.
	assert.Equal(t, byte(0x01), bus.regs[regPwrMgmt1]&maskClkSel)
	assert.Equal(t, Range8G.bits(), bus.regs[regAccelConfig]&maskFSSel)
	assert.Equal(t, Range500DPS.bits(), bus.regs[regGyroConfig]&maskFSSel)
	assert.Equal(t, byte(Bandwidth99Hz), bus.regs[regAccelConfig2]&maskAccelDLPF)
	assert.Equal(t, byte(GyroBandwidth92Hz), bus.regs[regConfig]&maskDLPFCfg)

	assert.Equal(t, Range8G, d.AccelRange())
	assert.Equal(t, Range500DPS, d.GyroRange())
}

func TestInitIdentityMismatchAbortsBeforeConfig(t *testing.T) {
	bus := newFakeBus()
	bus.regs[regWhoAmI] = 0x71 // an MPU9250, not this part

	d := newTestDev(t, bus, nil)
	err := d.Init()

	var ie *IdentityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, byte(0x71), ie.Got)

	// Only the wake write may have happened; no range or filter writes.
	assert.Empty(t, bus.writesTo(regAccelConfig))
	assert.Empty(t, bus.writesTo(regGyroConfig))
	assert.Empty(t, bus.writesTo(regAccelConfig2))
	assert.Empty(t, bus.writesTo(regConfig))
	assert.Equal(t, []byte{0x00}, bus.writesTo(regPwrMgmt1))
}

func TestInitTransportFailure(t *testing.T) {
	bus := newFakeBus()
	busErr := errors.New("i2c: nack")
	bus.failWritesOn(regPwrMgmt1, busErr)

	d := newTestDev(t, bus, nil)
	err := d.Init()

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "write", te.Op)
	assert.ErrorIs(t, err, busErr)
}

func TestSetRangeRoundTrip(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	for _, r := range []AccelRange{Range2G, Range4G, Range8G, Range16G} {
		require.NoError(t, d.SetAccelRange(r))
		assert.Equal(t, r, d.AccelRange())
		hw, err := d.ReadAccelRange()
		require.NoError(t, err)
		assert.Equal(t, r, hw)
	}
	for _, r := range []GyroRange{Range250DPS, Range500DPS, Range1000DPS, Range2000DPS} {
		require.NoError(t, d.SetGyroRange(r))
		assert.Equal(t, r, d.GyroRange())
		hw, err := d.ReadGyroRange()
		require.NoError(t, err)
		assert.Equal(t, r, hw)
	}
}

func TestSetRangePreservesSelfTestBits(t *testing.T) {
	bus := newReadyBus()
	bus.regs[regAccelConfig] = 0xE0 // all self-test bits set
	d := newTestDev(t, bus, nil)

	require.NoError(t, d.SetAccelRange(Range16G))
	assert.Equal(t, byte(0xE0|Range16G.bits()), bus.regs[regAccelConfig])
}

func TestSetRangeFailureLeavesModelUnchanged(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)
	require.NoError(t, d.SetAccelRange(Range4G))

	busErr := errors.New("i2c: arbitration lost")
	bus.failWritesOn(regAccelConfig, busErr)

	err := d.SetAccelRange(Range16G)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, busErr)

	// Divisor still belongs to ±4g: 8192 counts convert to 1 g.
	assert.Equal(t, Range4G, d.AccelRange())
	got := d.Convert(Raw{Ax: 8192})
	assert.InDelta(t, 1.0, got.Ax, 1e-9)
}

func TestInvalidConfigRejectedWithoutBusTraffic(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	assert.ErrorIs(t, d.SetAccelRange(AccelRange(9)), ErrInvalidConfig)
	assert.ErrorIs(t, d.SetGyroRange(GyroRange(4)), ErrInvalidConfig)
	assert.ErrorIs(t, d.SetClockSource(ClockSource(8)), ErrInvalidConfig)
	assert.ErrorIs(t, d.SetAccelBandwidth(AccelBandwidth(0x01)), ErrInvalidConfig)
	assert.ErrorIs(t, d.SetGyroBandwidth(GyroBandwidth(8)), ErrInvalidConfig)
	assert.Empty(t, bus.writes)
}

func TestFullScaleConversion(t *testing.T) {
	// At every range, full scale counts (2^15) convert to the nominal
	// full-scale physical value.
	accel := map[AccelRange]float64{Range2G: 2, Range4G: 4, Range8G: 8, Range16G: 16}
	for r, want := range accel {
		got := 32768.0 / r.Sensitivity()
		assert.InDeltaf(t, want, got, want*0.005, "accel range %s", r)
	}
	gyro := map[GyroRange]float64{
		Range250DPS: 250, Range500DPS: 500, Range1000DPS: 1000, Range2000DPS: 2000,
	}
	for r, want := range gyro {
		got := 32768.0 / r.Sensitivity()
		assert.InDeltaf(t, want, got, want*0.005, "gyro range %s", r)
	}
}

func TestReadRawBigEndianDecode(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	// 14-byte burst: accel, temp, gyro; mixed signs.
	vals := []int16{258, -100, 16384, 3268, -32768, 32767, -1}
	for i, v := range vals {
		bus.regs[regAccelXoutH+byte(2*i)] = byte(uint16(v) >> 8)
		bus.regs[regAccelXoutH+byte(2*i)+1] = byte(uint16(v))
	}

	raw, err := d.ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, Raw{Ax: 258, Ay: -100, Az: 16384, Temp: 3268, Gx: -32768, Gy: 32767, Gz: -1}, raw)
}

func TestTemperatureConversion(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	// raw 3268 -> 3268/326.8 + 25 = 35 °C
	bus.regs[regTempOutH] = 0x0C
	bus.regs[regTempOutH+1] = 0xC4
	temp, err := d.Temperature()
	require.NoError(t, err)
	assert.InDelta(t, 35.0, temp, 1e-6)

	// raw -3268 -> 15 °C
	bus.regs[regTempOutH] = 0xF3
	bus.regs[regTempOutH+1] = 0x3C
	temp, err = d.Temperature()
	require.NoError(t, err)
	assert.InDelta(t, 15.0, temp, 1e-6)
}

func TestAccelerationScalesWithRange(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)
	setAccelRaw(bus, 16384, -8192, 4096)

	ax, ay, az, err := d.Acceleration()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ax, 1e-9)
	assert.InDelta(t, -0.5, ay, 1e-9)
	assert.InDelta(t, 0.25, az, 1e-9)

	// Same counts mean twice the acceleration at ±4g.
	require.NoError(t, d.SetAccelRange(Range4G))
	ax, _, _, err = d.Acceleration()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, ax, 1e-9)
}

func TestRotationScalesWithRange(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)
	bus.regs[regGyroXoutH] = byte(uint16(131) >> 8)
	bus.regs[regGyroXoutH+1] = byte(uint16(131))

	gx, gy, gz, err := d.Rotation()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, gx, 1e-9) // 131 LSB = 1 °/s at ±250°/s
	assert.Zero(t, gy)
	assert.Zero(t, gz)

	require.NoError(t, d.SetGyroRange(Range2000DPS))
	gx, _, _, err = d.Rotation()
	require.NoError(t, err)
	assert.InDelta(t, 131.0/16.4, gx, 1e-9)
}

func TestAccAnglesFlat(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)
	setAccelRaw(bus, 0, 0, 16384) // flat, gravity on +Z

	roll, pitch, err := d.AccAngles()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, roll, 1e-6)
	assert.InDelta(t, 0.0, pitch, 1e-6)
}

func TestAccAnglesNoseDown(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)
	setAccelRaw(bus, 16384, 0, 0) // gravity entirely on +X

	roll, pitch, err := d.AccAngles()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(roll))
	assert.False(t, math.IsNaN(pitch))
	assert.InDelta(t, -90.0, pitch, 1e-6)
}

func TestTiltAnglesQuadrants(t *testing.T) {
	roll, pitch := TiltAngles(0, 1, 0)
	assert.InDelta(t, 90.0, roll, 1e-6)
	assert.InDelta(t, 0.0, pitch, 1e-6)

	roll, _ = TiltAngles(0, -1, 0)
	assert.InDelta(t, -90.0, roll, 1e-6)

	// Upside down: roll wraps to ±180, never NaN.
	roll, pitch = TiltAngles(0, 0, -1)
	assert.InDelta(t, 180.0, math.Abs(roll), 1e-6)
	assert.InDelta(t, 0.0, pitch, 1e-6)
}

func TestReadFailureSurfacesTransportError(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)
	busErr := errors.New("i2c: timeout")
	bus.failReadsOn(regAccelXoutH, busErr)

	_, _, _, err := d.Acceleration()
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "read", te.Op)
	assert.Equal(t, byte(regAccelXoutH), te.Reg)
	assert.ErrorIs(t, err, busErr)
	assert.Equal(t, Range2G, d.AccelRange())
}

func TestClockSourceTouchesOnlyClkSel(t *testing.T) {
	bus := newReadyBus()
	bus.regs[regPwrMgmt1] = bitSleep // asleep, CLKSEL=0
	d := newTestDev(t, bus, nil)

	require.NoError(t, d.SetClockSource(ClockAutoPLL))
	assert.Equal(t, byte(bitSleep|0x01), bus.regs[regPwrMgmt1])

	c, err := d.ClockSource()
	require.NoError(t, err)
	assert.Equal(t, ClockAutoPLL, c)
}

func TestSleepAndTempControl(t *testing.T) {
	bus := newReadyBus()
	bus.regs[regPwrMgmt1] = 0x01
	d := newTestDev(t, bus, nil)

	require.NoError(t, d.SetSleep(true))
	assert.Equal(t, byte(bitSleep|0x01), bus.regs[regPwrMgmt1])
	require.NoError(t, d.SetSleep(false))
	assert.Equal(t, byte(0x01), bus.regs[regPwrMgmt1])

	require.NoError(t, d.SetTempEnabled(false))
	assert.Equal(t, byte(bitTempDis|0x01), bus.regs[regPwrMgmt1])
	require.NoError(t, d.SetTempEnabled(true))
	assert.Equal(t, byte(0x01), bus.regs[regPwrMgmt1])
}

func TestEnableMotionDetection(t *testing.T) {
	bus := newReadyBus()
	bus.regs[regAccelConfig] = Range16G.bits() // range must survive HPF config
	d := newTestDev(t, bus, nil)

	require.NoError(t, d.EnableMotionDetection(10, 40))

	assert.Equal(t, byte(10), bus.regs[regMotThr])
	assert.Equal(t, byte(40), bus.regs[regMotDur])
	assert.Equal(t, byte(motDetectCtrlValue), bus.regs[regMotDetectCtrl])
	assert.Equal(t, byte(bitLatchIntEn), bus.regs[regIntPinCfg])
	assert.Equal(t, byte(maskWoMInt), bus.regs[regIntEnable]&maskWoMInt)
	// HPF selected, full-scale bits untouched.
	assert.Equal(t, byte(hpf5Hz), bus.regs[regAccelConfig]&maskAccelHPF)
	assert.Equal(t, Range16G.bits(), bus.regs[regAccelConfig]&maskFSSel)
}

func TestMotionDetected(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	bus.regs[regIntStatus] = 0x40 // WoM Y
	got, err := d.MotionDetected()
	require.NoError(t, err)
	assert.True(t, got)

	bus.regs[regIntStatus] = bitDataRdyInt // data ready is not motion
	got, err = d.MotionDetected()
	require.NoError(t, err)
	assert.False(t, got)
}

func TestMotionThresholdDurationWrites(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	require.NoError(t, d.SetMotionThreshold(20))
	require.NoError(t, d.SetMotionDuration(1))
	assert.Equal(t, []byte{20}, bus.writesTo(regMotThr))
	assert.Equal(t, []byte{1}, bus.writesTo(regMotDur))
}

func TestEnableFIFO(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	require.NoError(t, d.EnableFIFO(true, true))
	assert.Equal(t, byte(bitFifoAccelEn|bitFifoGyroEn), bus.regs[regFifoEn])
	ctl := byte(bitSigCondRst | bitFifoReset | bitFifoEnable)
	assert.Equal(t, ctl, bus.regs[regUserCtrl]&ctl)
}

func TestReadFIFO(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	frame := []int16{16384, 0, -16384, 3268, 131, -131, 0}
	for i, v := range frame {
		bus.regs[regFifoRW+byte(2*i)] = byte(uint16(v) >> 8)
		bus.regs[regFifoRW+byte(2*i)+1] = byte(uint16(v))
	}

	r, err := d.ReadFIFO()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.Ax, 1e-9)
	assert.InDelta(t, -1.0, r.Az, 1e-9)
	assert.InDelta(t, 35.0, r.Temp, 1e-6)
	assert.InDelta(t, 1.0, r.Gx, 1e-9)
	assert.InDelta(t, -1.0, r.Gy, 1e-9)
}

func TestReadFIFOEmpty(t *testing.T) {
	bus := newReadyBus()
	bus.regs[regFifoRW] = 0xFF
	d := newTestDev(t, bus, nil)

	_, err := d.ReadFIFO()
	assert.ErrorIs(t, err, ErrNoFIFOData)
}

func TestResetWaitsForSettle(t *testing.T) {
	bus := newReadyBus()
	var slept []time.Duration
	o := DefaultOpts
	o.Delay = func(d time.Duration) { slept = append(slept, d) }
	d, err := New(bus, &o)
	require.NoError(t, err)

	require.NoError(t, d.Reset())
	assert.Equal(t, byte(bitDeviceReset), bus.regs[regPwrMgmt1]&bitDeviceReset)
	require.Len(t, slept, 1)
	assert.Equal(t, settleTime, slept[0])
}

func TestRegisterDebugAccess(t *testing.T) {
	bus := newReadyBus()
	d := newTestDev(t, bus, nil)

	require.NoError(t, d.WriteRegister(regSmplrtDiv, 0x07))
	v, err := d.ReadRegister(regSmplrtDiv)
	require.NoError(t, err)
	assert.Equal(t, byte(0x07), v)
}

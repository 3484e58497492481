// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6886

// I2C register map for the MPU-6886, per the register section of datasheet
// DS-000189.
const (
	regSmplrtDiv     = 0x19 // Sample rate divider
	regConfig        = 0x1A // DLPF / external sync
	regGyroConfig    = 0x1B // Gyro full scale + self test
	regAccelConfig   = 0x1C // Accel full scale + self test + HPF
	regAccelConfig2  = 0x1D // Accel DLPF
	regMotThr        = 0x1F // Motion detection threshold
	regMotDur        = 0x20 // Motion detection duration
	regFifoEn        = 0x23 // FIFO enable per sensor
	regIntPinCfg     = 0x37 // INT pin / bypass configuration
	regIntEnable     = 0x38 // Interrupt enable
	regIntStatus     = 0x3A // Interrupt status, cleared on read
	regAccelXoutH    = 0x3B // Accel X MSB; X,Y,Z pairs then temp then gyro
	regTempOutH      = 0x41 // Temperature MSB
	regGyroXoutH     = 0x43 // Gyro X MSB
	regMotDetectCtrl = 0x69 // Motion detect decrement / startup delay
	regUserCtrl      = 0x6A // FIFO enable, signal path reset
	regPwrMgmt1      = 0x6B // Reset, sleep, clock select
	regPwrMgmt2      = 0x6C // Per-axis standby
	regFifoCountH    = 0x72 // FIFO byte count MSB
	regFifoRW        = 0x74 // FIFO read/write port
	regWhoAmI        = 0x75 // Device identity
)

// PWR_MGMT_1 bits.
const (
	bitDeviceReset = 0x80
	bitSleep       = 0x40
	bitCycle       = 0x20
	bitGyroStandby = 0x10
	bitTempDis     = 0x08
	maskClkSel     = 0x07
)

// GYRO_CONFIG / ACCEL_CONFIG full-scale select occupies bits 4:3 in both
// registers. ACCEL_CONFIG additionally carries the digital high pass filter
// select in bits 2:0.
const (
	maskFSSel    = 0x18
	fsSelShift   = 3
	maskAccelHPF = 0x07
	hpf5Hz       = 0x01
)

// CONFIG register DLPF select, bits 2:0.
const maskDLPFCfg = 0x07

// ACCEL_CONFIG_2: A_DLPF_CFG bits 2:0, ACCEL_FCHOICE_B bit 3.
const maskAccelDLPF = 0x0F

// INT_PIN_CFG bits.
const (
	bitIntLevel   = 0x80
	bitIntOpen    = 0x40
	bitLatchIntEn = 0x20
	bitIntRdClear = 0x10
)

// INT_ENABLE / INT_STATUS wake-on-motion bits (X, Y, Z in bits 7:5).
const (
	maskWoMInt    = 0xE0
	bitFifoOflow  = 0x10
	bitDataRdyInt = 0x01
)

// FIFO_EN bits.
const (
	bitFifoAccelEn = 0x08
	bitFifoGyroEn  = 0x10
)

// USER_CTRL bits.
const (
	bitFifoEnable = 0x40
	bitFifoReset  = 0x04
	bitSigCondRst = 0x01
)

// DefaultAddr is the MPU-6886 I2C address with AD0 low. AltAddr applies when
// AD0 is pulled high.
const (
	DefaultAddr = 0x68
	AltAddr     = 0x69
)

// whoAmIValue is the identity byte the MPU-6886 reports from WHO_AM_I.
const whoAmIValue = 0x19

// MOT_DETECT_CTRL value from the motion detection application note:
// free-fall and motion decrements of 1, +1 ms accelerometer startup delay.
const motDetectCtrlValue = 0x15

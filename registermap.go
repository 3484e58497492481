// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6886

// BitField describes one named field inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is register metadata for debugging tools: name, access type
// and bit field layout. Addresses are hex strings to match the register-debug
// wire protocol.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"`
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// RegisterMap returns metadata for the MPU-6886 registers this driver touches.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Configuration registers
		{Address: "0x19", Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Internal_Sample_Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: "0x1A", Name: "CONFIG", Description: "Configuration (DLPF)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "FIFO_MODE", Description: "FIFO mode", Values: "0=Overwrite, 1=Block new data"},
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "External FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Gyro Digital Low Pass Filter", Values: "0=250Hz, 1=176Hz, 2=92Hz, 3=41Hz, 4=20Hz, 5=10Hz, 6=5Hz, 7=3281Hz"},
			}},
		{Address: "0x1B", Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XG_ST", Description: "X Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YG_ST", Description: "Y Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZG_ST", Description: "Z Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
				{Bits: "1:0", Name: "FCHOICE_B", Description: "Gyro DLPF bypass", Values: "0=DLPF enabled"},
			}},
		{Address: "0x1C", Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XA_ST", Description: "X Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YA_ST", Description: "Y Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZA_ST", Description: "Z Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "FS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
				{Bits: "2:0", Name: "ACCEL_HPF", Description: "Accel high pass filter for motion detection", Values: "1=5Hz"},
			}},
		{Address: "0x1D", Name: "ACCEL_CONFIG2", Description: "Accelerometer Configuration 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3", Name: "ACCEL_FCHOICE_B", Description: "Accel DLPF bypass", Values: "0=DLPF enabled, 1=Bypass"},
				{Bits: "2:0", Name: "A_DLPF_CFG", Description: "Accel DLPF Config", Values: "0=218Hz, 2=99Hz, 3=45Hz, 4=21Hz, 5=10Hz, 6=5Hz, 7=420Hz"},
			}},
		{Address: "0x1F", Name: "MOT_THR", Description: "Wake-on-Motion Threshold", Access: "RW", Default: "0x00"},
		{Address: "0x20", Name: "MOT_DUR", Description: "Wake-on-Motion Duration", Access: "RW", Default: "0x00"},
		{Address: "0x23", Name: "FIFO_EN", Description: "FIFO Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "GYRO_FIFO_EN", Description: "Route gyro (and temp) to FIFO", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "ACCEL_FIFO_EN", Description: "Route accel to FIFO", Values: "0=Disabled, 1=Enabled"},
			}},

		// Interrupt configuration
		{Address: "0x37", Name: "INT_PIN_CFG", Description: "INT Pin / Bypass Enable Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "INT_LEVEL", Description: "INT pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "6", Name: "INT_OPEN", Description: "INT pin open drain", Values: "0=Push-pull, 1=Open drain"},
				{Bits: "5", Name: "LATCH_INT_EN", Description: "Latch INT pin", Values: "0=50us pulse, 1=Latch until cleared"},
				{Bits: "4", Name: "INT_RD_CLEAR", Description: "Clear INT on any read", Values: "0=Status read only, 1=Any read"},
			}},
		{Address: "0x38", Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "WOM_X_INT_EN", Description: "Wake on Motion X interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "WOM_Y_INT_EN", Description: "Wake on Motion Y interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "WOM_Z_INT_EN", Description: "Wake on Motion Z interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Raw data ready interrupt", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x3A", Name: "INT_STATUS", Description: "Interrupt Status (cleared on read)", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "WOM_X_INT", Description: "Wake on Motion X status", Values: ""},
				{Bits: "6", Name: "WOM_Y_INT", Description: "Wake on Motion Y status", Values: ""},
				{Bits: "5", Name: "WOM_Z_INT", Description: "Wake on Motion Z status", Values: ""},
				{Bits: "4", Name: "FIFO_OFLOW_INT", Description: "FIFO overflow status", Values: ""},
				{Bits: "0", Name: "DATA_RDY_INT", Description: "Data ready status", Values: ""},
			}},

		// Sensor data registers (read-only)
		{Address: "0x3B", Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x3C", Name: "ACCEL_XOUT_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x3D", Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x3E", Name: "ACCEL_YOUT_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x3F", Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: "0x40", Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x41", Name: "TEMP_OUT_H", Description: "Temperature High Byte", Access: "R"},
		{Address: "0x42", Name: "TEMP_OUT_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: "0x43", Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x44", Name: "GYRO_XOUT_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x45", Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x46", Name: "GYRO_YOUT_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x47", Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: "0x48", Name: "GYRO_ZOUT_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},

		// Power and FIFO control
		{Address: "0x69", Name: "MOT_DETECT_CTRL", Description: "Motion Detection Control", Access: "RW", Default: "0x00"},
		{Address: "0x6A", Name: "USER_CTRL", Description: "User Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "FIFO_EN", Description: "Enable FIFO", Values: "0=Disabled, 1=Enabled"},
				{Bits: "2", Name: "FIFO_RST", Description: "Reset FIFO", Values: "1=Reset"},
				{Bits: "0", Name: "SIG_COND_RST", Description: "Reset signal paths", Values: "1=Reset"},
			}},
		{Address: "0x6B", Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Device reset", Values: "1=Reset device"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Disabled, 1=Sleep"},
				{Bits: "5", Name: "CYCLE", Description: "Cycle mode", Values: "0=Disabled, 1=Cycle"},
				{Bits: "4", Name: "GYRO_STANDBY", Description: "Gyro standby", Values: "0=Disabled, 1=Standby"},
				{Bits: "3", Name: "TEMP_DIS", Description: "Temperature sensor", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 20MHz, 1-5=Auto select best, 7=Stop clock"},
			}},
		{Address: "0x6C", Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5", Name: "STBY_XA", Description: "Disable X accelerometer", Values: "0=Enabled, 1=Disabled"},
				{Bits: "4", Name: "STBY_YA", Description: "Disable Y accelerometer", Values: "0=Enabled, 1=Disabled"},
				{Bits: "3", Name: "STBY_ZA", Description: "Disable Z accelerometer", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2", Name: "STBY_XG", Description: "Disable X gyro", Values: "0=Enabled, 1=Disabled"},
				{Bits: "1", Name: "STBY_YG", Description: "Disable Y gyro", Values: "0=Enabled, 1=Disabled"},
				{Bits: "0", Name: "STBY_ZG", Description: "Disable Z gyro", Values: "0=Enabled, 1=Disabled"},
			}},
		{Address: "0x72", Name: "FIFO_COUNTH", Description: "FIFO Count High Byte", Access: "R"},
		{Address: "0x73", Name: "FIFO_COUNTL", Description: "FIFO Count Low Byte", Access: "R"},
		{Address: "0x74", Name: "FIFO_R_W", Description: "FIFO Read Write", Access: "RW"},

		// Device identification
		{Address: "0x75", Name: "WHO_AM_I", Description: "Device ID (should be 0x19)", Access: "R", Default: "0x19"},
	}
}

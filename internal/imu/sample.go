package imu

import "github.com/relabs-tech/mpu6886"

// RawSample is the wire payload for one unscaled IMU sample.
type RawSample struct {
	Source string `json:"source,omitempty"` // "mpu6886" or "mock"

	Ax int16 `json:"ax"` // accel counts
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro counts
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Temp int16 `json:"temp"` // temperature counts
}

// Sample is the wire payload for one converted sample.
type Sample struct {
	Source string `json:"source,omitempty"` // "mpu6886" or "mock"

	Ax float64 `json:"ax_g"` // g
	Ay float64 `json:"ay_g"`
	Az float64 `json:"az_g"`

	Gx float64 `json:"gx_dps"` // °/s
	Gy float64 `json:"gy_dps"`
	Gz float64 `json:"gz_dps"`

	Temp float64 `json:"temp_c"` // °C
}

// FromRaw converts a driver raw sample into its wire payload.
func FromRaw(r mpu6886.Raw) RawSample {
	return RawSample{
		Source: "mpu6886",
		Ax:     r.Ax, Ay: r.Ay, Az: r.Az,
		Gx: r.Gx, Gy: r.Gy, Gz: r.Gz,
		Temp: r.Temp,
	}
}

// FromReading converts a driver converted reading into its wire payload.
func FromReading(r mpu6886.Reading) Sample {
	return Sample{
		Source: "mpu6886",
		Ax:     r.Ax, Ay: r.Ay, Az: r.Az,
		Gx: r.Gx, Gy: r.Gy, Gz: r.Gz,
		Temp: r.Temp,
	}
}

package orientation

import (
	"github.com/relabs-tech/mpu6886"
)

// Pose is the canonical representation of orientation for the apps.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time: the device source,
// the mock source, maybe a replay source from file later.
type Source interface {
	Next() (Pose, error)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is set to 0 (no magnetometer on this part).
//
// Uses the accelerometer tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// Only valid near-static; callers needing stable dynamic orientation must
// filter externally.
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	roll, pitch := mpu6886.TiltAngles(ax, ay, az)
	return Pose{
		Roll:  roll,
		Pitch: pitch,
		Yaw:   0,
	}
}

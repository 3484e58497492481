package env

// Sample represents a single die-temperature measurement.
type Sample struct {
	Source string `json:"source"` // sensor identifier, e.g. "mpu6886"

	Temperature float64 `json:"temp_c"` // °C
}

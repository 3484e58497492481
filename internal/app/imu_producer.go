package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/mpu6886"
	"github.com/relabs-tech/mpu6886/internal/config"
	"github.com/relabs-tech/mpu6886/internal/env"
	imu_sample "github.com/relabs-tech/mpu6886/internal/imu"
	"github.com/relabs-tech/mpu6886/internal/orientation"
)

// motionEvent is the payload published when the wake-on-motion interrupt
// fires. Time is the host timestamp of the poll that saw the flag, not the
// hardware event time.
type motionEvent struct {
	Detected bool   `json:"detected"`
	Time     string `json:"time"`
}

func RunIMUProducer() error {
	log.Println("starting mpu6886 producer (I2C → MQTT)")

	cfg := config.Get()

	// --- Choose sample source (mock vs real device) ---
	var dev *mpu6886.Dev
	var mockSrc orientation.Source

	if cfg.IMUUseMock {
		log.Println("using mock orientation source, no I2C traffic")
		mockSrc = orientation.NewMockSource()
	} else {
		var err error
		dev, err = OpenDevice(cfg)
		if err != nil {
			log.Fatalf("failed to initialize MPU-6886: %v", err)
			return err
		}
		log.Printf("initialized %s", dev)

		if cfg.MotionDetectEnabled {
			if err := dev.EnableMotionDetection(cfg.MotionThreshold, cfg.MotionDuration); err != nil {
				log.Fatalf("failed to enable motion detection: %v", err)
				return err
			}
			log.Printf("motion detection enabled (threshold=%d duration=%d)", cfg.MotionThreshold, cfg.MotionDuration)
		}
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	// main tick
	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		// 1) Pose
		var pose orientation.Pose
		var raw mpu6886.Raw
		var reading mpu6886.Reading

		if cfg.IMUUseMock {
			var err error
			pose, err = mockSrc.Next()
			if err != nil {
				log.Printf("error from mock orientation source: %v", err)
				continue
			}
		} else {
			var err error
			raw, err = dev.ReadRaw()
			if err != nil {
				log.Printf("error reading IMU: %v", err)
				continue
			}
			reading = dev.Convert(raw)
			pose = orientation.ComputePoseFromAccel(reading.Ax, reading.Ay, reading.Az)
		}

		if payload, err := json.Marshal(pose); err != nil {
			log.Printf("json marshal error (pose): %v", err)
		} else {
			if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (pose): %v", token.Error())
				continue
			}
		}

		// 2) Raw and converted samples
		var rawSample imu_sample.RawSample
		var sample imu_sample.Sample
		if cfg.IMUUseMock {
			rawSample = imu_sample.RawSample{Source: "mock"}
			sample = imu_sample.Sample{Source: "mock"}
		} else {
			rawSample = imu_sample.FromRaw(raw)
			sample = imu_sample.FromReading(reading)
		}

		if payload, err := json.Marshal(rawSample); err != nil {
			log.Printf("raw sample marshal error: %v", err)
			continue
		} else {
			if token := client.Publish(cfg.TopicIMURaw, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (imu/raw): %v", token.Error())
				continue
			}
		}

		if payload, err := json.Marshal(sample); err != nil {
			log.Printf("sample marshal error: %v", err)
			continue
		} else {
			if token := client.Publish(cfg.TopicIMU, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (imu): %v", token.Error())
				continue
			}
		}

		// 3) Die temperature
		envSample := env.Sample{Source: sample.Source, Temperature: sample.Temp}
		if payload, err := json.Marshal(envSample); err != nil {
			log.Printf("env marshal error: %v", err)
			continue
		} else {
			if token := client.Publish(cfg.TopicTemp, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (temp): %v", token.Error())
				continue
			}
		}

		// 4) Motion interrupt poll (flag clears on read)
		if !cfg.IMUUseMock && cfg.MotionDetectEnabled {
			detected, err := dev.MotionDetected()
			if err != nil {
				log.Printf("motion status read error: %v", err)
			} else if detected {
				ev := motionEvent{Detected: true, Time: t.Format(time.RFC3339)}
				if payload, err := json.Marshal(ev); err != nil {
					log.Printf("motion marshal error: %v", err)
				} else {
					client.Publish(cfg.TopicMotion, 0, false, payload)
				}
				log.Println("motion detected")
			}
		}

		log.Printf("%s tick: pose R=%.2f P=%.2f | accel ax=%d ay=%d az=%d | gyro gx=%d gy=%d gz=%d | temp %.1f°C",
			t.Format(time.RFC3339),
			pose.Roll, pose.Pitch,
			rawSample.Ax, rawSample.Ay, rawSample.Az,
			rawSample.Gx, rawSample.Gy, rawSample.Gz,
			sample.Temp,
		)
	}
	return nil
}

// OpenDevice brings up periph, opens the configured I2C bus and runs the
// full MPU-6886 init sequence with the configured ranges and filters.
func OpenDevice(cfg *config.Config) (*mpu6886.Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	bus, err := i2creg.Open(cfg.IMUI2CBus)
	if err != nil {
		return nil, err
	}

	opts := mpu6886.DefaultOpts
	if cfg.IMUI2CAddr != 0 {
		opts.Addr = cfg.IMUI2CAddr
	}
	opts.AccelRange = mpu6886.AccelRange(cfg.IMUAccelRange)
	opts.GyroRange = mpu6886.GyroRange(cfg.IMUGyroRange)
	opts.Clock = mpu6886.ClockSource(cfg.IMUClockSource)
	opts.AccelBandwidth = mpu6886.AccelBandwidth(cfg.IMUAccelDLPF)
	opts.GyroBandwidth = mpu6886.GyroBandwidth(cfg.IMUGyroDLPF)

	dev, err := mpu6886.New(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, err
	}
	if err := dev.Init(); err != nil {
		bus.Close()
		return nil, err
	}
	return dev, nil
}

// Package models holds the register shapes of the models running on the FPGA.
package models

import (
	"context"
	"errors"
	"time"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
)

// Sleep tracker geometry.
const (
	InputNElemSleep = 3
	// SleepFIFOID is the FIFO stream carrying sleep tracker records.
	SleepFIFOID uint8 = 0
	// SleepFIFOBytes is how much of the FIFO an acquisition drains.
	SleepFIFOBytes = 128
)

// SleepFeaturesCodec encodes sleep tracker inputs.
var SleepFeaturesCodec = comm.ArrayOf(comm.Q1_7, InputNElemSleep)

// SleepFeatures are the sleep tracker inputs.
type SleepFeatures struct {
	ActivityCount float32 `json:"activity_count" yaml:"activity_count"`
	HeartRate     float32 `json:"heart_rate" yaml:"heart_rate"`
	SleepCosine   float32 `json:"sleep_cosine" yaml:"sleep_cosine"`
}

// Values converts the features to the fixed-point register layout.
func (f SleepFeatures) Values() []comm.I1F7 {
	return []comm.I1F7{
		comm.I1F7FromFloat(float64(f.ActivityCount)),
		comm.I1F7FromFloat(float64(f.HeartRate)),
		comm.I1F7FromFloat(float64(f.SleepCosine)),
	}
}

// WriteSleepFeatures writes the features to the input region.
func WriteSleepFeatures(s *comm.Session, f SleepFeatures) error {
	return comm.Write(s, SleepFeaturesCodec, f.Values(), comm.InputBaseAddress)
}

// WaitFunc blocks for the duration of an acquisition.
type WaitFunc func(context.Context) error

// WaitFor returns a WaitFunc sleeping d or until ctx is done.
func WaitFor(d time.Duration) WaitFunc {
	return func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}
}

// AcquireSleep runs one sleep tracker acquisition and drains numBytes of
// records from the sleep FIFO. A canceled wait still stops the device and
// reads what was acquired.
func AcquireSleep(ctx context.Context, s *comm.Session, wait WaitFunc, numBytes int) ([]comm.Record, error) {
	if err := s.Stop(); err != nil {
		return nil, err
	}
	time.Sleep(s.Settle)
	if err := s.Start(); err != nil {
		return nil, err
	}
	waitErr := wait(ctx)
	if err := s.Stop(); err != nil {
		return nil, err
	}
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return nil, waitErr
	}
	return s.ReadFIFO(numBytes, SleepFIFOID)
}

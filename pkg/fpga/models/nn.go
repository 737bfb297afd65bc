package models

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
)

// Digit classifier geometry.
const (
	DigitPixels  = 64
	DigitOutputs = 10
	// OutputScale converts a raw output register to a score.
	OutputScale = 65535.0
)

// WriteDigit writes pixel values, one register per pixel, to the input region.
func WriteDigit(s *comm.Session, pixels []float64) error {
	for i, px := range pixels {
		if err := comm.Write(s, comm.Q1_7, comm.I1F7FromFloat(px), comm.InputBaseAddress+uint16(i)); err != nil {
			return err
		}
	}
	return nil
}

// ReadDigitOutputs reads the classifier scores from the output region.
func ReadDigitOutputs(s *comm.Session) ([]float64, error) {
	scores := make([]float64, DigitOutputs)
	for i := range scores {
		raw, err := comm.Read(s, comm.U32, comm.OutputBaseAddress+uint16(i*4))
		if err != nil {
			return nil, err
		}
		scores[i] = float64(raw) / OutputScale
	}
	return scores, nil
}

// WaitDone polls the done bit until it is set or ctx is done.
func WaitDone(ctx context.Context, s *comm.Session, interval time.Duration) error {
	for polls := 1; ; polls++ {
		done, err := s.CalcIsDone()
		if err != nil {
			return err
		}
		if done {
			glog.V(2).Infof("calculation done after %d polls", polls)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// ClassifyDigit loads pixels, starts the calculation, waits for completion
// and reads the scores. The command and status registers are expected to be
// cleared already.
func ClassifyDigit(ctx context.Context, s *comm.Session, pixels []float64) ([]float64, error) {
	if err := WriteDigit(s, pixels); err != nil {
		return nil, err
	}
	time.Sleep(s.Settle)
	if err := s.Start(); err != nil {
		return nil, err
	}
	if err := WaitDone(ctx, s, 0); err != nil {
		return nil, err
	}
	return ReadDigitOutputs(s)
}

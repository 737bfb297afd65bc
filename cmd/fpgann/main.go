package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/hostcomm/pkg/framework"
	"github.com/robotalks/hostcomm/pkg/fpga/comm"
	"github.com/robotalks/hostcomm/pkg/fpga/env"
	"github.com/robotalks/hostcomm/pkg/fpga/models"
	"github.com/robotalks/hostcomm/pkg/fpga/sim"
)

//go-build: CGO_ENABLED=0

// digit is an 8x8 handwritten digit scaled to [-0.5, 0.5].
var digit = []float64{
	-0.5, -0.5, -0.0625, 0.5, 0.5, 0.375, -0.5, -0.5, -0.5, -0.5, 0.5, 0.25, 0.125, 0.4375,
	-0.4375, -0.5, -0.5, -0.5, 0.125, -0.25, 0.5, 0.125, -0.5, -0.5, -0.5, -0.5, -0.5, 0.0625,
	0.5, 0.1875, -0.4375, -0.5, -0.5, -0.5, -0.5, -0.5, -0.0625, 0.5, 0., -0.5, -0.5, -0.5,
	-0.5, -0.5, -0.5, 0.5, -0.0625, -0.5, -0.5, -0.5, 0., -0.25, 0.125, 0.4375, -0.375, -0.5,
	-0.5, -0.5, 0.25, 0.5, 0.5, -0.125, -0.5, -0.5,
}

func init() {
	env.SetupFlags()
}

// simulatedNN scores each class by the sum of pixel registers it reads.
func simulatedNN() *sim.Device {
	dev := sim.NewDevice()
	dev.OnStart = func(d *sim.Device) {
		pixels := d.RegistersLocked(comm.InputBaseAddress, models.DigitPixels)
		for class := 0; class < models.DigitOutputs; class++ {
			var score uint32
			for n := class; n < len(pixels); n += models.DigitOutputs {
				score += uint32(pixels[n])
			}
			d.SetRegistersLocked(comm.OutputBaseAddress+uint16(class*4), comm.U32.Encode(score)...)
		}
		d.SetRegistersLocked(comm.StatusRegAddress, comm.StatusDoneBit)
	}
	return dev
}

func run(ctx context.Context) error {
	conf, err := env.NewConfig()
	if err != nil {
		return err
	}
	owner, err := conf.NewOwner(simulatedNN())
	if err != nil {
		return err
	}
	return owner.Use(func(s *comm.Session) error {
		if err := s.Stop(); err != nil {
			return err
		}
		if err := s.ClearStatus(); err != nil {
			return err
		}
		cmd, err := s.ReadCommandRegister()
		if err != nil {
			return err
		}
		status, err := s.ReadStatusRegister()
		if err != nil {
			return err
		}
		fmt.Printf("cmd initial state is %d\nstatus is %d\n", cmd, status)

		scores, err := models.ClassifyDigit(ctx, s, digit)
		if err != nil {
			return err
		}
		if status, err = s.ReadStatusRegister(); err != nil {
			return err
		}
		fmt.Printf("status is %d\n", status)
		for n, score := range scores {
			fmt.Printf("Output value %d is %g\n", n, score)
		}
		if cmd, err = s.ReadCommandRegister(); err != nil {
			return err
		}
		fmt.Printf("cmd final state is %d\n", cmd)
		return nil
	})
}

func main() {
	flag.Parse()
	defer glog.Flush()
	ctx, cancel := fx.SignalContext(context.Background())
	defer cancel()
	if err := run(ctx); err != nil {
		glog.Flush()
		log.Fatalln(err)
	}
}

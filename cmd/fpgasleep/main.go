package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/hostcomm/pkg/framework"
	"github.com/robotalks/hostcomm/pkg/fpga/comm"
	"github.com/robotalks/hostcomm/pkg/fpga/env"
	"github.com/robotalks/hostcomm/pkg/fpga/models"
	"github.com/robotalks/hostcomm/pkg/fpga/sim"
	"github.com/robotalks/hostcomm/pkg/publish/mqtt"
)

//go-build: CGO_ENABLED=0

var (
	acquireTime = 60 * time.Second
)

func init() {
	env.SetupFlags()
	flag.DurationVar(&acquireTime, "t", acquireTime, "Time to gather data in bounded mode.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "FPGA sleep app CLI driver.\n\nUsage: %s [flags] unbounded|bounded\n\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func waitForInput(ctx context.Context) error {
	return fx.RunWithContext(ctx, func() error {
		fmt.Fprint(os.Stderr, "Hit enter to conclude the acquisition...")
		_, err := os.Stdin.Read(make([]byte, 1))
		return err
	})
}

// simulatedSleep pushes a synthetic night of records on start.
func simulatedSleep() *sim.Device {
	dev := sim.NewDevice()
	dev.OnStart = func(d *sim.Device) {
		for n := 0; n < models.SleepFIFOBytes/comm.RecordSize; n++ {
			d.PushRecordsLocked(models.SleepFIFOID, comm.Record{Counts: uint8(n * 7), Class: uint8(n/16) & 1})
		}
	}
	return dev
}

func run(ctx context.Context, mode string) error {
	var wait models.WaitFunc
	switch mode {
	case "unbounded":
		wait = waitForInput
	case "bounded":
		wait = models.WaitFor(acquireTime)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	conf, err := env.NewConfig()
	if err != nil {
		return err
	}
	var pub *mqtt.Publisher
	if conf.MQTTURL != "" {
		if pub, err = mqtt.NewPublisher(conf.MQTTURL); err != nil {
			return err
		}
		defer pub.Close()
	}
	owner, err := conf.NewOwner(simulatedSleep())
	if err != nil {
		return err
	}

	return owner.Use(func(s *comm.Session) error {
		recs, err := models.AcquireSleep(ctx, s, wait, models.SleepFIFOBytes)
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Printf("%d, %d\n", r.Counts, r.Class)
		}
		if pub != nil {
			if err := pub.Publish(recs); err != nil {
				return fmt.Errorf("publish records: %w", err)
			}
			glog.Infof("published %d records to %s", len(recs), pub.Topic())
		}
		return nil
	})
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	ctx, cancel := fx.SignalContext(context.Background())
	defer cancel()
	if err := run(ctx, flag.Arg(0)); err != nil {
		glog.Flush()
		log.Fatalln(err)
	}
}

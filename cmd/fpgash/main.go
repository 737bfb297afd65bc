package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/hostcomm/pkg/cli/sh"
	"github.com/robotalks/hostcomm/pkg/fpga/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()
	conf, err := env.NewConfig()
	if err != nil {
		log.Fatalln(err)
	}
	owner, err := conf.NewOwner(nil)
	if err != nil {
		log.Fatalln(err)
	}
	if err = owner.Use(sh.Main); err != nil {
		glog.Flush()
		log.Fatalln(err)
	}
}

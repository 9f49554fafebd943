// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// purespa-bridged decodes an Intex PureSpa control board's bus and exposes
// its state and controls over an in-process control interface, as wired up
// by a YAML configuration file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/Hatles/esp32-purespa/devices/purespa"
	"github.com/Hatles/esp32-purespa/internal/config"
)

func mainImpl() error {
	cfgPath := flag.String("config", "", "path to a YAML config file (defaults built in if omitted)")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	var cfg *config.Config
	if *cfgPath != "" {
		c, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = c
	} else {
		cfg = config.Default()
	}

	model, err := cfg.ParseModel()
	if err != nil {
		return err
	}
	period, err := cfg.ParsePeriod()
	if err != nil {
		return err
	}
	ackTimeout, err := cfg.ParseAckTimeout()
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("purespa-bridged: %w", err)
	}

	clk := gpioreg.ByName(cfg.Pins.Clock)
	if clk == nil {
		return errors.New("purespa-bridged: invalid clock pin")
	}
	data := gpioreg.ByName(cfg.Pins.Data)
	if data == nil {
		return errors.New("purespa-bridged: invalid data pin")
	}
	latch := gpioreg.ByName(cfg.Pins.Latch)
	if latch == nil {
		return errors.New("purespa-bridged: invalid latch pin")
	}

	d, err := purespa.New(clk, data, latch, &purespa.Opts{
		Model:      model,
		Language:   cfg.ParseLanguage(),
		Period:     period,
		AckTimeout: ackTimeout,
	})
	if err != nil {
		return fmt.Errorf("purespa-bridged: %w", err)
	}
	defer d.Halt()

	log.Printf("purespa-bridged: running as %s", d)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "purespa-bridged: %s.\n", err)
		os.Exit(1)
	}
}

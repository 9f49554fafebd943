// Copyright 2024 The PureSpa Bridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// purespa-monitor is a terminal dashboard that polls a decoded Intex
// PureSpa control board and renders its denoised state.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/Hatles/esp32-purespa/devices/purespa"
	"github.com/Hatles/esp32-purespa/internal/config"
)

const pollInterval = 250 * time.Millisecond

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	onColor   = lipgloss.Color("#73F59F")
	offColor  = lipgloss.Color("#FF6B6B")

	titleStyle = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(1).
			Width(36)

	onStyle  = lipgloss.NewStyle().Foreground(onColor).Bold(true)
	offStyle = lipgloss.NewStyle().Foreground(offColor)
)

type tickMsg time.Time

func doTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type dashboard struct {
	dev  *purespa.Dev
	snap purespa.Snapshot
}

func (d dashboard) Init() tea.Cmd { return doTick() }

func (d dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		d.snap = d.dev.Snapshot()
		return d, doTick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		}
	}
	return d, nil
}

func renderTristate(label string, v purespa.Tristate) string {
	switch v {
	case purespa.True:
		return onStyle.Render(label + ": on")
	case purespa.False:
		return offStyle.Render(label + ": off")
	default:
		return label + ": ?"
	}
}

func (d dashboard) View() string {
	s := d.snap
	online := offStyle.Render("offline")
	if s.Online {
		online = onStyle.Render("online")
	}

	status := panelStyle.Render(fmt.Sprintf(
		"Status: %s\nFrames: %d  Dropped: %d\nError: %s\n",
		online, s.TotalFrames, s.DroppedFrames, displayOr(s.ErrorCode, "-"),
	))

	temps := panelStyle.Render(fmt.Sprintf(
		"Water temp: %s\nSetpoint: %s\nDisinfection: %s\n",
		displayTemp(s.ActWaterTempCelsius), displayTemp(s.DesiredWaterTemp), displayHours(s.DisinfectionTime),
	))

	controls := panelStyle.Render(strings.Join([]string{
		renderTristate("Power", s.Power),
		renderTristate("Filter", s.Filter),
		renderTristate("Bubble", s.Bubble),
		renderTristate("Heater", s.Heater),
		renderTristate("Standby", s.HeaterStandby),
		renderTristate("Jet", s.Jet),
		renderTristate("Disinfection", s.Disinfection),
		renderTristate("Buzzer", s.Buzzer),
	}, "\n"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, status, temps, controls)
	help := titleStyle.Render("q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, help)
}

func displayTemp(c int) string {
	if c == purespa.UndefinedInt {
		return "?"
	}
	return fmt.Sprintf("%d°C", c)
}

func displayHours(h int) string {
	if h == purespa.UndefinedInt {
		return "?"
	}
	return fmt.Sprintf("%dh", h)
}

func displayOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func mainImpl() error {
	cfgPath := flag.String("config", "", "path to a YAML config file (defaults built in if omitted)")
	flag.Parse()

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

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("purespa-monitor: %w", err)
	}

	clk := gpioreg.ByName(cfg.Pins.Clock)
	if clk == nil {
		return errors.New("purespa-monitor: invalid clock pin")
	}
	data := gpioreg.ByName(cfg.Pins.Data)
	if data == nil {
		return errors.New("purespa-monitor: invalid data pin")
	}
	latch := gpioreg.ByName(cfg.Pins.Latch)
	if latch == nil {
		return errors.New("purespa-monitor: invalid latch pin")
	}

	dev, err := purespa.New(clk, data, latch, &purespa.Opts{
		Model:    model,
		Language: cfg.ParseLanguage(),
	})
	if err != nil {
		return fmt.Errorf("purespa-monitor: %w", err)
	}
	defer dev.Halt()

	p := tea.NewProgram(dashboard{dev: dev})
	_, err = p.Run()
	return err
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "purespa-monitor: %s.\n", err)
		os.Exit(1)
	}
}

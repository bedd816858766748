/*
air-monitor - CO2, temperature and humidity monitor.
Copyright (C) 2024, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package airmonitor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/TheCacophonyProject/air-monitor/internal/cycle"
	"github.com/TheCacophonyProject/air-monitor/serialhelper"
	"github.com/TheCacophonyProject/air-monitor/state"
	"github.com/TheCacophonyProject/go-utils/logging"
	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

const (
	serialBaud    = 115200
	serialRetries = 3
	serialWait    = time.Second
)

var version = "<not set>"
var log = logging.NewLogger("info")

type Args struct {
	Cycle      *subcommand `arg:"subcommand:cycle"       help:"Run one wake cycle then sleep (default)."`
	Status     *subcommand `arg:"subcommand:status"      help:"Print the stored reading."`
	ResetState *subcommand `arg:"subcommand:reset-state" help:"Clear the stored reading."`
	ConfigDir  string      `arg:"--config-dir" help:"Directory holding air-monitor.toml."`
	SkipSleep  bool        `arg:"--skip-sleep" help:"Arm the wake sources but don't power off."`
	LogSerial  string      `arg:"--log-serial" help:"Also write logs to this serial device."`
	logging.LogArgs
}

type subcommand struct {
}

func (Args) Version() string {
	return version
}

var defaultArgs = Args{
	ConfigDir: defaultConfigDir,
}

func procArgs(input []string) (Args, error) {
	args := defaultArgs

	parser, err := arg.NewParser(arg.Config{}, &args)
	if err != nil {
		return Args{}, err
	}
	err = parser.Parse(input)
	if errors.Is(err, arg.ErrHelp) {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if errors.Is(err, arg.ErrVersion) {
		fmt.Println(version)
		os.Exit(0)
	}
	return args, err
}

func Run(inputArgs []string, ver string) error {
	version = ver
	args, err := procArgs(inputArgs)
	if err != nil {
		return fmt.Errorf("failed to parse args: %v", err)
	}
	log = logging.NewLogger(args.LogLevel)
	if args.LogSerial != "" {
		closeSerial := teeToSerial(log, args.LogSerial)
		defer closeSerial()
	}

	log.Infof("Running version: %s", version)

	conf, err := ParseConfig(args.ConfigDir)
	if err != nil {
		return err
	}

	switch {
	case args.Status != nil:
		return status(conf, os.Stdout)
	case args.ResetState != nil:
		return resetState(conf)
	default:
		return runCycle(conf, args.SkipSleep)
	}
}

func runCycle(conf *Config, skipSleep bool) error {
	hw, err := openHardware(conf)
	if err != nil {
		return err
	}
	defer hw.Close()

	s, err := cycle.New(conf.cycleConfig(skipSleep), hw.Hardware).WithLogger(log).Run()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"cycle":    s.ID,
		"rendered": s.Rendered,
		"took":     time.Since(s.Started).Round(time.Millisecond),
	}).Info("Cycle finished without sleeping")
	return nil
}

// teeToSerial copies l's output to device as well as stderr. The returned
// func puts stderr back and releases the port.
func teeToSerial(l *logrus.Logger, device string) func() {
	port, err := serialhelper.Open(device, serialBaud, serialRetries, serialWait)
	if err != nil {
		l.Warnf("Not logging to %s: %v", device, err)
		return func() {}
	}
	l.SetOutput(io.MultiWriter(os.Stderr, port))
	return func() {
		l.SetOutput(os.Stderr)
		port.Close()
	}
}

// withStore opens just the state store, and the i2c bus when the store
// needs it.
func withStore(conf *Config, f func(*state.Store) error) error {
	var bus i2c.BusCloser
	defer func() {
		if bus != nil {
			bus.Close()
		}
	}()
	store, err := openStore(conf, func() (i2c.Bus, error) {
		var err error
		bus, err = openBus(conf)
		return bus, err
	})
	if err != nil {
		return err
	}
	return f(store)
}

func status(conf *Config, w io.Writer) error {
	return withStore(conf, func(store *state.Store) error {
		r, err := store.Inspect()
		if err != nil {
			fmt.Fprintf(w, "%s: %v, the next cycle starts from %s\n", store, err, store.Load())
			return nil
		}
		fmt.Fprintf(w, "%s: %s\n", store, r)
		return nil
	})
}

func resetState(conf *Config) error {
	return withStore(conf, func(store *state.Store) error {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear %s: %w", store, err)
		}
		log.Infof("Cleared stored reading in %s", store)
		return nil
	})
}

// Package env sets up FPGA sessions from defaults, environment, flags and
// an optional YAML file.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
	"github.com/robotalks/hostcomm/pkg/fpga/serial"
	"github.com/robotalks/hostcomm/pkg/fpga/sim"
)

// Config provides common options to open FPGA sessions.
type Config struct {
	Serial serial.Config `yaml:"serial"`

	// Simulate replaces the serial port with an in-memory device.
	Simulate bool `yaml:"simulate"`

	// MQTTURL, when set, is where acquired records are published.
	// e.g. mqtt://host:port/topic-prefix/
	MQTTURL string `yaml:"mqtt_url"`
}

var (
	defaultConfig = Config{Serial: serial.DefaultConfig()}
	configFile    string
)

func init() {
	if val := os.Getenv("FPGA_PORT"); val != "" {
		defaultConfig.Serial.Name = val
	}
	if val, err := strconv.Atoi(os.Getenv("FPGA_BAUD")); err == nil {
		defaultConfig.Serial.BaudRate = val
	}
	if val, err := time.ParseDuration(os.Getenv("FPGA_TIMEOUT")); err == nil {
		defaultConfig.Serial.Timeout = val
	}
	if val := os.Getenv("FPGA_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	configFile = os.Getenv("FPGA_CONFIG")
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	conf := &defaultConfig
	flag.StringVar(&configFile, "fpga-config", configFile, "YAML config file, overrides flags.")
	flag.StringVar(&conf.Serial.Name, "fpga-port", conf.Serial.Name, "Serial port connected to the FPGA.")
	flag.IntVar(&conf.Serial.BaudRate, "fpga-baud", conf.Serial.BaudRate, "Serial baud rate.")
	flag.IntVar(&conf.Serial.DataBits, "fpga-data-bits", conf.Serial.DataBits, "Serial data bits.")
	flag.StringVar(&conf.Serial.Parity, "fpga-parity", conf.Serial.Parity, "Serial parity: none, odd, even, mark, space.")
	flag.StringVar(&conf.Serial.StopBits, "fpga-stop-bits", conf.Serial.StopBits, "Serial stop bits: 1, 1.5, 2.")
	flag.DurationVar(&conf.Serial.Timeout, "fpga-timeout", conf.Serial.Timeout, "Serial read/write timeout.")
	flag.BoolVar(&conf.Simulate, "sim", conf.Simulate, "Use a simulated FPGA instead of the serial port.")
	flag.StringVar(&conf.MQTTURL, "mqtt", conf.MQTTURL, "MQTT broker URL to publish records.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config from defaults, environment and flags, then
// applies the config file if one is set.
func NewConfig() (*Config, error) {
	conf := defaultConfig
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	return &conf, nil
}

// LoadFile overlays the fields present in a YAML file.
func (c *Config) LoadFile(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	return c.Load(data)
}

// Load overlays the fields present in YAML data.
func (c *Config) Load(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Simulate {
		return nil
	}
	return c.Serial.Validate()
}

// Opener returns the transport opener selected by the config.
// device is used in simulation mode; nil creates a fresh one.
func (c *Config) Opener(device *sim.Device) (comm.Opener, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Simulate {
		if device == nil {
			device = sim.NewDevice()
		}
		return device.Opener(), nil
	}
	return serial.Opener(c.Serial), nil
}

// NewOwner creates the Owner of the configured transport.
func (c *Config) NewOwner(device *sim.Device) (*comm.Owner, error) {
	open, err := c.Opener(device)
	if err != nil {
		return nil, err
	}
	return comm.NewOwner(open), nil
}

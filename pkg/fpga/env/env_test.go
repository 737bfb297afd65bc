package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
	"github.com/robotalks/hostcomm/pkg/fpga/serial"
	"github.com/robotalks/hostcomm/pkg/fpga/sim"
)

func TestLoad(t *testing.T) {
	conf := Config{Serial: serial.DefaultConfig()}
	require.NoError(t, conf.Load([]byte(`
serial:
  port: /dev/ttyACM1
  baud_rate: 9600
  timeout: 2s
mqtt_url: mqtt://localhost:1883/fpga
`)))
	require.Equal(t, "/dev/ttyACM1", conf.Serial.Name)
	require.Equal(t, 9600, conf.Serial.BaudRate)
	require.Equal(t, 2*time.Second, conf.Serial.Timeout)
	require.Equal(t, 8, conf.Serial.DataBits)
	require.Equal(t, "none", conf.Serial.Parity)
	require.Equal(t, "mqtt://localhost:1883/fpga", conf.MQTTURL)
	require.False(t, conf.Simulate)
	require.NoError(t, conf.Validate())

	require.Error(t, conf.Load([]byte("serial: [")))
}

func TestLoadFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "fpga.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("simulate: true\nserial:\n  flow_control: hardware\n"), 0644))
	conf := Config{Serial: serial.DefaultConfig()}
	require.NoError(t, conf.LoadFile(fn))
	require.True(t, conf.Simulate)
	require.NoError(t, conf.Validate())

	conf.Simulate = false
	require.Error(t, conf.Validate())

	require.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestOpener(t *testing.T) {
	conf := Config{Serial: serial.DefaultConfig(), Simulate: true}
	d := sim.NewDevice()
	owner, err := conf.NewOwner(d)
	require.NoError(t, err)
	require.NoError(t, owner.Use(func(s *comm.Session) error {
		s.Settle = 0
		return s.Start()
	}))
	require.Equal(t, comm.CmdStop, d.Register(comm.CommandRegAddress))

	open, err := conf.Opener(nil)
	require.NoError(t, err)
	tr, err := open()
	require.NoError(t, err)
	require.IsType(t, &sim.Device{}, tr)

	conf = Config{Serial: serial.DefaultConfig()}
	conf.Serial.Name = ""
	_, err = conf.NewOwner(nil)
	require.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	saved := configFile
	defer func() { configFile = saved }()

	configFile = ""
	conf, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, *Default(), *conf)
	require.NotSame(t, Default(), conf)

	configFile = filepath.Join(t.TempDir(), "fpga.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("serial:\n  baud_rate: 57600\n"), 0644))
	conf, err = NewConfig()
	require.NoError(t, err)
	require.Equal(t, 57600, conf.Serial.BaudRate)
	require.NotEqual(t, 57600, Default().Serial.BaudRate)
}

package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jrockway/tsip/serialport"
)

// Config is the tracker's configuration.  It comes from defaults, then the TOML file named by
// -config, then any flags set on the command line.
type Config struct {
	Port                string // Serial port to read TSIP from; empty to read from gpspipe.
	Serial              serialport.Options
	Database            string
	Bind                string
	RTCTemperature      string // sysfs file with the RTC's temperature in millidegrees; empty to disable.
	InfluxURL           string // InfluxDB v2 write URL; the token comes from $INFLUXDB_TOKEN.
	TemperatureInterval time.Duration
	SatelliteInterval   time.Duration
	TimingInterval      time.Duration
	PacketInterval      time.Duration
}

func DefaultConfig() Config {
	return Config{
		Serial:              serialport.DefaultOptions(),
		Database:            "tracker.db",
		Bind:                ":8888",
		RTCTemperature:      "/sys/class/rtc/rtc0/device/hwmon/hwmon0/temp1_input",
		TemperatureInterval: time.Minute,
		SatelliteInterval:   5 * time.Minute,
		TimingInterval:      time.Minute,
		PacketInterval:      10 * time.Minute,
	}
}

type fileConfig struct {
	Port                string             `toml:"port"`
	Serial              serialport.Options `toml:"serial"`
	Database            string             `toml:"db"`
	Bind                string             `toml:"bind"`
	RTCTemperature      string             `toml:"rtc_temperature"`
	InfluxURL           string             `toml:"influx_url"`
	TemperatureInterval string             `toml:"temperature_interval"`
	SatelliteInterval   string             `toml:"satellite_interval"`
	TimingInterval      string             `toml:"timing_interval"`
	PacketInterval      string             `toml:"packet_interval"`
}

// LoadConfig applies the settings in a TOML file on top of cfg.
func LoadConfig(path string, cfg Config) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load tracker config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load tracker config: unknown keys %v", undecoded)
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("serial", "baud") {
		cfg.Serial.BaudRate = raw.Serial.BaudRate
	}
	if meta.IsDefined("serial", "data_bits") {
		cfg.Serial.DataBits = raw.Serial.DataBits
	}
	if meta.IsDefined("serial", "stop_bits") {
		cfg.Serial.StopBits = raw.Serial.StopBits
	}
	if meta.IsDefined("serial", "parity") {
		cfg.Serial.Parity = raw.Serial.Parity
	}
	serial, err := cfg.Serial.Normalize()
	if err != nil {
		return Config{}, fmt.Errorf("parse serial: %w", err)
	}
	cfg.Serial = serial
	if meta.IsDefined("db") {
		cfg.Database = raw.Database
	}
	if meta.IsDefined("bind") {
		cfg.Bind = raw.Bind
	}
	if meta.IsDefined("rtc_temperature") {
		cfg.RTCTemperature = raw.RTCTemperature
	}
	if meta.IsDefined("influx_url") {
		cfg.InfluxURL = strings.TrimSpace(raw.InfluxURL)
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"temperature_interval", raw.TemperatureInterval, &cfg.TemperatureInterval},
		{"satellite_interval", raw.SatelliteInterval, &cfg.SatelliteInterval},
		{"timing_interval", raw.TimingInterval, &cfg.TimingInterval},
		{"packet_interval", raw.PacketInterval, &cfg.PacketInterval},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return cfg, nil
}

var (
	configFile = flag.String("config", "", "TOML config file; flags override its settings")
	port       = flag.String("port", "", "serial port to read TSIP from; empty to read from gpspipe")
	baud       = flag.Int("baud", 9600, "serial port baud rate")
	parity     = flag.String("parity", "O", "serial port parity (N, E or O)")
	dbfile     = flag.String("db", "tracker.db", "database file to write")
	bind       = flag.String("bind", ":8888", "address to bind for debug/metrics server")
)

// buildConfig assembles the configuration from the defaults, the config file, and the flags that
// were explicitly set.
func buildConfig() (Config, error) {
	cfg := DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = LoadConfig(*configFile, cfg)
		if err != nil {
			return Config{}, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "baud":
			cfg.Serial.BaudRate = *baud
		case "parity":
			cfg.Serial.Parity = *parity
		case "db":
			cfg.Database = *dbfile
		case "bind":
			cfg.Bind = *bind
		}
	})
	serial, err := cfg.Serial.Normalize()
	if err != nil {
		return Config{}, fmt.Errorf("serial flags: %w", err)
	}
	cfg.Serial = serial
	return cfg, nil
}

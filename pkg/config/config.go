package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

type MQTTConfig struct {
	Server            string `json:"server"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	ClientID          string `json:"client_id"`
	StateTopic        string `json:"state_topic"`
	DiscoveryTopic    string `json:"discovery_topic"`
	DiscoveryName     string `json:"discovery_name"`
	DiscoveryUniqueID string `json:"discovery_unique_id"`
}

type FileConfig struct {
	Path string `json:"path"`
}

type OutputConfig struct {
	Type string      `json:"type"`
	MQTT *MQTTConfig `json:"mqtt,omitempty"`
	File *FileConfig `json:"file,omitempty"`
}

type Config struct {
	Device     string         `json:"device"`
	BaudRate   int            `json:"baud_rate"`
	TimeoutMs  int            `json:"timeout_ms"`
	Range      string         `json:"range"`
	NPLC       int            `json:"nplc"`
	MeterType  string         `json:"meter_type"` // real|simulation
	TempDevice string         `json:"temp_device,omitempty"`
	NSamples   int            `json:"n_samples"`
	NRecords   int            `json:"n_records"`
	IntervalMs int            `json:"interval_ms"`
	Outputs    []OutputConfig `json:"outputs"`
}

func DefaultConfig() Config {
	return Config{
		Device:     "/dev/ttyUSB0",
		BaudRate:   9600,
		TimeoutMs:  500,
		Range:      "VOLT:DC 10,DEF",
		NPLC:       10,
		MeterType:  "real",
		NSamples:   3,
		NRecords:   500,
		IntervalMs: 0,
		Outputs:    []OutputConfig{{Type: "console"}},
	}
}

// LoadFromFlags loads configuration from a JSON file (optional) and flags.
// Flags override values present in the JSON file.
func LoadFromFlags() (Config, error) {
	cfgPath := flag.String("config", "", "Path to JSON config file")
	flagDevice := flag.String("device", "", "Serial device for the multimeter (e.g. /dev/ttyUSB0)")
	flagBaud := flag.Int("baud", -1, "Serial baud rate")
	flagTimeout := flag.Int("timeout-ms", -1, "Serial read timeout in ms")
	flagRange := flag.String("range", "", "Meter range string passed through to CONF (see 34401A manual)")
	flagNPLC := flag.Int("nplc", -1, "Integration time in power line cycles")
	flagMeterType := flag.String("meter-type", "", "Meter type: real|simulation")
	flagTempDevice := flag.String("temp-device", "", "Serial device for the Lakeshore 218 (empty = disabled)")
	flagNSamp := flag.Int("n-samples", -1, "Samples averaged per record")
	flagNRec := flag.Int("n-records", -1, "Number of records to log")
	flagInterval := flag.Int("interval-ms", -1, "Delay between records in ms (0 = back to back)")
	flagOutputs := flag.String("outputs", "", "Comma-separated outputs (console,csv,mqtt)")
	flagFile := flag.String("file", "", "CSV output file path")
	flagMQTTServer := flag.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := flag.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := flag.String("mqtt-pass", "", "MQTT password")
	flagClientID := flag.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := flag.String("mqtt-topic", "", "MQTT state topic")

	flag.Parse()

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if *flagDevice != "" {
		cfg.Device = *flagDevice
	}
	if *flagBaud != -1 {
		cfg.BaudRate = *flagBaud
	}
	if *flagTimeout != -1 {
		cfg.TimeoutMs = *flagTimeout
	}
	if *flagRange != "" {
		cfg.Range = *flagRange
	}
	if *flagNPLC != -1 {
		cfg.NPLC = *flagNPLC
	}
	if *flagMeterType != "" {
		cfg.MeterType = *flagMeterType
	}
	if *flagTempDevice != "" {
		cfg.TempDevice = *flagTempDevice
	}
	if *flagNSamp != -1 {
		cfg.NSamples = *flagNSamp
	}
	if *flagNRec != -1 {
		cfg.NRecords = *flagNRec
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p})
		}
		cfg.Outputs = outs
	}
	if *flagFile != "" {
		applied := false
		for i := range cfg.Outputs {
			if strings.ToLower(cfg.Outputs[i].Type) == "csv" {
				cfg.Outputs[i].File = &FileConfig{Path: *flagFile}
				applied = true
			}
		}
		if !applied {
			cfg.Outputs = append(cfg.Outputs, OutputConfig{Type: "csv", File: &FileConfig{Path: *flagFile}})
		}
	}
	// Map mqtt flags onto every mqtt output; create one if none exists.
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		applied := false
		for i := range cfg.Outputs {
			if strings.ToLower(cfg.Outputs[i].Type) == "mqtt" {
				if cfg.Outputs[i].MQTT == nil {
					cfg.Outputs[i].MQTT = &MQTTConfig{}
				}
				applyMQTTFlags(cfg.Outputs[i].MQTT, *flagMQTTServer, *flagMQTTUser, *flagMQTTPass, *flagClientID, *flagTopic)
				applied = true
			}
		}
		if !applied {
			mqttOut := OutputConfig{Type: "mqtt", MQTT: &MQTTConfig{}}
			applyMQTTFlags(mqttOut.MQTT, *flagMQTTServer, *flagMQTTUser, *flagMQTTPass, *flagClientID, *flagTopic)
			cfg.Outputs = append(cfg.Outputs, mqttOut)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the invariants the acquisition loop relies on.
func (c Config) Validate() error {
	if c.NSamples < 1 {
		return errors.New("n-samples must be >= 1")
	}
	if c.NRecords < 1 {
		return errors.New("n-records must be >= 1")
	}
	if c.BaudRate <= 0 {
		return errors.New("baud must be > 0")
	}
	if c.TimeoutMs <= 0 {
		return errors.New("timeout-ms must be > 0")
	}
	switch c.MeterType {
	case "real", "simulation":
	default:
		return fmt.Errorf("unknown meter-type %q", c.MeterType)
	}
	return nil
}

func applyMQTTFlags(m *MQTTConfig, server, user, pass, clientID, topic string) {
	if server != "" {
		m.Server = server
	}
	if user != "" {
		m.Username = user
	}
	if pass != "" {
		m.Password = pass
	}
	if clientID != "" {
		m.ClientID = clientID
	}
	if topic != "" {
		m.StateTopic = topic
	}
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

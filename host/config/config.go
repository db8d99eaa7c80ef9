// Package config loads the bench rig configuration
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"ap1key/core"
	"ap1key/host/serial"
)

// Config is the bench rig configuration file
type Config struct {
	Device        string `json:"device"`
	Baud          int    `json:"baud"`
	ReadTimeoutMs int    `json:"read_timeout_ms"`

	// Link loop cadence
	PollIntervalMs int `json:"poll_interval_ms"`

	// Busy handling: a command refused with a busy link is retried this
	// many times, BusyDelayMs apart
	BusyRetries int `json:"busy_retries"`
	BusyDelayMs int `json:"busy_delay_ms"`

	// HTTPListen is the control API address, empty disables it
	HTTPListen string `json:"http_listen"`

	Bluetooth BluetoothConfig `json:"bluetooth"`
	USBReport bool            `json:"usb_report"`
}

// BluetoothConfig is the Bluetooth state the rig starts with
type BluetoothConfig struct {
	SavedHosts    []int  `json:"saved_hosts"` // 1-based slots
	ConnectedHost int    `json:"connected_host"`
	Mode          string `json:"mode"` // unknown, ble or legacy
}

// LoadConfig parses a JSON configuration and applies defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses a configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used without a config file
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *Config) {
	link := serial.DefaultConfig(config.Device)

	if config.Device == "" {
		config.Device = "/dev/ttyUSB0"
	}
	if config.Baud == 0 {
		config.Baud = link.Baud
	}
	if config.ReadTimeoutMs == 0 {
		config.ReadTimeoutMs = link.ReadTimeout
	}
	if config.PollIntervalMs == 0 {
		config.PollIntervalMs = 2
	}
	if config.BusyRetries == 0 {
		config.BusyRetries = 20
	}
	if config.BusyDelayMs == 0 {
		config.BusyDelayMs = 10
	}
	if config.Bluetooth.Mode == "" {
		config.Bluetooth.Mode = "unknown"
	}
}

// Validate checks values that have no sensible default
func (c *Config) Validate() error {
	if c.Baud < 0 || c.ReadTimeoutMs < 0 || c.PollIntervalMs < 0 {
		return fmt.Errorf("negative serial timing in config")
	}
	if c.BusyRetries < 0 || c.BusyDelayMs < 0 {
		return fmt.Errorf("negative busy retry settings in config")
	}
	_, err := c.BluetoothStatus()
	return err
}

// Serial returns the serial port configuration
func (c *Config) Serial() *serial.Config {
	return &serial.Config{
		Device:      c.Device,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeoutMs,
	}
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) BusyDelay() time.Duration {
	return time.Duration(c.BusyDelayMs) * time.Millisecond
}

// BluetoothStatus converts the configured Bluetooth state
func (c *Config) BluetoothStatus() (core.BluetoothStatus, error) {
	var status core.BluetoothStatus

	for _, slot := range c.Bluetooth.SavedHosts {
		if slot < 1 || slot > core.MaxHostSlot {
			return status, fmt.Errorf("saved host slot %d out of range 1-%d", slot, core.MaxHostSlot)
		}
		status.SavedHosts |= 1 << (slot - 1)
	}

	if c.Bluetooth.ConnectedHost < 0 || c.Bluetooth.ConnectedHost > core.MaxHostSlot {
		return status, fmt.Errorf("connected host slot %d out of range 0-%d", c.Bluetooth.ConnectedHost, core.MaxHostSlot)
	}
	status.ConnectedHost = uint8(c.Bluetooth.ConnectedHost)

	mode, err := ParseMode(c.Bluetooth.Mode)
	if err != nil {
		return status, err
	}
	status.Mode = mode
	return status, nil
}

// ParseMode parses a Bluetooth mode name
func ParseMode(name string) (core.BluetoothMode, error) {
	for _, mode := range []core.BluetoothMode{core.BluetoothUnknown, core.BluetoothBle, core.BluetoothLegacy} {
		if mode.String() == name {
			return mode, nil
		}
	}
	return core.BluetoothUnknown, fmt.Errorf("unknown bluetooth mode %q", name)
}

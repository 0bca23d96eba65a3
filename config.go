package main

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the gateway listens on (e.g. "0.0.0.0:8080")
	BindAddress string
	// SerialPort is the path to the modem's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string
	// BaudRate is the baud rate for serial communication with the modem (e.g. 115200)
	BaudRate int
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
	// SimPIN is the SIM card PIN code
	SimPIN string
	// APN is the access point of the packet data network
	APN string
	// APNUser and APNPassword authenticate against the APN, if required
	APNUser     string
	APNPassword string
	// Debug traces the modem exchange
	Debug bool
	// Timeout bounds how long an exchange waits for the reply
	Timeout time.Duration
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyACM0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.APN = "internet"
		c.Timeout = 10 * time.Second
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if simPIN := os.Getenv("SIM_PIN"); simPIN != "" {
			c.SimPIN = simPIN
		}

		if apn := os.Getenv("APN"); apn != "" {
			c.APN = apn
		}

		if user := os.Getenv("APN_USER"); user != "" {
			c.APNUser = user
		}

		if password := os.Getenv("APN_PASSWORD"); password != "" {
			c.APNPassword = password
		}

		if debug := os.Getenv("MODEM_DEBUG"); debug != "" {
			if d, err := strconv.ParseBool(debug); err == nil {
				c.Debug = d
			}
		}

		if timeout := os.Getenv("EXCHANGE_TIMEOUT"); timeout != "" {
			if d, err := time.ParseDuration(timeout); err == nil {
				c.Timeout = d
			}
		}

		return nil
	}
}

// WithFlags loads configuration from the command-line flags that were set
func WithFlags(fSet *pflag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *pflag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "sim-pin":
				c.SimPIN = f.Value.String()
			case "apn":
				c.APN = f.Value.String()
			case "apn-user":
				c.APNUser = f.Value.String()
			case "apn-password":
				c.APNPassword = f.Value.String()
			case "debug":
				if d, err := strconv.ParseBool(f.Value.String()); err == nil {
					c.Debug = d
				}
			case "timeout":
				if d, err := time.ParseDuration(f.Value.String()); err == nil {
					c.Timeout = d
				}
			}
		})
		return nil
	}
}

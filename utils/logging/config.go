// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import "time"

// Config defines the configuration of a logger
type Config struct {
	RotatingWriterConfig
	DisableWriterDisplaying bool   `json:"disableWriterDisplaying"`
	LogLevel                Level  `json:"logLevel"`
	DisplayLevel            Level  `json:"displayLevel"`
	MsgPrefix               string `json:"-"`
	LoggerName              string `json:"-"`
}

// RotatingWriterConfig defines the configuration of the rotating file
// writer backing a logger.
type RotatingWriterConfig struct {
	MaxSize   int           `json:"maxSize"` // in megabytes
	MaxFiles  int           `json:"maxFiles"`
	MaxAge    time.Duration `json:"maxAge"`
	Directory string        `json:"directory"`
	Compress  bool          `json:"compress"`
}

// DefaultConfig returns a logger configuration with sane defaults: info
// level display, debug level files rotated at 8 MB.
func DefaultConfig(directory string) Config {
	return Config{
		RotatingWriterConfig: RotatingWriterConfig{
			MaxSize:   8,
			MaxFiles:  7,
			MaxAge:    0,
			Directory: directory,
		},
		LogLevel:     Debug,
		DisplayLevel: Info,
	}
}

/*
 * Copyright 2026 Opsforge, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger provides JSON structured logging using zerolog, with an
// optional OTLP/gRPC log export bridge.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	Level      string     `json:"level" yaml:"level"`
	Debug      bool       `json:"debug" yaml:"debug"`
	Output     string     `json:"output" yaml:"output"`
	TimeFormat string     `json:"time_format" yaml:"time_format"`
	OTel       OTelConfig `json:"otel" yaml:"otel"`
}

// Log implements the Logger interface without global state.
type Log struct {
	logger zerolog.Logger
}

// New builds a logger from config. If config is nil the defaults apply.
// The context is only used to establish the OTLP exporter connection when
// OTel export is enabled.
func New(ctx context.Context, config *Config) (*Log, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var output io.Writer = os.Stdout
	if config.Output == "stderr" {
		output = os.Stderr
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	if config.OTel.Enabled && config.OTel.Endpoint != "" {
		otelWriter, err := NewOTelWriter(ctx, config.OTel)
		if err != nil {
			return nil, err
		}

		output = zerolog.MultiLevelWriter(output, otelWriter)
	}

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Log{logger: zlog}, nil
}

// NewComponentLogger builds a logger carrying a fixed component field.
func NewComponentLogger(ctx context.Context, component string, config *Config) (Logger, error) {
	base, err := New(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Log{logger: base.logger.With().Str("component", component).Logger()}, nil
}

func (l *Log) Trace() *zerolog.Event { return l.logger.Trace() }
func (l *Log) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Log) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Log) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Log) Error() *zerolog.Event { return l.logger.Error() }
func (l *Log) Fatal() *zerolog.Event { return l.logger.Fatal() }
func (l *Log) Panic() *zerolog.Event { return l.logger.Panic() }
func (l *Log) With() zerolog.Context { return l.logger.With() }

func (l *Log) WithComponent(component string) zerolog.Logger {
	return l.logger.With().Str("component", component).Logger()
}

func (l *Log) SetLevel(level zerolog.Level) {
	l.logger = l.logger.Level(level)
}

func (l *Log) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)
	} else {
		l.SetLevel(zerolog.InfoLevel)
	}
}

// Shutdown flushes any pending exported log records.
func Shutdown() error {
	return shutdownOTel()
}

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

package provision

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/opsforge/puppetprov/pkg/logger"
)

// captureLogger collects zerolog output so tests can assert on warnings.
type captureLogger struct {
	zl zerolog.Logger
}

func newCaptureLogger(buf *bytes.Buffer) logger.Logger {
	return &captureLogger{zl: zerolog.New(buf)}
}

func (c *captureLogger) Trace() *zerolog.Event { return c.zl.Trace() }
func (c *captureLogger) Debug() *zerolog.Event { return c.zl.Debug() }
func (c *captureLogger) Info() *zerolog.Event  { return c.zl.Info() }
func (c *captureLogger) Warn() *zerolog.Event  { return c.zl.Warn() }
func (c *captureLogger) Error() *zerolog.Event { return c.zl.Error() }
func (c *captureLogger) Fatal() *zerolog.Event { return c.zl.Fatal() }
func (c *captureLogger) Panic() *zerolog.Event { return c.zl.Panic() }
func (c *captureLogger) With() zerolog.Context { return c.zl.With() }
func (c *captureLogger) WithComponent(component string) zerolog.Logger {
	return c.zl.With().Str("component", component).Logger()
}
func (c *captureLogger) SetLevel(level zerolog.Level) { c.zl = c.zl.Level(level) }
func (c *captureLogger) SetDebug(bool)                {}

func boolPtr(b bool) *bool { return &b }

func TestBuildPlanDefaults(t *testing.T) {
	p := BuildPlan(&Config{}, logger.NewTestLogger())

	require.True(t, p.Install)
	require.Equal(t, InstallMethodPackages, p.Method)
	require.Equal(t, "puppet", p.PackageName)
	require.Equal(t, "puppet", p.PuppetBin)
	require.Equal(t, "puppet", p.RunUser)
	require.True(t, p.Cleanup)
	require.False(t, p.RunAgent)
	require.Equal(t, []string{"--test"}, p.AgentArgs)
	require.Equal(t, DefaultAIOInstallURL, p.AIOInstallURL)
}

func TestBuildPlanAIODefaults(t *testing.T) {
	p := BuildPlan(&Config{InstallType: "aio"}, logger.NewTestLogger())

	require.True(t, p.Install)
	require.Equal(t, InstallMethodAIO, p.Method)
	require.Equal(t, "puppet-agent", p.PackageName)
	require.Equal(t, "/opt/puppetlabs/bin/puppet", p.PuppetBin)
	require.Equal(t, "root", p.RunUser)
}

func TestBuildPlanPackageNameOverride(t *testing.T) {
	p := BuildPlan(&Config{PackageName: "puppet5"}, logger.NewTestLogger())
	require.Equal(t, "puppet5", p.PackageName)
}

func TestBuildPlanInstallFalseWithVersionWarns(t *testing.T) {
	var buf bytes.Buffer

	p := BuildPlan(&Config{
		Install: boolPtr(false),
		Version: "6.0.0",
	}, newCaptureLogger(&buf))

	require.False(t, p.Install)
	require.Contains(t, buf.String(), "doing nothing")
}

func TestBuildPlanUnknownTypeDisablesAgentRun(t *testing.T) {
	var buf bytes.Buffer

	p := BuildPlan(&Config{
		InstallType: "bogus",
		Exec:        true,
	}, newCaptureLogger(&buf))

	require.False(t, p.Install)
	require.False(t, p.RunAgent, "an unknown install type must force the agent run off")
	require.Contains(t, buf.String(), "Unknown puppet install type")
}

func TestNormalizeAgentArgs(t *testing.T) {
	tests := []struct {
		name     string
		raw      interface{}
		expected []string
		warns    bool
	}{
		{name: "absent", raw: nil, expected: []string{"--test"}},
		{name: "string is whitespace split", raw: "--onetime --no-daemonize", expected: []string{"--onetime", "--no-daemonize"}},
		{name: "list of strings", raw: []interface{}{"--verbose", "--onetime"}, expected: []string{"--verbose", "--onetime"}},
		{name: "empty list falls back", raw: []interface{}{}, expected: []string{"--test"}},
		{name: "integer falls back with warning", raw: 5, expected: []string{"--test"}, warns: true},
		{name: "mixed list falls back with warning", raw: []interface{}{"--verbose", 3}, expected: []string{"--test"}, warns: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			got := normalizeAgentArgs(tt.raw, newCaptureLogger(&buf))
			require.Equal(t, tt.expected, got)

			if tt.warns {
				require.Contains(t, buf.String(), "exec_args")
			} else {
				require.Empty(t, buf.String())
			}
		})
	}
}

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

package inifile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConf = `# managed by hand, do not panic
[main]
logdir = /var/log/puppet

[agent]
server = puppet.example.org
runinterval = 30m
`

func TestParseRenderRoundTrip(t *testing.T) {
	f := Parse(sampleConf)
	require.Equal(t, sampleConf, f.Render())
}

func TestRoundTripPreservesMalformedLines(t *testing.T) {
	text := "junk without equals\n[agent]\n  indented = kept\nmore junk here\n"
	f := Parse(text)
	require.Equal(t, text, f.Render())

	v, ok := f.Get("agent", "indented")
	require.True(t, ok)
	require.Equal(t, "kept", v)
}

func TestSetAppendsSingleLine(t *testing.T) {
	f := Parse(sampleConf)
	f.Set("agent", "certname", "node01.example.org")

	got := f.Render()
	require.Equal(t, strings.Count(sampleConf, "\n")+1, strings.Count(got, "\n"))
	require.Contains(t, got, "certname = node01.example.org")

	// Everything else survives byte for byte, in order.
	require.True(t, strings.HasPrefix(got, "# managed by hand, do not panic\n[main]\nlogdir = /var/log/puppet\n"))
	require.Contains(t, got, "server = puppet.example.org\nruninterval = 30m\ncertname = node01.example.org\n")
}

func TestSetAppendKeepsBlankSeparator(t *testing.T) {
	f := Parse(sampleConf)
	f.Set("main", "ssldir", "/var/lib/puppet/ssl")

	// The new key lands inside the [main] block, before the blank separator.
	require.Contains(t, f.Render(), "logdir = /var/log/puppet\nssldir = /var/lib/puppet/ssl\n\n[agent]")
}

func TestSetOverwritesInPlace(t *testing.T) {
	f := Parse(sampleConf)
	f.Set("agent", "server", "puppet02.example.org")

	got := f.Render()
	require.NotContains(t, got, "puppet.example.org\n")
	require.Contains(t, got, "[agent]\nserver = puppet02.example.org\nruninterval = 30m\n")
	require.Equal(t, strings.Count(sampleConf, "\n"), strings.Count(got, "\n"))
}

func TestSetIsIdempotent(t *testing.T) {
	once := Parse(sampleConf)
	once.Set("agent", "certname", "a.example.org")

	twice := Parse(sampleConf)
	twice.Set("agent", "certname", "a.example.org")
	twice.Set("agent", "certname", "a.example.org")

	require.Equal(t, once.Render(), twice.Render())
}

func TestSetCreatesSectionAtEnd(t *testing.T) {
	f := Parse(sampleConf)
	f.Set("user", "environment", "production")

	got := f.Render()
	require.True(t, strings.HasSuffix(got, "[user]\nenvironment = production\n"))
	require.True(t, strings.HasPrefix(got, sampleConf[:len(sampleConf)-1]))
}

func TestParseEmpty(t *testing.T) {
	f := Parse("")
	require.Equal(t, "", f.Render())

	f.Set("main", "server", "puppet")
	require.Equal(t, "[main]\nserver = puppet\n", f.Render())
}

func TestNoTrailingNewlinePreserved(t *testing.T) {
	text := "[agent]\nserver = a"
	require.Equal(t, text, Parse(text).Render())
}

func TestCommentWithEqualsStaysOpaque(t *testing.T) {
	text := "[agent]\n# server = commented-out\n"
	f := Parse(text)

	_, ok := f.Get("agent", "# server")
	require.False(t, ok)
	require.Equal(t, text, f.Render())
}

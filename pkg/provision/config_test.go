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
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigDecodePreservesConfOrder(t *testing.T) {
	doc := `
install: false
version: "7.4.0"
conf:
  main:
    server: puppetserver.example.org
    runinterval: 1800
  agent:
    certname: "%i.%f"
  master:
    autosign: true
`

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))

	require.False(t, cfg.InstallEnabled())
	require.Equal(t, "7.4.0", cfg.Version)

	require.Len(t, cfg.Conf, 3)
	require.Equal(t, "main", cfg.Conf[0].Name)
	require.Equal(t, "agent", cfg.Conf[1].Name)
	require.Equal(t, "master", cfg.Conf[2].Name)

	require.Equal(t, []ConfEntry{
		{Key: "server", Value: "puppetserver.example.org"},
		{Key: "runinterval", Value: 1800},
	}, cfg.Conf[0].Entries)
	require.Equal(t, []ConfEntry{{Key: "certname", Value: "%i.%f"}}, cfg.Conf[1].Entries)
	require.Equal(t, []ConfEntry{{Key: "autosign", Value: true}}, cfg.Conf[2].Entries)
}

func TestConfigDecodeRejectsNonMappingConf(t *testing.T) {
	var cfg Config

	err := yaml.Unmarshal([]byte("conf: [main, agent]\n"), &cfg)
	require.ErrorIs(t, err, errConfNotMapping)

	err = yaml.Unmarshal([]byte("conf:\n  agent: just-a-string\n"), &cfg)
	require.ErrorIs(t, err, errConfNotMapping)
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte("{}\n"), &cfg))

	require.True(t, cfg.InstallEnabled())
	require.True(t, cfg.CleanupEnabled())
	require.Equal(t, "packages", cfg.installTypeOrDefault())
	require.Equal(t, DefaultAIOInstallURL, cfg.aioInstallURLOrDefault())
	require.Nil(t, cfg.Conf)
	require.Nil(t, cfg.CSRAttributes)
}

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
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultAIOInstallURL is where the puppetlabs one-shot install script lives
// unless the document overrides it.
const DefaultAIOInstallURL = "https://raw.githubusercontent.com/puppetlabs/install-puppet/main/install.sh"

var errConfNotMapping = errors.New("conf must be a mapping of section name to key/value pairs")

// Config is the declarative provisioning document: the `puppet` key of a
// cloud-config style file. It is read once per run and never mutated.
type Config struct {
	Install           *bool        `json:"install" yaml:"install"`
	Version           string       `json:"version" yaml:"version"`
	Collection        string       `json:"collection" yaml:"collection"`
	InstallType       string       `json:"install_type" yaml:"install_type"`
	Cleanup           *bool        `json:"cleanup" yaml:"cleanup"`
	AIOInstallURL     string       `json:"aio_install_url" yaml:"aio_install_url"`
	ConfFile          string       `json:"conf_file" yaml:"conf_file"`
	SSLDir            string       `json:"ssl_dir" yaml:"ssl_dir"`
	CSRAttributesPath string       `json:"csr_attributes_path" yaml:"csr_attributes_path"`
	PackageName       string       `json:"package_name" yaml:"package_name"`
	Exec              bool         `json:"exec" yaml:"exec"`
	ExecArgs          interface{}  `json:"exec_args" yaml:"exec_args"`
	Conf              ConfSections `json:"conf" yaml:"conf"`

	// CSRAttributes is serialized verbatim to the agent's csr_attributes.yaml.
	CSRAttributes map[string]interface{} `json:"csr_attributes" yaml:"csr_attributes"`
}

// ConfEntry is one key/value pair inside a conf section.
type ConfEntry struct {
	Key   string
	Value interface{}
}

// ConfSection is one named section of the agent config document.
type ConfSection struct {
	Name    string
	Entries []ConfEntry
}

// ConfSections preserves the document order of sections and of the entries
// within them, which plain map decoding would lose.
type ConfSections []ConfSection

func (s *ConfSections) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errConfNotMapping
	}

	sections := make(ConfSections, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		nameNode, bodyNode := node.Content[i], node.Content[i+1]

		if bodyNode.Kind != yaml.MappingNode {
			return fmt.Errorf("%w: section %q", errConfNotMapping, nameNode.Value)
		}

		sec := ConfSection{Name: nameNode.Value}

		for j := 0; j+1 < len(bodyNode.Content); j += 2 {
			var value interface{}
			if err := bodyNode.Content[j+1].Decode(&value); err != nil {
				return fmt.Errorf("decode conf entry %q in section %q: %w",
					bodyNode.Content[j].Value, nameNode.Value, err)
			}

			sec.Entries = append(sec.Entries, ConfEntry{Key: bodyNode.Content[j].Value, Value: value})
		}

		sections = append(sections, sec)
	}

	*s = sections

	return nil
}

// InstallEnabled reports whether the agent should be installed; the document
// default is true.
func (c *Config) InstallEnabled() bool {
	if c.Install == nil {
		return true
	}

	return *c.Install
}

// CleanupEnabled reports whether the AIO installer should purge the
// puppetlabs repositories afterwards; the document default is true.
func (c *Config) CleanupEnabled() bool {
	if c.Cleanup == nil {
		return true
	}

	return *c.Cleanup
}

func (c *Config) installTypeOrDefault() string {
	if c.InstallType == "" {
		return string(InstallMethodPackages)
	}

	return c.InstallType
}

func (c *Config) aioInstallURLOrDefault() string {
	if c.AIOInstallURL == "" {
		return DefaultAIOInstallURL
	}

	return c.AIOInstallURL
}

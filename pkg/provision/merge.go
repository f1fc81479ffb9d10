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
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opsforge/puppetprov/pkg/inifile"
)

// caCertKey is the reserved conf entry that carries the puppetserver CA
// certificate. It is never written to puppet.conf; it becomes a file under
// the SSL dir instead.
const caCertKey = "ca_cert"

// applyConf merges the document's conf sections into puppet.conf, preserving
// every setting the document does not touch. The previous file is kept as a
// `.old` backup and the new content lands via an atomic rename.
func (p *Provisioner) applyConf() error {
	existing, err := p.fs.ReadFile(p.paths.ConfFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", p.paths.ConfFile, err)
	}

	file := inifile.Parse(string(existing))

	for _, sec := range p.cfg.Conf {
		for _, e := range sec.Entries {
			if e.Key == caCertKey {
				if err := p.writeServerCACert(stringifyValue(e.Value)); err != nil {
					return err
				}

				continue
			}

			value := stringifyValue(e.Value)

			if e.Key == "certname" {
				value, err = p.expandCertname(value)
				if err != nil {
					return err
				}
			}

			file.Set(sec.Name, e.Key, value)
		}
	}

	p.log.Debug().
		Str("path", p.paths.ConfFile).
		Msg("Writing merged puppet configuration")

	if p.fs.Exists(p.paths.ConfFile) {
		if err := p.fs.Rename(p.paths.ConfFile, p.paths.ConfFile+".old"); err != nil {
			return fmt.Errorf("back up %s: %w", p.paths.ConfFile, err)
		}
	}

	tmpPath := p.paths.ConfFile + ".tmp"
	if err := p.fs.WriteFile(tmpPath, []byte(file.Render()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}

	if err := p.fs.Rename(tmpPath, p.paths.ConfFile); err != nil {
		return fmt.Errorf("replace %s: %w", p.paths.ConfFile, err)
	}

	return nil
}

// expandCertname substitutes %f with the machine FQDN and %i with the
// instance id, then lower-cases the result; certificate names are
// canonically lower case.
func (p *Provisioner) expandCertname(value string) (string, error) {
	if strings.Contains(value, "%f") {
		fqdn, err := p.identity.FQDN()
		if err != nil {
			return "", fmt.Errorf("look up machine fqdn: %w", err)
		}

		value = strings.ReplaceAll(value, "%f", fqdn)
	}

	if strings.Contains(value, "%i") {
		instanceID, err := p.identity.InstanceID()
		if err != nil {
			return "", fmt.Errorf("look up instance id: %w", err)
		}

		value = strings.ReplaceAll(value, "%i", instanceID)
	}

	return strings.ToLower(value), nil
}

// writeServerCACert places the puppetserver CA certificate under the SSL
// dir. Directories are created and chowned before the file so the later
// chown calls always have an existing parent.
func (p *Provisioner) writeServerCACert(pem string) error {
	if err := p.fs.EnsureDir(p.paths.SSLDir, 0o771); err != nil {
		return fmt.Errorf("create ssl dir %s: %w", p.paths.SSLDir, err)
	}

	if err := p.fs.Chown(p.paths.SSLDir, p.plan.RunUser, "root"); err != nil {
		return fmt.Errorf("chown ssl dir %s: %w", p.paths.SSLDir, err)
	}

	if err := p.fs.EnsureDir(p.paths.SSLCertDir, 0o755); err != nil {
		return fmt.Errorf("create ssl cert dir %s: %w", p.paths.SSLCertDir, err)
	}

	if err := p.fs.Chown(p.paths.SSLCertDir, p.plan.RunUser, "root"); err != nil {
		return fmt.Errorf("chown ssl cert dir %s: %w", p.paths.SSLCertDir, err)
	}

	if err := p.fs.WriteFile(p.paths.SSLCertPath, []byte(pem), 0o644); err != nil {
		return fmt.Errorf("write ca certificate %s: %w", p.paths.SSLCertPath, err)
	}

	if err := p.fs.Chown(p.paths.SSLCertPath, p.plan.RunUser, "root"); err != nil {
		return fmt.Errorf("chown ca certificate %s: %w", p.paths.SSLCertPath, err)
	}

	p.log.Debug().
		Str("path", p.paths.SSLCertPath).
		Msg("Installed puppetserver CA certificate")

	return nil
}

// writeCSRAttributes dumps the document's csr_attributes mapping wholesale
// to the agent's csr_attributes.yaml, replacing any existing content.
func (p *Provisioner) writeCSRAttributes() error {
	data, err := yaml.Marshal(p.cfg.CSRAttributes)
	if err != nil {
		return fmt.Errorf("marshal csr attributes: %w", err)
	}

	if err := p.fs.WriteFile(p.paths.CSRAttributes, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.paths.CSRAttributes, err)
	}

	return nil
}

func stringifyValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "true"
		}

		return "false"
	default:
		return fmt.Sprintf("%v", value)
	}
}

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
	"context"
	"fmt"
	"strings"
)

const (
	legacyDefaultsFile = "/etc/default/puppet"
	systemctlBin       = "/bin/systemctl"
	chkconfigBin       = "/sbin/chkconfig"
	serviceName        = "puppet"
)

// autostart enables the agent service through whichever mechanism the system
// has: the legacy /etc/default settings file, systemd, or chkconfig. Having
// none of them is only an observability gap, not an error.
func (p *Provisioner) autostart(ctx context.Context) error {
	switch {
	case p.fs.Exists(legacyDefaultsFile):
		return p.enableViaDefaultsFile()
	case p.fs.Exists(systemctlBin):
		if _, err := p.runner.Run(ctx, []string{systemctlBin, "enable", serviceName + ".service"}, true); err != nil {
			return fmt.Errorf("enable %s.service: %w", serviceName, err)
		}

		return nil
	case p.fs.Exists(chkconfigBin):
		if _, err := p.runner.Run(ctx, []string{chkconfigBin, serviceName, "on"}, true); err != nil {
			return fmt.Errorf("chkconfig %s on: %w", serviceName, err)
		}

		return nil
	default:
		p.log.Warn().Msg("No known way to enable the puppet service on this system")
		return nil
	}
}

// enableViaDefaultsFile rewrites the START= line of /etc/default/puppet to
// START=yes, leaving every other line alone.
func (p *Provisioner) enableViaDefaultsFile() error {
	data, err := p.fs.ReadFile(legacyDefaultsFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", legacyDefaultsFile, err)
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "START=") {
			lines[i] = "START=yes"
		}
	}

	if err := p.fs.WriteFile(legacyDefaultsFile, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", legacyDefaultsFile, err)
	}

	return nil
}

// runAgentOnce performs the optional one-shot `puppet agent` run with the
// planned arguments, streaming output to the console.
func (p *Provisioner) runAgentOnce(ctx context.Context) error {
	p.log.Debug().
		Strs("args", p.plan.AgentArgs).
		Msg("Running puppet agent")

	argv := append([]string{p.plan.PuppetBin, "agent"}, p.plan.AgentArgs...)

	if _, err := p.runner.Run(ctx, argv, true); err != nil {
		return fmt.Errorf("run puppet agent: %w", err)
	}

	return nil
}

// startService starts the long-running agent service. It is the final action
// of every run, whether or not anything was installed or executed.
func (p *Provisioner) startService(ctx context.Context) error {
	if _, err := p.runner.Run(ctx, []string{"service", serviceName, "start"}, true); err != nil {
		return fmt.Errorf("start %s service: %w", serviceName, err)
	}

	return nil
}

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
	"fmt"
	"strings"

	"github.com/opsforge/puppetprov/pkg/logger"
)

// InstallMethod selects how the agent package reaches the machine.
type InstallMethod string

const (
	// InstallMethodPackages installs from the distribution repositories.
	InstallMethodPackages InstallMethod = "packages"
	// InstallMethodAIO installs the puppetlabs all-in-one agent via the
	// vendor's one-shot shell script.
	InstallMethodAIO InstallMethod = "aio"
)

// Per-method defaults. AIO agents live under /opt/puppetlabs and run as
// root; distro packages ship a puppet user and put the binary on PATH.
const (
	packagesRunUser = "puppet"
	packagesBin     = "puppet"
	packagesPackage = "puppet"

	aioRunUser = "root"
	aioBin     = "/opt/puppetlabs/bin/puppet"
	aioPackage = "puppet-agent"
)

// DefaultAgentArgs is what `puppet agent` runs with when the document does
// not supply exec_args.
var DefaultAgentArgs = []string{"--test"}

// Plan is the resolved set of decisions for one run, computed once from the
// document and threaded through every stage. Collecting the install branch's
// effect on the later agent-run step here keeps that dependency in one place.
type Plan struct {
	Install bool
	Method  InstallMethod

	Version       string
	Collection    string
	AIOInstallURL string
	Cleanup       bool
	PackageName   string

	PuppetBin string
	RunUser   string

	RunAgent  bool
	AgentArgs []string
}

// BuildPlan decodes the document into a Plan. Shape ambiguities degrade to
// defaults with a warning; nothing here can fail.
func BuildPlan(cfg *Config, log logger.Logger) *Plan {
	method := InstallMethod(cfg.installTypeOrDefault())

	p := &Plan{
		Method:        method,
		Version:       cfg.Version,
		Collection:    cfg.Collection,
		AIOInstallURL: cfg.aioInstallURLOrDefault(),
		Cleanup:       cfg.CleanupEnabled(),
		RunAgent:      cfg.Exec,
		AgentArgs:     normalizeAgentArgs(cfg.ExecArgs, log),
	}

	if method == InstallMethodAIO {
		p.RunUser = aioRunUser
		p.PuppetBin = aioBin
		p.PackageName = aioPackage
	} else {
		p.RunUser = packagesRunUser
		p.PuppetBin = packagesBin
		p.PackageName = packagesPackage
	}

	if cfg.PackageName != "" {
		p.PackageName = cfg.PackageName
	}

	switch {
	case !cfg.InstallEnabled():
		if cfg.Version != "" {
			log.Warn().
				Str("version", cfg.Version).
				Msg("Puppet install set to false but version supplied, doing nothing")
		}
	case method == InstallMethodPackages || method == InstallMethodAIO:
		p.Install = true
	default:
		log.Warn().
			Str("install_type", string(method)).
			Msg("Unknown puppet install type, skipping installation")

		// An unrecognized method also disables the later one-shot agent
		// run, regardless of the document's exec flag.
		p.RunAgent = false
	}

	return p
}

func normalizeAgentArgs(raw interface{}, log logger.Logger) []string {
	switch v := raw.(type) {
	case nil:
		return DefaultAgentArgs
	case string:
		return strings.Fields(v)
	case []string:
		if len(v) == 0 {
			return DefaultAgentArgs
		}

		return v
	case []interface{}:
		if len(v) == 0 {
			return DefaultAgentArgs
		}

		args := make([]string, 0, len(v))

		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				log.Warn().
					Str("type", fmt.Sprintf("%T", item)).
					Msg("Unknown element type in puppet exec_args, expected strings; using default arguments")

				return DefaultAgentArgs
			}

			args = append(args, s)
		}

		return args
	default:
		log.Warn().
			Str("type", fmt.Sprintf("%T", raw)).
			Msg("Unknown type for puppet exec_args, expected list or string; using default arguments")

		return DefaultAgentArgs
	}
}

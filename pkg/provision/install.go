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
	"path/filepath"
)

// aioFetchRetries matches the fixed retry budget of the install script
// download; retries beyond this are not attempted anywhere else.
const aioFetchRetries = 5

func (p *Provisioner) installAgent(ctx context.Context) error {
	if !p.plan.Install {
		return nil
	}

	version := p.plan.Version
	if version == "" {
		version = "latest"
	}

	p.log.Debug().
		Str("version", version).
		Str("install_type", string(p.plan.Method)).
		Msg("Attempting to install puppet")

	switch p.plan.Method {
	case InstallMethodPackages:
		if err := p.installer.Install(ctx, p.plan.PackageName, p.plan.Version); err != nil {
			return fmt.Errorf("install package %s: %w", p.plan.PackageName, err)
		}

		return nil
	case InstallMethodAIO:
		return p.installAIO(ctx)
	default:
		// Unrecognized methods were already filtered out of the plan.
		return nil
	}
}

// installAIO downloads the puppetlabs one-shot install script into a fresh
// private temp dir and executes it. A temp dir rather than a temp file keeps
// the script executable without tripping over text-file-busy.
func (p *Provisioner) installAIO(ctx context.Context) error {
	script, err := p.fetcher.Fetch(ctx, p.plan.AIOInstallURL, aioFetchRetries)
	if err != nil {
		return fmt.Errorf("fetch install script from %s: %w", p.plan.AIOInstallURL, err)
	}

	dir, err := p.fs.TempDir("puppet-install")
	if err != nil {
		return fmt.Errorf("create install script dir: %w", err)
	}

	defer func() {
		if err := p.fs.RemoveAll(dir); err != nil {
			p.log.Warn().Err(err).Str("dir", dir).Msg("Failed to clean up install script dir")
		}
	}()

	scriptPath := filepath.Join(dir, "puppet-install")
	if err := p.fs.WriteFile(scriptPath, script, 0o700); err != nil {
		return fmt.Errorf("write install script: %w", err)
	}

	argv := []string{scriptPath}

	if p.plan.Version != "" {
		argv = append(argv, "-v", p.plan.Version)
	}

	if p.plan.Collection != "" {
		argv = append(argv, "-c", p.plan.Collection)
	}

	if p.plan.Cleanup {
		argv = append(argv, "--cleanup")
	}

	if _, err := p.runner.Run(ctx, argv, true); err != nil {
		return fmt.Errorf("run install script: %w", err)
	}

	return nil
}

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

// Package provision installs, configures, and activates the Puppet agent on
// a machine during initialization, driven by a declarative document. A run
// is single-threaded and fully synchronous; concurrent invocation is not
// supported (the surrounding scheduler guarantees one run per machine
// lifecycle).
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/opsforge/puppetprov/pkg/logger"
)

// ErrConfigRequired is returned when no provisioning document is provided.
var ErrConfigRequired = errors.New("config is required")

// Provisioner drives one provisioning run.
type Provisioner struct {
	cfg  *Config
	plan *Plan
	log  logger.Logger

	installer PackageInstaller
	fetcher   ScriptFetcher
	runner    CommandRunner
	fs        FS
	identity  Identity

	paths Paths
}

// Options carries the injectable collaborators. Any nil field falls back to
// the production implementation.
type Options struct {
	Logger    logger.Logger
	Installer PackageInstaller
	Fetcher   ScriptFetcher
	Runner    CommandRunner
	FS        FS
	Identity  Identity
}

// New creates a Provisioner for the given document.
func New(cfg *Config, opts Options) (*Provisioner, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	p := &Provisioner{
		cfg:       cfg,
		log:       log,
		installer: opts.Installer,
		fetcher:   opts.Fetcher,
		runner:    opts.Runner,
		fs:        opts.FS,
		identity:  opts.Identity,
	}

	if p.fs == nil {
		p.fs = NewOSFS()
	}

	if p.runner == nil {
		p.runner = NewExecRunner(log)
	}

	if p.fetcher == nil {
		p.fetcher = NewHTTPFetcher(log)
	}

	if p.installer == nil {
		p.installer = NewDistroInstaller(p.runner, p.fs, log)
	}

	if p.identity == nil {
		p.identity = NewHostIdentity(log)
	}

	p.plan = BuildPlan(cfg, log)

	return p, nil
}

// Plan exposes the resolved run plan, mainly for inspection and tests.
func (p *Provisioner) Plan() *Plan {
	return p.plan
}

// Run executes the provisioning pipeline: install, resolve paths, merge
// configuration, write CSR attributes, enable autostart, optionally run the
// agent once, and finally start the service. External failures are fatal;
// nothing written so far is rolled back.
func (p *Provisioner) Run(ctx context.Context) error {
	if err := p.installAgent(ctx); err != nil {
		return err
	}

	paths, err := resolvePaths(ctx, p.cfg, p.plan, p.runner)
	if err != nil {
		return err
	}

	p.paths = paths

	if len(p.cfg.Conf) > 0 {
		if err := p.applyConf(); err != nil {
			return fmt.Errorf("apply puppet conf: %w", err)
		}
	}

	if p.cfg.CSRAttributes != nil {
		if err := p.writeCSRAttributes(); err != nil {
			return fmt.Errorf("write csr attributes: %w", err)
		}
	}

	if err := p.autostart(ctx); err != nil {
		return err
	}

	if p.plan.RunAgent {
		if err := p.runAgentOnce(ctx); err != nil {
			return err
		}
	}

	if err := p.startService(ctx); err != nil {
		return err
	}

	p.log.Info().Msg("Puppet provisioning completed")

	return nil
}

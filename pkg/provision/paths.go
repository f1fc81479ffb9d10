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
	"errors"
	"fmt"
	"path/filepath"
)

// ErrPathResolution is returned when an agent path has no explicit document
// value and querying the agent binary for its default failed.
var ErrPathResolution = errors.New("unable to resolve puppet configuration path")

// Paths are the agent file locations for one run, fixed after resolution.
type Paths struct {
	ConfFile      string
	SSLDir        string
	SSLCertDir    string
	SSLCertPath   string
	CSRAttributes string
}

// resolvePaths computes the run's Paths. Explicit document values win;
// everything else is asked of the agent binary itself via
// `puppet config print <setting>`.
func resolvePaths(ctx context.Context, cfg *Config, plan *Plan, runner CommandRunner) (Paths, error) {
	confFile, err := resolveSetting(ctx, runner, plan.PuppetBin, cfg.ConfFile, "config")
	if err != nil {
		return Paths{}, err
	}

	sslDir, err := resolveSetting(ctx, runner, plan.PuppetBin, cfg.SSLDir, "ssldir")
	if err != nil {
		return Paths{}, err
	}

	csrPath, err := resolveSetting(ctx, runner, plan.PuppetBin, cfg.CSRAttributesPath, "csr_attributes")
	if err != nil {
		return Paths{}, err
	}

	sslCertDir := filepath.Join(sslDir, "certs")

	return Paths{
		ConfFile:      confFile,
		SSLDir:        sslDir,
		SSLCertDir:    sslCertDir,
		SSLCertPath:   filepath.Join(sslCertDir, "ca.pem"),
		CSRAttributes: csrPath,
	}, nil
}

func resolveSetting(ctx context.Context, runner CommandRunner, puppetBin, explicit, setting string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	out, err := runner.Run(ctx, []string{puppetBin, "config", "print", setting}, false)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPathResolution, setting, err)
	}

	if out == "" {
		return "", fmt.Errorf("%w: %s: empty value from %s", ErrPathResolution, setting, puppetBin)
	}

	return out, nil
}

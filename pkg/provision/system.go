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
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/opsforge/puppetprov/pkg/logger"
)

var (
	// ErrEmptyCommand is returned when a runner is asked to execute nothing.
	ErrEmptyCommand = errors.New("empty command")
	// ErrNoPackageManager is returned when no supported package manager
	// binary exists on the system.
	ErrNoPackageManager = errors.New("no supported package manager found")
)

// osFS is the production FS backed by the os package.
type osFS struct{}

// NewOSFS returns the real filesystem.
func NewOSFS() FS {
	return osFS{}
}

func (osFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (osFS) WriteFile(path string, data []byte, mode fs.FileMode) error {
	return os.WriteFile(path, data, mode)
}

func (osFS) EnsureDir(path string, mode fs.FileMode) error {
	return os.MkdirAll(path, mode)
}

func (osFS) Chown(path, owner, group string) error {
	u, err := user.Lookup(owner)
	if err != nil {
		return fmt.Errorf("look up user %s: %w", owner, err)
	}

	g, err := user.LookupGroup(group)
	if err != nil {
		return fmt.Errorf("look up group %s: %w", group, err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("parse uid for %s: %w", owner, err)
	}

	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return fmt.Errorf("parse gid for %s: %w", group, err)
	}

	return os.Chown(path, uid, gid)
}

func (osFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFS) TempDir(prefix string) (string, error) {
	return os.MkdirTemp("", prefix)
}

func (osFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// execRunner is the production CommandRunner built on os/exec.
type execRunner struct {
	log logger.Logger
}

// NewExecRunner returns a CommandRunner that executes commands directly.
func NewExecRunner(log logger.Logger) CommandRunner {
	return &execRunner{log: log}
}

func (r *execRunner) Run(ctx context.Context, argv []string, stream bool) (string, error) {
	if len(argv) == 0 {
		return "", ErrEmptyCommand
	}

	r.log.Debug().Strs("argv", argv).Msg("Executing command")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	if stream {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("run %s: %w", argv[0], err)
		}

		return "", nil
	}

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", argv[0], err)
	}

	return strings.TrimSpace(string(out)), nil
}

const (
	fetchTimeout    = 30 * time.Second
	fetchRetryDelay = time.Second
)

// httpFetcher is the production ScriptFetcher: a plain HTTP client with a
// fixed-count retry loop.
type httpFetcher struct {
	client *http.Client
	log    logger.Logger
}

// NewHTTPFetcher returns a ScriptFetcher backed by net/http.
func NewHTTPFetcher(log logger.Logger) ScriptFetcher {
	return &httpFetcher{
		client: &http.Client{Timeout: fetchTimeout},
		log:    log,
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string, retries int) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			f.log.Debug().
				Int("attempt", attempt).
				Str("url", url).
				Msg("Retrying download")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(fetchRetryDelay):
			}
		}

		data, err := f.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}

		lastErr = err
	}

	return nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (f *httpFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// packageManager describes one supported distro package manager.
type packageManager struct {
	bin string
	// pin renders a version-pinned package argument.
	pin func(pkg, version string) string
}

var packageManagers = []packageManager{
	{bin: "/usr/bin/apt-get", pin: func(pkg, version string) string { return pkg + "=" + version }},
	{bin: "/usr/bin/dnf", pin: func(pkg, version string) string { return pkg + "-" + version }},
	{bin: "/usr/bin/yum", pin: func(pkg, version string) string { return pkg + "-" + version }},
	{bin: "/usr/bin/zypper", pin: func(pkg, version string) string { return pkg + "=" + version }},
}

// distroInstaller installs packages through whichever supported package
// manager exists on the system.
type distroInstaller struct {
	runner CommandRunner
	fs     FS
	log    logger.Logger
}

// NewDistroInstaller returns the production PackageInstaller.
func NewDistroInstaller(runner CommandRunner, fsys FS, log logger.Logger) PackageInstaller {
	return &distroInstaller{runner: runner, fs: fsys, log: log}
}

func (d *distroInstaller) Install(ctx context.Context, pkg, version string) error {
	for _, mgr := range packageManagers {
		if !d.fs.Exists(mgr.bin) {
			continue
		}

		arg := pkg
		if version != "" {
			arg = mgr.pin(pkg, version)
		}

		d.log.Debug().
			Str("manager", mgr.bin).
			Str("package", arg).
			Msg("Installing distribution package")

		if _, err := d.runner.Run(ctx, []string{mgr.bin, "install", "-y", arg}, true); err != nil {
			return fmt.Errorf("install %s via %s: %w", arg, mgr.bin, err)
		}

		return nil
	}

	return ErrNoPackageManager
}

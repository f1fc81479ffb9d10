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
	"io/fs"
)

//go:generate mockgen -destination=mock_provision.go -package=provision github.com/opsforge/puppetprov/pkg/provision PackageInstaller,ScriptFetcher,CommandRunner,FS,Identity

// PackageInstaller installs a named package from the distribution
// repositories, optionally pinned to a version ("" means latest).
type PackageInstaller interface {
	Install(ctx context.Context, pkg, version string) error
}

// ScriptFetcher retrieves the AIO install script over HTTP, retrying up to
// the given number of additional attempts before giving up.
type ScriptFetcher interface {
	Fetch(ctx context.Context, url string, retries int) ([]byte, error)
}

// CommandRunner executes an external command synchronously. With stream set,
// output is inherited rather than captured and the returned string is empty;
// otherwise trimmed stdout is returned. A non-zero exit is an error.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, stream bool) (string, error)
}

// FS abstracts the filesystem side effects of a run so they can be observed
// in tests.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, mode fs.FileMode) error
	EnsureDir(path string, mode fs.FileMode) error
	Chown(path, owner, group string) error
	Rename(oldPath, newPath string) error
	Exists(path string) bool
	TempDir(prefix string) (string, error)
	RemoveAll(path string) error
}

// Identity supplies the machine identity used for certname substitution.
type Identity interface {
	FQDN() (string, error)
	InstanceID() (string, error)
}

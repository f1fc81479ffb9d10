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
	"io/fs"
)

// memFS is an in-memory FS that records every mutation in order, so tests
// can assert both final state and the sequence of side effects.
type memFS struct {
	files map[string][]byte
	modes map[string]fs.FileMode
	dirs  map[string]fs.FileMode

	// ops holds one entry per mutating call, e.g. "mkdir /x 0771",
	// "chown /x puppet:root", "write /x/y", "rename /a /b", "rmall /tmp/z".
	ops []string
}

func newMemFS() *memFS {
	return &memFS{
		files: make(map[string][]byte),
		modes: make(map[string]fs.FileMode),
		dirs:  make(map[string]fs.FileMode),
	}
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}

	return data, nil
}

func (m *memFS) WriteFile(path string, data []byte, mode fs.FileMode) error {
	m.files[path] = append([]byte(nil), data...)
	m.modes[path] = mode
	m.ops = append(m.ops, fmt.Sprintf("write %s", path))

	return nil
}

func (m *memFS) EnsureDir(path string, mode fs.FileMode) error {
	m.dirs[path] = mode
	m.ops = append(m.ops, fmt.Sprintf("mkdir %s %o", path, mode))

	return nil
}

func (m *memFS) Chown(path, owner, group string) error {
	m.ops = append(m.ops, fmt.Sprintf("chown %s %s:%s", path, owner, group))

	return nil
}

func (m *memFS) Rename(oldPath, newPath string) error {
	data, ok := m.files[oldPath]
	if !ok {
		return fmt.Errorf("rename %s: %w", oldPath, fs.ErrNotExist)
	}

	m.files[newPath] = data
	m.modes[newPath] = m.modes[oldPath]

	delete(m.files, oldPath)
	delete(m.modes, oldPath)

	m.ops = append(m.ops, fmt.Sprintf("rename %s %s", oldPath, newPath))

	return nil
}

func (m *memFS) Exists(path string) bool {
	if _, ok := m.files[path]; ok {
		return true
	}

	_, ok := m.dirs[path]

	return ok
}

func (m *memFS) TempDir(prefix string) (string, error) {
	dir := "/tmp/" + prefix + "-0001"
	m.dirs[dir] = 0o700
	m.ops = append(m.ops, fmt.Sprintf("mkdir %s %o", dir, 0o700))

	return dir, nil
}

func (m *memFS) RemoveAll(path string) error {
	delete(m.dirs, path)

	for p := range m.files {
		if len(p) > len(path) && p[:len(path)+1] == path+"/" {
			delete(m.files, p)
			delete(m.modes, p)
		}
	}

	m.ops = append(m.ops, fmt.Sprintf("rmall %s", path))

	return nil
}

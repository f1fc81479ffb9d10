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

// Package config loads the provisioning document from disk.
package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opsforge/puppetprov/pkg/logger"
	"github.com/opsforge/puppetprov/pkg/provision"
)

// Document is the top-level on-disk document. The puppet key carries the
// provisioning configuration; its absence means the whole run is a no-op.
type Document struct {
	Puppet  *provision.Config `json:"puppet" yaml:"puppet"`
	Logging *logger.Config    `json:"logging" yaml:"logging"`
}

// Loader reads provisioning documents.
type Loader struct {
	log logger.Logger
}

// NewLoader creates a Loader. A nil logger falls back to a stderr
// warning-level logger so load problems are still visible.
func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		basic, err := logger.New(context.Background(), &logger.Config{Level: "warn", Output: "stderr"})
		if err == nil {
			log = basic
		} else {
			log = logger.NewTestLogger()
		}
	}

	return &Loader{log: log}
}

// Load reads and unmarshals a document file into dst. YAML is a superset of
// JSON, so both .yaml and .json documents parse through the same path.
func (l *Loader) Load(_ context.Context, path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal document from '%s': %w", path, err)
	}

	return nil
}

// LoadDocument reads the top-level document. A missing puppet key is not an
// error; callers check Document.Puppet for nil.
func (l *Loader) LoadDocument(ctx context.Context, path string) (*Document, error) {
	var doc Document
	if err := l.Load(ctx, path, &doc); err != nil {
		return nil, err
	}

	if doc.Puppet == nil {
		l.log.Debug().Str("path", path).Msg("Document has no puppet key")
	}

	return &doc, nil
}

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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/opsforge/puppetprov/pkg/config"
	"github.com/opsforge/puppetprov/pkg/logger"
	"github.com/opsforge/puppetprov/pkg/provision"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/puppetprov/puppetprov.yaml", "Path to the provisioning document")
	flag.Parse()

	ctx := context.Background()

	loader := config.NewLoader(nil)

	doc, err := loader.LoadDocument(ctx, *configPath)
	if err != nil {
		return fmt.Errorf("failed to load provisioning document: %w", err)
	}

	provLogger, err := logger.NewComponentLogger(ctx, "puppetprov", doc.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("Failed to shutdown logger: %v", err)
		}
	}()

	// No puppet key in the document means this run has nothing to do.
	if doc.Puppet == nil {
		provLogger.Debug().Msg("Skipping run, no puppet configuration found")
		return nil
	}

	provisioner, err := provision.New(doc.Puppet, provision.Options{Logger: provLogger})
	if err != nil {
		return fmt.Errorf("failed to create provisioner: %w", err)
	}

	return provisioner.Run(ctx)
}

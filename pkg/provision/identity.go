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
	"net"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/opsforge/puppetprov/pkg/logger"
)

// cloudInstanceIDPath is where cloud-init records the metadata instance id.
const cloudInstanceIDPath = "/var/lib/cloud/data/instance-id"

// hostIdentity resolves machine identity from the running system.
type hostIdentity struct {
	log logger.Logger
}

// NewHostIdentity returns the production Identity.
func NewHostIdentity(log logger.Logger) Identity {
	return &hostIdentity{log: log}
}

// FQDN returns the machine's fully qualified hostname: the plain hostname if
// it already carries a domain, otherwise the first dotted name found via a
// reverse lookup of the host's addresses. Falls back to the bare hostname.
func (h *hostIdentity) FQDN() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("read hostname: %w", err)
	}

	if strings.Contains(hostname, ".") {
		return hostname, nil
	}

	addrs, err := net.LookupHost(hostname)
	if err != nil {
		return hostname, nil
	}

	for _, addr := range addrs {
		names, err := net.LookupAddr(addr)
		if err != nil {
			continue
		}

		for _, name := range names {
			name = strings.TrimSuffix(name, ".")
			if strings.Contains(name, ".") {
				return name, nil
			}
		}
	}

	return hostname, nil
}

// InstanceID returns the cloud metadata instance id when present, then the
// stable host id, then a generated uuid as a last resort.
func (h *hostIdentity) InstanceID() (string, error) {
	if data, err := os.ReadFile(cloudInstanceIDPath); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	if id, err := host.HostID(); err == nil && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	h.log.Debug().Str("instance_id", id).Msg("No instance id available, generated one")

	return id, nil
}

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
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/opsforge/puppetprov/pkg/logger"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	runner := NewExecRunner(logger.NewTestLogger())

	out, err := runner.Run(context.Background(), []string{"echo", "hello"}, false)
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestExecRunnerEmptyCommand(t *testing.T) {
	runner := NewExecRunner(logger.NewTestLogger())

	_, err := runner.Run(context.Background(), nil, false)
	require.ErrorIs(t, err, ErrEmptyCommand)
}

func TestExecRunnerCommandFailure(t *testing.T) {
	runner := NewExecRunner(logger.NewTestLogger())

	_, err := runner.Run(context.Background(), []string{"false"}, false)
	require.Error(t, err)
}

func TestHTTPFetcherRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		_, _ = w.Write([]byte("#!/bin/sh\n"))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(logger.NewTestLogger())

	data, err := fetcher.Fetch(context.Background(), srv.URL, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("#!/bin/sh\n"), data)
	require.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcherGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(logger.NewTestLogger())

	_, err := fetcher.Fetch(context.Background(), srv.URL, 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
	require.Equal(t, int32(3), calls.Load(), "one initial attempt plus two retries")
}

func TestHTTPFetcherHonorsContextBetweenRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	fetcher := NewHTTPFetcher(logger.NewTestLogger())

	_, err := fetcher.Fetch(ctx, srv.URL, 10)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDistroInstallerPicksFirstManager(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fsys := newMemFS()
	fsys.files["/usr/bin/apt-get"] = []byte{}
	fsys.files["/usr/bin/dnf"] = []byte{}

	runner := NewMockCommandRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), []string{"/usr/bin/apt-get", "install", "-y", "puppet=6.0.0"}, true).
		Return("", nil)

	installer := NewDistroInstaller(runner, fsys, logger.NewTestLogger())
	require.NoError(t, installer.Install(context.Background(), "puppet", "6.0.0"))
}

func TestDistroInstallerRPMVersionPin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fsys := newMemFS()
	fsys.files["/usr/bin/dnf"] = []byte{}

	runner := NewMockCommandRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), []string{"/usr/bin/dnf", "install", "-y", "puppet-6.0.0"}, true).
		Return("", nil)

	installer := NewDistroInstaller(runner, fsys, logger.NewTestLogger())
	require.NoError(t, installer.Install(context.Background(), "puppet", "6.0.0"))
}

func TestDistroInstallerUnpinnedPackage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fsys := newMemFS()
	fsys.files["/usr/bin/apt-get"] = []byte{}

	runner := NewMockCommandRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), []string{"/usr/bin/apt-get", "install", "-y", "puppet"}, true).
		Return("", nil)

	installer := NewDistroInstaller(runner, fsys, logger.NewTestLogger())
	require.NoError(t, installer.Install(context.Background(), "puppet", ""))
}

func TestDistroInstallerNoManager(t *testing.T) {
	installer := NewDistroInstaller(nil, newMemFS(), logger.NewTestLogger())

	err := installer.Install(context.Background(), "puppet", "")
	require.ErrorIs(t, err, ErrNoPackageManager)
}

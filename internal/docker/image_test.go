// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package docker

import (
	"fmt"
	"testing"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
)

func TestClassifyPullError_NotFound(t *testing.T) {
	tests := []string{
		"manifest unknown: manifest unknown",
		"pull access denied, repository does not exist or may require authorization",
		"Error: image library/nope:latest not found",
		"no such image: nope:latest",
	}

	for _, msg := range tests {
		t.Run(msg, func(t *testing.T) {
			ae := classifyPullError("nope:latest", msg, nil)
			if ae.Code != errors.CodeImageNotFound {
				t.Errorf("Code = %q, want %q", ae.Code, errors.CodeImageNotFound)
			}
			if ae.Details["ref"] != "nope:latest" {
				t.Errorf("Details[ref] = %v, want nope:latest", ae.Details["ref"])
			}
		})
	}
}

func TestClassifyPullError_OtherFailure(t *testing.T) {
	cause := fmt.Errorf("i/o timeout")
	ae := classifyPullError("nginx:latest", cause.Error(), cause)
	if ae.Code != errors.CodeImagePullFailed {
		t.Errorf("Code = %q, want %q", ae.Code, errors.CodeImagePullFailed)
	}
	if ae.Err != cause {
		t.Error("cause should be preserved")
	}
}

func TestClassifyPullError_StreamErrorWithoutCause(t *testing.T) {
	ae := classifyPullError("nginx:latest", "layer download failed", nil)
	if ae.Code != errors.CodeImagePullFailed {
		t.Errorf("Code = %q, want %q", ae.Code, errors.CodeImagePullFailed)
	}
	if ae.Message != "layer download failed" {
		t.Errorf("Message = %q, want the stream error text", ae.Message)
	}
}

func TestBuildHTTPClient(t *testing.T) {
	if got := buildHTTPClient(ClientOptions{Host: "tcp://127.0.0.1:2375"}); got != nil {
		t.Error("buildHTTPClient() should return nil for TCP hosts")
	}
	if got := buildHTTPClient(ClientOptions{Host: "unix:///var/run/docker.sock"}); got == nil {
		t.Error("buildHTTPClient() should return a client for Unix socket hosts")
	}
}

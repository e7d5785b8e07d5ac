// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package deploy

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Jailtonfonseca/dockyard/internal/docker"
	"github.com/Jailtonfonseca/dockyard/internal/models"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// fakeRuntime implements docker.ClientAPI for installer tests. Created
// containers are registered as existing, so a later conflict check sees
// them just like the real daemon would.
type fakeRuntime struct {
	mu        sync.Mutex
	pingErr   error
	existing  map[string]bool
	existsErr error
	pullErr   error
	pullWaits bool // block the pull until the context expires
	createErr error
	startErr  error

	pulled  []string
	created []docker.ContainerCreateOptions
	started []string
}

func (f *fakeRuntime) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeRuntime) ContainerExists(ctx context.Context, nameOrID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[nameOrID], nil
}

func (f *fakeRuntime) ImagePullSync(ctx context.Context, ref string) error {
	f.mu.Lock()
	f.pulled = append(f.pulled, ref)
	f.mu.Unlock()
	if f.pullWaits {
		<-ctx.Done()
		return errors.Wrap(ctx.Err(), errors.CodeImagePullFailed, "pull interrupted")
	}
	return f.pullErr
}

func (f *fakeRuntime) ContainerCreate(ctx context.Context, opts docker.ContainerCreateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, opts)
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[opts.Name] = true
	return "cid-" + opts.Name, nil
}

func (f *fakeRuntime) ContainerStart(ctx context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, containerID)
	return nil
}

func (f *fakeRuntime) Close() error { return nil }

var _ docker.ClientAPI = (*fakeRuntime)(nil)

func installableTemplate() models.Template {
	return models.Template{
		Title: "My App",
		Type:  models.TemplateTypeContainer,
		Image: "vendor/app:1.0",
		Ports: []string{"8080:80/tcp"},
		Env:   []models.TemplateEnv{{Name: "TZ", Default: "UTC"}},
		Volumes: []models.TemplateVolume{
			{Container: "/data", Bind: "/srv/data"},
			{Container: "/cache"},
		},
	}
}

func TestInstall_Success(t *testing.T) {
	rt := &fakeRuntime{}
	svc := NewService(rt, 0, logger.Nop())

	res, err := svc.Install(context.Background(), installableTemplate())
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	if res.ContainerName != "my_app" {
		t.Errorf("ContainerName = %q, want my_app", res.ContainerName)
	}
	if !strings.Contains(res.Message, "my_app") {
		t.Errorf("Message should mention the container name, got %q", res.Message)
	}

	if !reflect.DeepEqual(rt.pulled, []string{"vendor/app:1.0"}) {
		t.Errorf("pulled = %v", rt.pulled)
	}
	if len(rt.created) != 1 {
		t.Fatalf("created %d containers, want 1", len(rt.created))
	}
	opts := rt.created[0]
	if opts.Name != "my_app" || opts.Image != "vendor/app:1.0" {
		t.Errorf("create opts = %+v", opts)
	}
	if !reflect.DeepEqual(opts.Env, []string{"TZ=UTC"}) {
		t.Errorf("Env = %v", opts.Env)
	}
	if !reflect.DeepEqual(opts.Binds, []string{"/srv/data:/data"}) {
		t.Errorf("Binds = %v", opts.Binds)
	}
	if !reflect.DeepEqual(opts.AnonymousVolumes, []string{"/cache"}) {
		t.Errorf("AnonymousVolumes = %v", opts.AnonymousVolumes)
	}
	if got := opts.PortBindings["80/tcp"]; len(got) != 1 || got[0].HostPort != "8080" {
		t.Errorf("PortBindings = %v", opts.PortBindings)
	}
	if opts.RestartPolicy != DefaultRestartPolicy {
		t.Errorf("RestartPolicy = %q", opts.RestartPolicy)
	}
	if !reflect.DeepEqual(rt.started, []string{"cid-my_app"}) {
		t.Errorf("started = %v", rt.started)
	}
}

func TestInstall_DaemonUnreachable(t *testing.T) {
	rt := &fakeRuntime{pingErr: fmt.Errorf("connection refused")}
	svc := NewService(rt, 0, logger.Nop())

	_, err := svc.Install(context.Background(), installableTemplate())
	if err == nil {
		t.Fatal("Install() should fail when the daemon is unreachable")
	}
	ae, ok := errors.GetAppError(err)
	if !ok || ae.Code != errors.CodeDockerConnection {
		t.Errorf("error = %v, want %s", err, errors.CodeDockerConnection)
	}
	if len(rt.pulled) != 0 {
		t.Error("nothing should be pulled when ping fails")
	}
}

func TestInstall_MissingImage(t *testing.T) {
	rt := &fakeRuntime{}
	svc := NewService(rt, 0, logger.Nop())

	tpl := installableTemplate()
	tpl.Image = ""

	_, err := svc.Install(context.Background(), tpl)
	if err == nil {
		t.Fatal("Install() should reject a template without an image")
	}
	if !errors.IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestInstall_NameConflict(t *testing.T) {
	rt := &fakeRuntime{existing: map[string]bool{"my_app": true}}
	svc := NewService(rt, 0, logger.Nop())

	_, err := svc.Install(context.Background(), installableTemplate())
	if err == nil {
		t.Fatal("Install() should fail on name conflict")
	}
	if !errors.IsConflictError(err) {
		t.Errorf("error = %v, want conflict", err)
	}
	if !strings.Contains(err.Error(), "my_app") {
		t.Errorf("conflict message should name the container, got: %v", err)
	}
	if len(rt.pulled) != 0 || len(rt.created) != 0 {
		t.Error("conflict must short-circuit before pull and create")
	}
}

func TestInstall_PullTimeout(t *testing.T) {
	rt := &fakeRuntime{pullWaits: true}
	svc := NewService(rt, 30*time.Millisecond, logger.Nop())

	_, err := svc.Install(context.Background(), installableTemplate())
	if err == nil {
		t.Fatal("Install() should fail when the pull times out")
	}
	if !errors.IsTimeoutError(err) {
		t.Errorf("error = %v, want timeout", err)
	}
	if len(rt.created) != 0 {
		t.Error("nothing should be created after a pull timeout")
	}
}

func TestInstall_PullErrorPassthrough(t *testing.T) {
	pullErr := errors.NewWithStatus(errors.CodeImageNotFound, "image not found: vendor/app:1.0", 404)
	rt := &fakeRuntime{pullErr: pullErr}
	svc := NewService(rt, 0, logger.Nop())

	_, err := svc.Install(context.Background(), installableTemplate())
	ae, ok := errors.GetAppError(err)
	if !ok || ae.Code != errors.CodeImageNotFound {
		t.Errorf("error = %v, want %s passthrough", err, errors.CodeImageNotFound)
	}
}

func TestInstall_CreateAndStartErrors(t *testing.T) {
	createErr := errors.New(errors.CodeDockerError, "create failed")
	rt := &fakeRuntime{createErr: createErr}
	svc := NewService(rt, 0, logger.Nop())

	if _, err := svc.Install(context.Background(), installableTemplate()); !errors.Is(err, createErr) {
		ae, ok := errors.GetAppError(err)
		if !ok || ae.Code != errors.CodeDockerError {
			t.Errorf("create error not surfaced: %v", err)
		}
	}

	startErr := errors.New(errors.CodeDockerError, "start failed")
	rt = &fakeRuntime{startErr: startErr}
	svc = NewService(rt, 0, logger.Nop())

	if _, err := svc.Install(context.Background(), installableTemplate()); err == nil {
		t.Fatal("start error should be surfaced")
	}
}

func TestInstall_SerializesPerName(t *testing.T) {
	// Two concurrent installs of the same template: exactly one may
	// create; the other must be held by the per-name lock and then see
	// the conflict.
	rt := &fakeRuntime{}
	svc := NewService(rt, 0, logger.Nop())

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Install(context.Background(), installableTemplate())
			done <- err
		}()
	}

	var conflicts int
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			if !errors.IsConflictError(err) {
				t.Errorf("unexpected error kind: %v", err)
			}
			conflicts++
		}
	}

	if conflicts != 1 {
		t.Errorf("conflicts = %d, want exactly 1", conflicts)
	}
	if len(rt.created) != 1 {
		t.Errorf("created = %d containers, want 1", len(rt.created))
	}
}

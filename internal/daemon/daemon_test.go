package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestWriteReadRemovePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activewin.pid")
	d := New(path)
	if d.PIDFile() != path {
		t.Errorf("PIDFile() = %q, want %q", d.PIDFile(), path)
	}

	if err := d.WritePID(); err != nil {
		t.Fatalf("WritePID() error: %v", err)
	}

	pid, err := d.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID() error: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("ReadPID() = %d, want %d", pid, os.Getpid())
	}

	running, runningPID, err := d.IsRunning()
	if err != nil || !running || runningPID != os.Getpid() {
		t.Errorf("IsRunning() = %v, %d, %v; want true, %d, nil", running, runningPID, err, os.Getpid())
	}

	if err := d.RemovePID(); err != nil {
		t.Fatalf("RemovePID() error: %v", err)
	}
	if err := d.RemovePID(); err != nil {
		t.Errorf("RemovePID() on missing file: %v", err)
	}
}

func TestReadPIDMissingFile(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "missing.pid"))

	pid, err := d.ReadPID()
	if err != nil || pid != 0 {
		t.Errorf("ReadPID() = %d, %v; want 0, nil", pid, err)
	}

	running, _, err := d.IsRunning()
	if err != nil || running {
		t.Errorf("IsRunning() = %v, %v; want false, nil", running, err)
	}
}

func TestReadPIDGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	os.WriteFile(path, []byte("not-a-pid"), 0644)

	if _, err := New(path).ReadPID(); err == nil {
		t.Error("ReadPID() should fail on a non-numeric file")
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "none.pid"))

	if err := d.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() = %v, want ErrNotRunning", err)
	}
}

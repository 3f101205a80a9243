package process

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/window"
)

const defaultRoot = "/proc"

// Reader looks up process metadata in a procfs mount.
type Reader struct {
	root string
}

func NewReader() *Reader {
	return &Reader{root: defaultRoot}
}

// NewReaderAt reads from a procfs mounted (or faked) at root.
func NewReaderAt(root string) *Reader {
	return &Reader{root: root}
}

// IsAvailable checks if the procfs root exists.
func (r *Reader) IsAvailable() bool {
	_, err := os.Stat(r.root)
	return err == nil
}

// Name returns the command name of pid as recorded in its stat file.
func (r *Reader) Name(pid window.ProcessID) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.root, strconv.Itoa(int(pid)), "stat"))
	if err != nil {
		return "", errors.Wrapf(err, "read stat of pid %d", pid)
	}

	// The name sits between the first '(' and the last ')' and may itself contain parentheses.
	stat := string(data)
	start := strings.Index(stat, "(")
	end := strings.LastIndex(stat, ")")
	if start == -1 || end == -1 || end <= start {
		return "", errors.Errorf("malformed stat for pid %d", pid)
	}
	return stat[start+1 : end], nil
}

// MemoryUsage returns the resident set size of pid in bytes.
func (r *Reader) MemoryUsage(pid window.ProcessID) (int64, error) {
	data, err := os.ReadFile(filepath.Join(r.root, strconv.Itoa(int(pid)), "status"))
	if err != nil {
		return 0, errors.Wrapf(err, "read status of pid %d", pid)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "VmRSS:"))
		if len(fields) == 0 {
			break
		}
		kb, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse VmRSS of pid %d", pid)
		}
		return kb * 1024, nil
	}
	return 0, errors.Errorf("no VmRSS for pid %d", pid)
}

// Enrich fills in the owner name, when the window system did not report one,
// and the memory usage of the owning process. Entries without a usable owner
// pid are left untouched.
func (r *Reader) Enrich(props window.Properties) {
	pid, ok := ownerPID(props)
	if !ok {
		return
	}
	if name, _ := props[window.KeyOwnerName].(string); name == "" {
		if name, err := r.Name(pid); err == nil && name != "" {
			props[window.KeyOwnerName] = name
		}
	}
	if _, ok := props[window.KeyMemoryUsage]; !ok {
		if mem, err := r.MemoryUsage(pid); err == nil {
			props[window.KeyMemoryUsage] = mem
		}
	}
}

func ownerPID(props window.Properties) (window.ProcessID, bool) {
	switch v := props[window.KeyOwnerPID].(type) {
	case window.ProcessID:
		return v, v > 0
	case int:
		return window.ProcessID(v), v > 0
	case int32:
		return window.ProcessID(v), v > 0
	case int64:
		return window.ProcessID(v), v > 0
	case uint32:
		return window.ProcessID(v), v > 0
	}
	return 0, false
}

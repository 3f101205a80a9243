package wayland

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/integrations/process"
	"github.com/activewin/activewin/pkg/window"
)

const hyprClientsJSON = `[
  {"address": "0x1", "mapped": true, "hidden": false, "at": [0, 0], "size": [1920, 1080],
   "workspace": {"id": 1, "name": "1"}, "pid": 300, "class": "firefox", "title": "Docs", "focusHistoryID": 1},
  {"address": "0x2", "mapped": true, "hidden": false, "at": [10, 10], "size": [800, 600],
   "workspace": {"id": 1, "name": "1"}, "pid": 301, "class": "kitty", "title": "zsh", "focusHistoryID": 0},
  {"address": "0x3", "mapped": true, "hidden": false, "at": [0, 0], "size": [800, 600],
   "workspace": {"id": 2, "name": "2"}, "pid": 302, "class": "slack", "title": "Slack", "focusHistoryID": 2},
  {"address": "0x4", "mapped": false, "hidden": false, "at": [0, 0], "size": [800, 600],
   "workspace": {"id": 1, "name": "1"}, "pid": 303, "class": "ghost", "title": "", "focusHistoryID": 3},
  {"address": "0x5", "mapped": true, "hidden": false, "at": [5, 5], "size": [400, 300],
   "workspace": {"id": -98, "name": "special:term"}, "pid": 304, "class": "foot", "title": "scratch", "focusHistoryID": 4}
]`

const hyprMonitorsJSON = `[
  {"id": 0, "name": "DP-1", "activeWorkspace": {"id": 1, "name": "1"}, "specialWorkspace": {"id": -98, "name": "special:term"}}
]`

func TestParseHyprlandClients(t *testing.T) {
	windows, err := parseHyprlandClients([]byte(hyprClientsJSON), []byte(hyprMonitorsJSON))
	if err != nil {
		t.Fatalf("parseHyprlandClients() error: %v", err)
	}

	var owners []string
	for _, props := range windows {
		owners = append(owners, props[window.KeyOwnerName].(string))
	}
	want := "kitty,firefox,foot"
	if got := strings.Join(owners, ","); got != want {
		t.Errorf("owners = %s, want %s", got, want)
	}

	d, err := windows[0].Descriptor()
	if err != nil {
		t.Fatalf("Descriptor() error: %v", err)
	}
	if d.OwnerPID != 301 || d.Bounds != (window.Bounds{X: 10, Y: 10, Width: 800, Height: 600}) {
		t.Errorf("first window = %+v", d)
	}
}

func TestParseHyprlandClientsInvalid(t *testing.T) {
	if _, err := parseHyprlandClients([]byte("not json"), []byte("[]")); err == nil {
		t.Error("parseHyprlandClients() accepted invalid clients JSON")
	}
	if _, err := parseHyprlandClients([]byte("[]"), []byte("{")); err == nil {
		t.Error("parseHyprlandClients() accepted invalid monitors JSON")
	}
}

func TestParseHyprlandActive(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantPID window.ProcessID
		wantOK  bool
		wantErr bool
	}{
		{"focused client", `{"address": "0x2", "pid": 301, "class": "kitty"}`, 301, true, false},
		{"nothing focused", `{}`, 0, false, false},
		{"garbage", `Invalid`, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid, ok, err := parseHyprlandActive([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHyprlandActive() error = %v, wantErr %v", err, tt.wantErr)
			}
			if pid != tt.wantPID || ok != tt.wantOK {
				t.Errorf("parseHyprlandActive() = (%d, %v), want (%d, %v)", pid, ok, tt.wantPID, tt.wantOK)
			}
		})
	}
}

func fakeRunner(outputs map[string]string, err error) runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		key := name + " " + strings.Join(args, " ")
		out, ok := outputs[key]
		if !ok {
			return nil, errors.Errorf("unexpected command %q", key)
		}
		return []byte(out), nil
	}
}

func TestHyprlandLocate(t *testing.T) {
	h := &Hyprland{
		run: fakeRunner(map[string]string{
			"hyprctl activewindow -j": `{"pid": 300}`,
			"hyprctl clients -j":      hyprClientsJSON,
			"hyprctl monitors -j":     hyprMonitorsJSON,
		}, nil),
		procs: process.NewReaderAt(t.TempDir()),
	}

	res, err := window.NewPlatformLocator(h).Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if res.Reason != window.Found || res.Window.OwnerName != "firefox" {
		t.Errorf("Locate() = %+v, want firefox", res)
	}
}

func TestHyprlandCommandFailure(t *testing.T) {
	h := &Hyprland{
		run:   fakeRunner(nil, errors.New("hyprctl: socket not found")),
		procs: process.NewReaderAt(t.TempDir()),
	}

	res, err := window.NewPlatformLocator(h).Locate(context.Background())
	if !errors.Is(err, window.ErrEnumerationUnavailable) {
		t.Errorf("Locate() error = %v, want ErrEnumerationUnavailable", err)
	}
	if res.Reason != window.EnumerationUnavailable {
		t.Errorf("Reason = %v, want %v", res.Reason, window.EnumerationUnavailable)
	}
}

const swayTreeJSON = `{
  "id": 1, "type": "root", "name": "root", "nodes": [
    {"id": 2, "type": "output", "name": "__i3", "nodes": [
      {"id": 3, "type": "workspace", "name": "__i3_scratch", "nodes": [], "floating_nodes": [
        {"id": 4, "type": "floating_con", "name": "hidden", "pid": 900, "app_id": "scratch", "visible": false,
         "rect": {"x": 0, "y": 0, "width": 500, "height": 500}, "nodes": [], "floating_nodes": []}
      ]}
    ]},
    {"id": 10, "type": "output", "name": "eDP-1", "nodes": [
      {"id": 11, "type": "workspace", "name": "1", "nodes": [
        {"id": 12, "type": "con", "name": "Editor", "pid": 500, "app_id": "code", "visible": true, "focused": false,
         "rect": {"x": 0, "y": 0, "width": 960, "height": 1080}, "nodes": [], "floating_nodes": []},
        {"id": 13, "type": "con", "name": "Terminal", "pid": 501, "app_id": null, "visible": true, "focused": true,
         "window_properties": {"class": "XTerm"},
         "rect": {"x": 960, "y": 0, "width": 960, "height": 1080}, "nodes": [], "floating_nodes": []}
      ], "floating_nodes": [
        {"id": 14, "type": "floating_con", "name": "Picker", "pid": 502, "app_id": "picker", "visible": true,
         "rect": {"x": 100, "y": 100, "width": 30, "height": 30}, "nodes": [], "floating_nodes": []}
      ]},
      {"id": 20, "type": "workspace", "name": "2", "nodes": [
        {"id": 21, "type": "con", "name": "Chat", "pid": 503, "app_id": "chat", "visible": false,
         "rect": {"x": 0, "y": 0, "width": 1920, "height": 1080}, "nodes": [], "floating_nodes": []}
      ], "floating_nodes": []}
    ]}
  ]
}`

func parseSwayFixture(t *testing.T) *swayNode {
	t.Helper()
	s := &Sway{run: fakeRunner(map[string]string{"swaymsg -t get_tree --raw": swayTreeJSON}, nil)}
	root, err := s.tree(context.Background())
	if err != nil {
		t.Fatalf("tree() error: %v", err)
	}
	return root
}

func TestSwayWindows(t *testing.T) {
	windows := swayWindows(parseSwayFixture(t))

	var owners []string
	for _, props := range windows {
		owners = append(owners, props[window.KeyOwnerName].(string))
	}
	want := "XTerm,picker,code"
	if got := strings.Join(owners, ","); got != want {
		t.Errorf("owners = %s, want %s", got, want)
	}
}

func TestSwayFocusedPID(t *testing.T) {
	pid, ok := swayFocusedPID(parseSwayFixture(t))
	if !ok || pid != 501 {
		t.Errorf("swayFocusedPID() = (%d, %v), want (501, true)", pid, ok)
	}

	empty := &swayNode{Type: "root"}
	if _, ok := swayFocusedPID(empty); ok {
		t.Error("swayFocusedPID() found a focus in an empty tree")
	}
}

func TestSwayLocate(t *testing.T) {
	s := &Sway{
		run:   fakeRunner(map[string]string{"swaymsg -t get_tree --raw": swayTreeJSON}, nil),
		procs: process.NewReaderAt(t.TempDir()),
	}

	res, err := window.NewPlatformLocator(s).Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if res.Reason != window.Found || res.Window.Title != "Terminal" {
		t.Errorf("Locate() = %+v, want Terminal", res)
	}
}

func TestDetectCompositor(t *testing.T) {
	origHypr := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	origSway := os.Getenv("SWAYSOCK")
	defer func() {
		os.Setenv("HYPRLAND_INSTANCE_SIGNATURE", origHypr)
		os.Setenv("SWAYSOCK", origSway)
	}()

	tests := []struct {
		name string
		hypr string
		sway string
		want string
	}{
		{"hyprland", "abc_123", "", "hyprland"},
		{"sway", "", "/run/user/1000/sway-ipc.sock", "sway"},
		{"neither", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("HYPRLAND_INSTANCE_SIGNATURE", tt.hypr)
			os.Setenv("SWAYSOCK", tt.sway)
			if got := DetectCompositor(); got != tt.want {
				t.Errorf("DetectCompositor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewPlatformUnsupported(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	t.Setenv("SWAYSOCK", "")

	_, err := NewPlatform()
	if !errors.Is(err, window.ErrEnumerationUnavailable) {
		t.Errorf("NewPlatform() error = %v, want ErrEnumerationUnavailable", err)
	}
}

func TestPlatformInterfaces(t *testing.T) {
	var _ window.Platform = (*Hyprland)(nil)
	var _ window.Platform = (*Sway)(nil)
}

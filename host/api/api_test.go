package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ap1key/core"
	"ap1key/host/bench"
	"ap1key/protocol"
)

type fakeRig struct {
	calls     []string
	err       error
	status    core.BluetoothStatus
	usbReport bool
}

func (f *fakeRig) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeRig) NextTheme(ctx context.Context) error          { return f.record("next theme") }
func (f *fakeRig) NextBrightness(ctx context.Context) error     { return f.record("next brightness") }
func (f *fakeRig) NextAnimationSpeed(ctx context.Context) error { return f.record("next speed") }
func (f *fakeRig) ThemeMode(ctx context.Context) error          { return f.record("theme mode") }
func (f *fakeRig) Toggle(ctx context.Context) error             { return f.record("toggle") }
func (f *fakeRig) GetThemeID(ctx context.Context) error         { return f.record("theme id") }
func (f *fakeRig) PushBluetoothTheme(ctx context.Context) error { return f.record("bt theme") }
func (f *fakeRig) BluetoothPinMode(ctx context.Context) error   { return f.record("bt pin") }

func (f *fakeRig) SetTheme(ctx context.Context, index uint8) error {
	return f.record(fmt.Sprintf("theme %d", index))
}

func (f *fakeRig) SetBluetoothStatus(status core.BluetoothStatus) { f.status = status }
func (f *fakeRig) SetUSBReport(on bool)                           { f.usbReport = on }

func (f *fakeRig) Snapshot() bench.Status {
	return bench.Status{
		Device:    "/dev/null",
		Bluetooth: f.status,
		Mode:      f.status.Mode.String(),
		USBReport: f.usbReport,
		Stage:     "header",
		Messages:  []string{"lmsg: led 66 [7]"},
	}
}

func serve(rig Rig, method, path, body string) *httptest.ResponseRecorder {
	s := New("", rig, io.Discard)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCommandRoutes(t *testing.T) {
	routes := map[string]string{
		"/api/theme/next":      "next theme",
		"/api/brightness/next": "next brightness",
		"/api/speed/next":      "next speed",
		"/api/theme/mode":      "theme mode",
		"/api/theme/toggle":    "toggle",
		"/api/theme/id":        "theme id",
		"/api/theme/12":        "theme 12",
		"/api/bluetooth/theme": "bt theme",
		"/api/bluetooth/pin":   "bt pin",
	}

	for path, want := range routes {
		rig := &fakeRig{}
		rec := serve(rig, "POST", path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
			continue
		}
		if len(rig.calls) != 1 || rig.calls[0] != want {
			t.Errorf("%s: expected call %q, got %v", path, want, rig.calls)
		}
	}
}

func TestSetThemeRange(t *testing.T) {
	rig := &fakeRig{}
	if rec := serve(rig, "POST", "/api/theme/300", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for theme 300, got %d", rec.Code)
	}
	if len(rig.calls) != 0 {
		t.Errorf("Expected no rig calls, got %v", rig.calls)
	}
}

func TestCommandBusy(t *testing.T) {
	rig := &fakeRig{err: fmt.Errorf("gave up: %w", protocol.ErrLinkBusy)}
	rec := serve(rig, "POST", "/api/theme/next", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Bad error body: %v", err)
	}
	if !strings.Contains(body.Error, "busy") {
		t.Errorf("Expected busy error, got '%s'", body.Error)
	}
}

func TestSetBluetooth(t *testing.T) {
	rig := &fakeRig{}
	rec := serve(rig, "PUT", "/api/bluetooth", `{"saved_hosts": [2, 4], "connected_host": 2, "mode": "legacy", "usb_report": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	want := core.BluetoothStatus{SavedHosts: 0x0a, ConnectedHost: 2, Mode: core.BluetoothLegacy}
	if rig.status != want {
		t.Errorf("Expected %+v, got %+v", want, rig.status)
	}
	if !rig.usbReport {
		t.Error("Expected usb report to be set")
	}

	var snap bench.Status
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("Bad status body: %v", err)
	}
	if snap.Mode != "legacy" {
		t.Errorf("Expected mode legacy, got %s", snap.Mode)
	}

	if rec := serve(rig, "PUT", "/api/bluetooth", `{"mode": "classic"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown mode, got %d", rec.Code)
	}
	if rec := serve(rig, "PUT", "/api/bluetooth", `{`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad json, got %d", rec.Code)
	}
}

func TestStatusJSON(t *testing.T) {
	rig := &fakeRig{status: core.BluetoothStatus{ConnectedHost: 1, Mode: core.BluetoothBle}}
	rec := serve(rig, "GET", "/api/status", "")

	var snap bench.Status
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("Bad status body: %v", err)
	}
	if snap.Bluetooth.ConnectedHost != 1 || snap.Mode != "ble" {
		t.Errorf("Unexpected status %+v", snap)
	}
}

func TestStatusPage(t *testing.T) {
	rig := &fakeRig{status: core.BluetoothStatus{SavedHosts: 0x01, ConnectedHost: 1}}
	rec := serve(rig, "GET", "/status/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"gorilla.csrf.Token", "/dev/null", "connected", "lmsg: led 66 [7]"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected status page to contain %q", want)
		}
	}
}

func TestStatusPushRequiresToken(t *testing.T) {
	rig := &fakeRig{}
	rec := serve(rig, "POST", "/status/push", "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without csrf token, got %d", rec.Code)
	}
	if len(rig.calls) != 0 {
		t.Errorf("Expected no rig calls, got %v", rig.calls)
	}
}

func TestRootRedirects(t *testing.T) {
	rec := serve(&fakeRig{}, "GET", "/", "")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/status/" {
		t.Errorf("Expected redirect to /status/, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
}

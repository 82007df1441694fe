package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/lifeos/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func stubConfigDir(t *testing.T, dir string) {
	t.Helper()
	old := userConfigDirFunc
	t.Cleanup(func() { userConfigDirFunc = old })
	userConfigDirFunc = func() (string, error) { return dir, nil }
}

func stubProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
}

func TestGetTrayAppConfigDir(t *testing.T) {
	tempDir := t.TempDir()
	stubConfigDir(t, tempDir)

	trayDir := filepath.Join(tempDir, constants.TrayAppIdentifier)
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != trayDir {
		t.Errorf("expected %s, got %s", trayDir, dir)
	}

	if err := os.MkdirAll(trayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	customDir := filepath.Join(tempDir, "custom")
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, customDir)
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != customDir {
		t.Errorf("expected %s, got %s", customDir, dir)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	tests := []struct {
		name       string
		content    *string
		executable string
		wantErr    string
		wantPort   string
	}{
		{name: "missing lockfile", content: nil, wantErr: "not running"},
		{name: "two parts", content: ptr("8080|12345"), wantErr: "malformed"},
		{name: "garbage", content: ptr("invalid"), wantErr: "malformed"},
		{name: "empty secret", content: ptr("8080|12345|"), executable: "lifeos-tray", wantErr: "secret"},
		{name: "empty port", content: ptr("|12345|s3cret"), wantErr: "port"},
		{name: "port out of range", content: ptr("99999|12345|s3cret"), wantErr: "range"},
		{name: "bad pid", content: ptr("8080|abc|s3cret"), wantErr: "process ID"},
		{name: "process gone", content: ptr("8080|12345|s3cret"), executable: "", wantErr: "not running"},
		{name: "wrong executable", content: ptr("8080|12345|s3cret"), executable: "other-app", wantErr: "is not lifeos-tray"},
		{name: "ok", content: ptr("8080|12345|s3cret\n"), executable: "lifeos-tray", wantPort: "8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubProcess(t, tt.executable)
			lockfile := filepath.Join(t.TempDir(), constants.NotifierLockfileName)
			if tt.content != nil {
				if err := os.WriteFile(lockfile, []byte(*tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			port, secret, err := findAndValidateTrayProcess(lockfile)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if port != tt.wantPort || secret != "s3cret" {
				t.Errorf("got port=%q secret=%q", port, secret)
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestTrayNotify(t *testing.T) {
	var got WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Lifeos-Secret") != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.Text == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	tempDir := t.TempDir()
	stubConfigDir(t, tempDir)
	stubProcess(t, "lifeos-tray")
	trayDir := filepath.Join(tempDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	lock := fmt.Sprintf("%s|4242|s3cret", u.Port())
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(lock), 0o644); err != nil {
		t.Fatal(err)
	}

	tray := NewTray()
	if err := tray.Notify(context.Background(), LevelError, "sync failed"); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if got.Text != "sync failed" || got.Level != "error" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("unexpected payload: %+v", got)
	}

	if err := tray.Notify(context.Background(), LevelInfo, "fail"); err == nil {
		t.Error("expected error for server failure")
	}
	if err := tray.send(context.Background(), u.Port(), "wrong", WebhookPayload{Text: "hi"}); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestTrayNotRunning(t *testing.T) {
	stubConfigDir(t, t.TempDir())
	err := NewTray().Notify(context.Background(), LevelInfo, "hello")
	if !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("error = %v, want %v", err, ErrTrayNotRunning)
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	if err := c.Notify(context.Background(), LevelInfo, "habit created"); err != nil {
		t.Fatal(err)
	}
	if err := c.Notify(context.Background(), LevelError, "could not save goal"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "habit created\n") || !strings.Contains(out, "could not save goal\n") {
		t.Errorf("unexpected output: %q", out)
	}
}

type failing struct{ err error }

func (f failing) Notify(context.Context, Level, string) error { return f.err }

func TestMulti(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	m := Multi{NewConsole(&buf), nil, failing{err: boom}, Nop{}}

	err := m.Notify(context.Background(), LevelInfo, "done")
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want it to wrap %v", err, boom)
	}
	if !strings.Contains(buf.String(), "done") {
		t.Error("console notifier should still receive the message")
	}
	if err := (Multi{Nop{}}).Notify(context.Background(), LevelInfo, "x"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFilter(t *testing.T) {
	var buf bytes.Buffer
	f := Filter{Level: LevelInfo, Next: NewConsole(&buf)}

	if err := f.Notify(context.Background(), LevelError, "dropped"); err != nil {
		t.Fatal(err)
	}
	if err := f.Notify(context.Background(), LevelInfo, "kept"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("output = %q", buf.String())
	}
	if err := (Filter{Level: LevelInfo}).Notify(context.Background(), LevelInfo, "x"); err != nil {
		t.Errorf("nil Next should be a no-op, got %v", err)
	}
}

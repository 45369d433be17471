package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "flat mapping",
			doc:  "MgrName: Pub-10-1\nMgrActive_Local: true\nServiceRetryHoldoffSeconds: 0.5\nDebugLevel: 2\n",
			want: map[string]string{"MgrName": "Pub-10-1", "MgrActive_Local": "true", "ServiceRetryHoldoffSeconds": "0.5", "DebugLevel": "2"},
		},
		{
			name: "nested params",
			doc:  "params:\n  MgrName: Pub-10-1\n  WorkDir:\n",
			want: map[string]string{"MgrName": "Pub-10-1", "WorkDir": ""},
		},
		{
			name: "literals kept as written",
			doc:  "Octal: 0755\nVersion: 1.10\nHex: 0x1F\nStamp: 2024-01-01\nExp: 1e3\nFlag: yes\nNothing: ~\n",
			want: map[string]string{"Octal": "0755", "Version": "1.10", "Hex": "0x1F", "Stamp": "2024-01-01", "Exp": "1e3", "Flag": "yes", "Nothing": ""},
		},
		{
			name: "quoted and aliased",
			doc:  "Base: &dir '/data/work'\nWorkDir: *dir\nName: \"Pub-10-1\"\n",
			want: map[string]string{"Base": "/data/work", "WorkDir": "/data/work", "Name": "Pub-10-1"},
		},
		{name: "empty", doc: "", wantErr: true},
		{name: "not a mapping", doc: "- a\n- b\n", wantErr: true},
		{name: "nested mapping value", doc: "MgrName:\n  inner: x\n", wantErr: true},
		{name: "non scalar", doc: "MgrName: [a, b]\n", wantErr: true},
		{name: "duplicate ignoring case", doc: "WorkDir: a\nworkdir: b\n", wantErr: true},
		{name: "not yaml", doc: "MgrName: [unterminated", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteAndLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manager.yaml")
	values := map[string]string{"MgrName": "Pub-10-1", "WorkDir": `C:\DMS_WorkDir`, "Active": "true"}

	require.NoError(t, WriteParams(path, values))
	got, err := LoadLocalParams(path)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestLoadLocalParams_Missing(t *testing.T) {
	_, err := LoadLocalParams(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMaintenanceWindow(t *testing.T) {
	wed := func(h, m int) time.Time { return time.Date(2026, 10, 14, h, m, 0, 0, time.UTC) }
	thu := func(h, m int) time.Time { return time.Date(2026, 10, 15, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name   string
		window string
		at     time.Time
		want   bool
	}{
		{"daily inside", "01:00-03:00", wed(2, 0), true},
		{"daily end exclusive", "01:00-03:00", wed(3, 0), false},
		{"weekday match", "Wednesday 18:00-21:00", wed(19, 30), true},
		{"weekday mismatch", "Thu 18:00-21:00", wed(19, 30), false},
		{"wrap before midnight", "Wed 22:00-02:00", wed(23, 0), true},
		{"wrap after midnight next day", "Wed 22:00-02:00", thu(1, 0), true},
		{"wrap after midnight wrong day", "Wed 22:00-02:00", wed(1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseMaintenanceWindow(tt.window)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Contains(tt.at))
		})
	}
}

func TestParseMaintenanceWindow_Invalid(t *testing.T) {
	for _, s := range []string{"Someday 01:00-02:00", "01:00", "25:00-26:00", "Mon Tue 01:00-02:00"} {
		_, err := ParseMaintenanceWindow(s)
		assert.Error(t, err, s)
	}

	w, err := ParseMaintenanceWindow("  ")
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.False(t, w.Contains(time.Now()))
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("ANMGR_LOCAL_CONFIG", "/etc/anmgr/manager.yaml")
	t.Setenv("ANMGR_LOG_JSON", "true")
	t.Setenv("ANMGR_OFFLINE", "1")

	env, err := LoadEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "/etc/anmgr/manager.yaml", env.LocalConfig)
	assert.True(t, env.LogJSON)
	assert.True(t, env.Offline)
	assert.Equal(t, "info", env.LogLevel)
}

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaemonFilesClaimAndRelease(t *testing.T) {
	f := daemonFiles{pidPath: filepath.Join(t.TempDir(), "run", "finburnd.pid")}

	require.NoError(t, f.ensureFree(), "missing pid file is free")

	st := daemonState{PID: os.Getpid(), Addr: "127.0.0.1:9999", StartedAt: time.Now(), DataDir: "/data"}
	require.NoError(t, f.claim(st))

	pid, err := f.pid()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	got, err := f.state()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", got.Addr)
	assert.Equal(t, "/data", got.DataDir)

	assert.Error(t, f.ensureFree(), "own pid is alive")

	f.release()
	_, err = os.Stat(f.pidPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(f.statePath())
	assert.True(t, os.IsNotExist(err))
}

func TestDaemonFilesInvalidPID(t *testing.T) {
	f := daemonFiles{pidPath: filepath.Join(t.TempDir(), "finburnd.pid")}
	require.NoError(t, os.WriteFile(f.pidPath, []byte("nope\n"), 0o600))

	_, err := f.pid()
	assert.ErrorContains(t, err, "invalid pid")
	assert.Error(t, f.ensureFree())
}

func TestChildArgs(t *testing.T) {
	got := childArgs([]string{"daemon", "--detach", "--addr", ":1", "--detach=true"})
	assert.Equal(t, []string{"daemon", "--addr", ":1", "--child"}, got)
}

//go:build unix

package finder

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	gopsproc "github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignal(t *testing.T) {
	for in, want := range map[string]syscall.Signal{
		"TERM":    syscall.SIGTERM,
		"sigkill": syscall.SIGKILL,
		" int ":   syscall.SIGINT,
		"15":      syscall.SIGTERM,
	} {
		got, err := ParseSignal(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSignal("NOPE")
	assert.Error(t, err)
	_, err = ParseSignal("0")
	assert.Error(t, err)
}

// TestFindAndSignal re-executes the test binary with a wrapper-like argv
// and checks it is found by token and can be signalled.
func TestFindAndSignal(t *testing.T) {
	self, err := os.Executable()
	require.NoError(t, err)

	cmd := exec.Command(self)
	cmd.Args = []string{"/opt/bin/fakewrap", "tok-42", "grep", "-r", "needle"}
	cmd.Env = append(os.Environ(), helperEnv+"=1")
	require.NoError(t, cmd.Start())
	defer func() { _ = cmd.Process.Kill(); _, _ = cmd.Process.Wait() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var found []Instance
	require.Eventually(t, func() bool {
		found, err = Find(ctx, Query{Name: "fakewrap", Token: "tok-42"})
		return err == nil && len(found) == 1
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, int32(cmd.Process.Pid), found[0].PID)
	assert.Equal(t, "grep", found[0].Command)
	assert.Equal(t, []string{"-r", "needle"}, found[0].Args)
	assert.False(t, found[0].StartedAt.IsZero())

	none, err := Find(ctx, Query{Name: "fakewrap", Token: "other"})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, Signal(ctx, found, syscall.SIGTERM))
	state, err := cmd.Process.Wait()
	require.NoError(t, err)
	ws := state.Sys().(syscall.WaitStatus)
	assert.True(t, ws.Signaled())
	assert.Equal(t, syscall.SIGTERM, ws.Signal())
}

// TestSignalReachesLaunchedCommand runs a stand-in wrapper that has its own
// child and checks that signalling the instance leaves no orphan behind.
func TestSignalReachesLaunchedCommand(t *testing.T) {
	self, err := os.Executable()
	require.NoError(t, err)

	cmd := exec.Command(self)
	cmd.Args = []string{"/opt/bin/fakewrap", "tok-tree", "sleep", "37"}
	cmd.Env = append(os.Environ(), helperEnv+"=parent")
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	defer func() { _ = cmd.Process.Kill(); _, _ = cmd.Process.Wait() }()

	line, err := bufio.NewReader(stdout).ReadString('\n')
	require.NoError(t, err)
	childPID, err := strconv.Atoi(strings.TrimSpace(line))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var found []Instance
	require.Eventually(t, func() bool {
		found, err = Find(ctx, Query{Name: "fakewrap", Token: "tok-tree"})
		return err == nil && len(found) == 1
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, Signal(ctx, found, syscall.SIGTERM))
	_, err = cmd.Process.Wait()
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return exited(ctx, int32(childPID)) },
		5*time.Second, 50*time.Millisecond, "launched command %d still running", childPID)
}

func TestSignalAlreadyExited(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	err := Signal(context.Background(), []Instance{{PID: int32(cmd.Process.Pid)}}, syscall.SIGTERM)
	assert.NoError(t, err)
}

// exited treats zombies as gone; reaping a reparented child is up to init.
func exited(ctx context.Context, pid int32) bool {
	p, err := gopsproc.NewProcessWithContext(ctx, pid)
	if err != nil {
		return true
	}
	status, err := p.StatusWithContext(ctx)
	if err != nil {
		return true
	}
	return slices.Contains(status, gopsproc.Zombie)
}

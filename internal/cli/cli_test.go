package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/session-replay/internal/playback"
)

// runCLI выполняет команду replayctl и возвращает ее stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "replay.yaml")
	data := "storage:\n  backend: file\n  dir: " + filepath.Join(dir, "logs") + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestCLI_RecordInspectEval(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	out, err := runCLI(t, "record", "-c", cfgPath, "-n", "demo", "-d", "3", "--movers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 static")
	assert.Contains(t, out, "demo.dynamic")
	assert.FileExists(t, filepath.Join(dir, "logs", "demo.static"))
	assert.FileExists(t, filepath.Join(dir, "logs", "demo.dynamic"))

	out, err = runCLI(t, "list", "-c", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "demo.dynamic\ndemo.static\n", out)

	out, err = runCLI(t, "inspect", "-c", cfgPath, "demo.dynamic")
	require.NoError(t, err)
	assert.Contains(t, out, "Crate0_")
	assert.Contains(t, out, "Hero_")
	assert.Contains(t, out, "(key)")
	assert.Contains(t, out, "Skeletal")

	out, err = runCLI(t, "eval", "-c", cfgPath, "demo.static", "demo.dynamic", "-t", "1.25", "-o", "Lamp")
	require.NoError(t, err)
	assert.Contains(t, out, "t=1.250")
	assert.Contains(t, out, "light Point")
	assert.NotContains(t, out, "Crate0_")

	// Время за концом записи прижимается к границе
	out, err = runCLI(t, "eval", "-c", cfgPath, "demo.dynamic", "-t", "100", "-o", "")
	require.NoError(t, err)
	assert.Contains(t, out, "t=3.000")
}

func TestCLI_InspectBrokenLog(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "bad"), []byte("OBJ_START~Box\n"), 0644))

	_, err := runCLI(t, "inspect", "-c", cfgPath, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestCLI_RecordRejectsBadDuration(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())
	_, err := runCLI(t, "record", "-c", cfgPath, "-d", "0")
	assert.Error(t, err)
	recordDuration = 10
}

func TestSummarize(t *testing.T) {
	text := "OBJ_START~Box_0\n" +
		"TRK_START~Position\n0.000~(0.000, 0.000, 0.000)\n2.000~(1.000, 0.000, 0.000)\nTRK_END~Position\n" +
		"TRK_START~Lifetime\n0.500~true\nTRK_END~Lifetime\n" +
		"OBJ_END~Box_0\n"

	s, err := summarize("box.log", text)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Earliest)
	assert.Equal(t, 2.0, s.Latest)
	require.Len(t, s.Objects, 1)
	assert.Equal(t, "Box_0", s.Objects[0].FullName)
	require.Len(t, s.Objects[0].Tracks, 2)
	assert.Equal(t, trackSummary{Kind: "Position", Samples: 2, Earliest: 0, Latest: 2}, s.Objects[0].Tracks[0])

	var out bytes.Buffer
	printSummary(&out, s)
	assert.True(t, strings.HasPrefix(out.String(), "box.log: 1 objects, [0.000, 2.000]"))
}

func TestParseStringList(t *testing.T) {
	assert.Nil(t, parseStringList(""))
	assert.Equal(t, []string{"a", "b"}, parseStringList(" a, ,b "))
}

func TestClampTime(t *testing.T) {
	p := playback.NewPlayer()
	_, err := p.LoadText(context.Background(), "x", "OBJ_START~Box_0\nTRK_START~Position\n"+
		"1.000~(0.000, 0.000, 0.000)\n3.000~(1.000, 0.000, 0.000)\nTRK_END~Position\nOBJ_END~Box_0\n",
		playback.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, clampTime(p, -5))
	assert.Equal(t, 2.0, clampTime(p, 2))
	assert.Equal(t, 3.0, clampTime(p, 7))
}

func TestLogWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := newLogWatcher(dir, []string{"watched"})
	require.NoError(t, err)
	defer w.Stop()

	path := filepath.Join(dir, "watched")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0644))

	select {
	case name := <-w.Changes():
		assert.Equal(t, "watched", name)
	case <-time.After(2 * time.Second):
		t.Fatal("нет уведомления об изменении")
	}

	select {
	case name := <-w.Changes():
		t.Fatalf("лишнее уведомление: %s", name)
	case <-time.After(3 * watchDebounce):
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestNormalizeCmd(t *testing.T) {
	out := runCmd(t, "\nHockey\nRugby\n\n\nTennis\n", "normalize")
	require.Equal(t, "Hockey\nRugby\nTennis\n", out)
}

func TestNormalizeCmdBlank(t *testing.T) {
	require.Empty(t, runCmd(t, " \n\t\n", "normalize"))
}

func TestPickCmd(t *testing.T) {
	out := runCmd(t, "Hockey\nRugby\nTennis\n", "pick", "-n", "5")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		require.Contains(t, []string{"Hockey", "Rugby", "Tennis"}, l)
	}
}

func TestPickCmdSeedRepeatable(t *testing.T) {
	in := "a\nb\nc\nd\ne\n"
	first := runCmd(t, in, "pick", "--seed", "7", "-n", "10")
	second := runCmd(t, in, "pick", "--seed", "7", "-n", "10")
	require.Equal(t, first, second)
}

func TestPickCmdEmpty(t *testing.T) {
	require.Empty(t, runCmd(t, "\n\n", "pick"))
}

func TestPickCmdSingle(t *testing.T) {
	require.Equal(t, "Hockey\nHockey\nHockey\n", runCmd(t, "Hockey", "pick", "-n", "3"))
}

func TestServeOptionsResolve(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PRESET_FILE", "")
	t.Setenv("RANDPIPE_BOARD_TTL", "")
	t.Setenv("RANDPIPE_LOG_LEVEL", "")

	cfg, err := serveOptions{}.resolve()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Port)

	cfg, err = serveOptions{port: "7000", presetFile: "/tmp/x.json", boardTTL: time.Hour, debug: true}.resolve()
	require.NoError(t, err)
	require.Equal(t, "7000", cfg.Port)
	require.Equal(t, "/tmp/x.json", cfg.PresetFile)
	require.Equal(t, time.Hour, cfg.BoardTTL)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("info")
	require.NoError(t, err)
	_, err = newLogger("chatty")
	require.Error(t, err)
}

func TestStaticFilesEmbedded(t *testing.T) {
	data, err := staticFiles.ReadFile("static/index.html")
	require.NoError(t, err)
	require.Contains(t, string(data), "Randpipe")
}

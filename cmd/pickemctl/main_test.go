package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/riskibarqy/nfl-pickem/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowCmd_PrintsLocalAndUTCBounds(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("PICKEM_TIMEZONE", "Europe/Dublin")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"window", "--at", "2026-10-17T12:00:00Z"})

	require.NoError(t, root.Execute())
	got := out.String()
	assert.Contains(t, got, "window 2026-W43 (Europe/Dublin)")
	assert.Contains(t, got, "start 2026-10-21T23:00:00Z  Thu 22 Oct 00:00")
	assert.Contains(t, got, "end   2026-10-27T00:00:00Z  Tue 27 Oct 00:00")
	assert.Contains(t, got, "hours 121")
}

func TestWindowCmd_RejectsBadClock(t *testing.T) {
	t.Setenv("APP_ENV", "dev")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"window", "--at", "yesterday"})

	assert.Error(t, root.Execute())
}

func TestPrintLeaderboard(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printLeaderboard(&out, []usecase.LeaderboardRow{
		{PlayerID: "p1", DisplayName: "Ana", Points: 7, Wins: 2, Pushes: 1},
		{PlayerID: "p2", DisplayName: "Ben", Points: 3, Wins: 1, Losses: 2},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Equal(t, []string{"1", "Ana", "7", "2", "1", "0"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "Ben", "3", "1", "0", "2"}, strings.Fields(lines[2]))
}

func TestPrintIngestReport(t *testing.T) {
	var out bytes.Buffer
	printIngestReport(&out, usecase.IngestReport{
		Days:       6,
		Fetched:    14,
		Saved:      13,
		FailedDays: []usecase.FailedDay{{Date: "2026-10-26", Error: "timeout"}},
	})

	assert.Contains(t, out.String(), "days=6 fetched=14 saved=13")
	assert.Contains(t, out.String(), "failed 2026-10-26: timeout")
	assert.Contains(t, out.String(), "ambiguous=0 unmatched=0")
}

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/plugin/ai/schedule"
	"github.com/hrygo/agenda/plugin/ai/session"
	"github.com/hrygo/agenda/server"
	teststore "github.com/hrygo/agenda/store/test"
)

func TestParseStart(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	want := time.Date(2030, 3, 11, 10, 0, 0, 0, loc)

	for _, raw := range []string{"2030/03/11 10:00:00", "2030/03/11 10:00", "2030-03-11 10:00", "2030-03-11T13:00:00Z"} {
		got, err := parseStart(raw, loc)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}

	_, err := parseStart("mañana", loc)
	assert.Error(t, err)
}

func TestRunChat(t *testing.T) {
	ctx := context.Background()
	p := &profile.Profile{Mode: "dev", Version: "test"}
	p.FromEnv()
	p.Timezone = "UTC"
	p.AIEnabled = false
	p.RedisAddr = ""
	p.MeetingDuration = 45 * time.Minute
	p.BusinessOpen, p.BusinessClose = "09:00", "18:00"
	p.BusinessDays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

	var out bytes.Buffer
	c, err := server.NewComponents(ctx, p, teststore.NewTestingStore(ctx, t), consoleMessenger{w: &out})
	require.NoError(t, err)

	in := strings.NewReader("2030/03/11 10:00\n\nsí\n")
	require.NoError(t, runChat(ctx, c.Arbiter, "cli", in))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "Asistente: "+schedule.MsgProgress, lines[0])
	assert.Equal(t, "Asistente: "+schedule.MsgConfirmed, lines[len(lines)-1])

	var history bytes.Buffer
	require.NoError(t, printHistory(ctx, &history, session.NewSessionRecovery(c.Sessions), "cli"))
	assert.True(t, strings.HasSuffix(history.String(), "Cliente: sí\nAsistente: "+schedule.MsgConfirmed+"\n"))

	history.Reset()
	require.NoError(t, printHistory(ctx, &history, session.NewSessionRecovery(c.Sessions), "unknown"))
	assert.Empty(t, history.String())
}

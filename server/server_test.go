package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/plugin/ai"
	teststore "github.com/hrygo/agenda/store/test"
)

func testProfile(t *testing.T) *profile.Profile {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Addr: "127.0.0.1", Version: "test"}
	p.FromEnv()
	p.Timezone = "UTC"
	p.AIEnabled = false
	p.RedisAddr = ""
	return p
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestNewComponentsUsesRuleExtractorWithoutAI(t *testing.T) {
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)

	extractor, err := newExtractor(testProfile(t), nil)
	require.NoError(t, err)
	assert.IsType(t, &ai.RuleExtractor{}, extractor)

	c, err := NewComponents(ctx, testProfile(t), st, nil)
	require.NoError(t, err)
	assert.NotNil(t, c.Arbiter)
	assert.Nil(t, c.Redis)
	assert.NoError(t, c.Close())
}

func TestNewExtractorWithAI(t *testing.T) {
	p := testProfile(t)
	p.AIEnabled = true
	p.AIOpenAIAPIKey = "sk-test"

	extractor, err := newExtractor(p, nil)
	require.NoError(t, err)
	assert.IsType(t, &ai.DateExtractor{}, extractor)

	p.AILLMModel = ""
	_, err = newExtractor(p, nil)
	assert.Error(t, err)
}

func TestNewComponentsRejectsBadHours(t *testing.T) {
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)

	p := testProfile(t)
	p.BusinessOpen = "9am"
	_, err := NewComponents(ctx, p, st, nil)
	assert.Error(t, err)
}

func TestServerRoutes(t *testing.T) {
	ctx := context.Background()
	s, err := NewServer(ctx, testProfile(t), teststore.NewTestingStore(ctx, t))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.echoServer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerStartAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := testProfile(t)
	p.Port = freePort(t)
	s, err := NewServer(ctx, p, teststore.NewTestingStore(ctx, t))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	url := "http://" + net.JoinHostPort(p.Addr, strconv.Itoa(p.Port)) + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}

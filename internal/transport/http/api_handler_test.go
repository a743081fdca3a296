package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareEndpoint(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(NewMux(service, zerolog.Nop()))
	defer server.Close()

	ctx := context.Background()
	_, err := service.StartQuiz(ctx, "bob", "promises")
	require.NoError(t, err)
	_, err = service.SelectAnswer(ctx, "bob", "p1", 0)
	require.NoError(t, err)
	result, err := service.Finish(ctx, "bob")
	require.NoError(t, err)
	require.NotEmpty(t, result.ShareURL)

	link, err := url.Parse(result.ShareURL)
	require.NoError(t, err)

	var trusted shareResponse
	getJSON(t, server.URL+"/share?"+link.RawQuery, &trusted)
	assert.True(t, trusted.Trusted)
	require.NotNil(t, trusted.Claim)
	assert.Equal(t, "1/1", trusted.Claim.Score)
	assert.Equal(t, "Promises", trusted.Label)

	tampered := strings.Replace(link.RawQuery, "score=1%2F1", "score=2%2F2", 1)
	require.NotEqual(t, link.RawQuery, tampered)
	var untrusted shareResponse
	getJSON(t, server.URL+"/share?"+tampered, &untrusted)
	assert.False(t, untrusted.Trusted)
	assert.Nil(t, untrusted.Claim)
}

func TestStatsAndHistoryEndpoints(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(NewMux(service, zerolog.Nop()))
	defer server.Close()

	ctx := context.Background()
	_, err := service.StartQuiz(ctx, "carol", "promises")
	require.NoError(t, err)
	_, err = service.Finish(ctx, "carol")
	require.NoError(t, err)

	var stats statsResponse
	getJSON(t, server.URL+"/stats?profile=carol", &stats)
	assert.Equal(t, 1, stats.Stats.TotalQuizzes)
	assert.Equal(t, 0, stats.Summary.Accuracy)
	assert.Equal(t, 1, stats.Stats.ByCategory["promises"].Attempted)

	var history []map[string]any
	getJSON(t, server.URL+"/history?profile=carol&category=promises", &history)
	assert.Len(t, history, 1)
	getJSON(t, server.URL+"/history?profile=carol&category=closures", &history)
	assert.Empty(t, history)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func getJSON(t *testing.T, u string, v any) {
	t.Helper()
	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

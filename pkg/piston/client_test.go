package piston

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestExecuteSendsPistonPayload(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/execute", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"run":{"stdout":"ok\n","stderr":"","code":0}}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	result, err := client.Execute(context.Background(), ExecuteRequest{
		Language: "python",
		Version:  "3.10.0",
		Source:   "print('ok')",
		Stdin:    "42",
	})
	require.NoError(t, err)
	require.Equal(t, "ok\n", result.Stdout)
	require.Equal(t, 0, result.ExitCode)

	require.Equal(t, "python", received["language"])
	require.Equal(t, "3.10.0", received["version"])
	require.Equal(t, "42", received["stdin"])
	files, ok := received["files"].([]interface{})
	require.True(t, ok)
	require.Len(t, files, 1)
	file, ok := files[0].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "print('ok')", file["content"])
}

func TestExecuteReportsNonZeroExit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"run":{"stdout":"","stderr":"NameError: x","code":1}}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	result, err := client.Execute(context.Background(), ExecuteRequest{Language: "python", Version: "3.10.0", Source: "x"})
	require.NoError(t, err)
	require.Equal(t, 1, result.ExitCode)
	require.Equal(t, "NameError: x", result.Stderr)
}

func TestExecuteMapsErrorStatusToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = client.Execute(context.Background(), ExecuteRequest{Language: "python", Version: "3.10.0", Source: "x"})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestExecuteMapsTransportFailureToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = client.Execute(context.Background(), ExecuteRequest{Language: "python", Version: "3.10.0", Source: "x"})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/ultralite/packages/http"
	"github.com/abdul-hamid-achik/ultralite/packages/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.URL.Path {
		case "/login":
			nethttp.SetCookie(w, &nethttp.Cookie{Name: "session", Value: "abc", Path: "/"})
			w.WriteHeader(nethttp.StatusOK)
		case "/missing":
			w.WriteHeader(nethttp.StatusNotFound)
		default:
			w.Header().Set("Content-Type", "application/json")
			cookie := ""
			if c, err := r.Cookie("session"); err == nil {
				cookie = c.Value
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"foo":    r.URL.Query().Get("foo"),
				"accept": r.Header.Get("Accept"),
				"cookie": cookie,
			})
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"Accept: application/json", "X-Empty:"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Empty": ""}, headers)

	_, err = parseHeaders([]string{"no-colon"})
	assert.Error(t, err)

	headers, err = parseHeaders(nil)
	require.NoError(t, err)
	assert.Nil(t, headers)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"foo=bar", "q=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"foo": "bar", "q": "a=b"}, params)

	_, err = parseParams([]string{"=bar"})
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"explicit", withExitCode(ExitConfigError, errors.New("bad")), ExitConfigError},
		{"secure transport", &http.SecureTransportError{URL: "https://x", Err: errors.New("no roots")}, ExitSecurityError},
		{"downgrade", fmt.Errorf("chain: %w", &http.SecurityDowngradeError{From: "https://a", To: "http://b"}), ExitSecurityError},
		{"not implemented", fmt.Errorf("POST: %w", http.ErrNotImplemented), ExitUsageError},
		{"status", &http.StatusError{StatusCode: 404, Reason: "Not Found"}, ExitStatusFailure},
		{"transport status", &http.StatusError{StatusCode: http.TransportFailureStatus, Reason: "refused"}, ExitNetworkError},
		{"other", errors.New("unknown flag"), ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestGetCommand_JSON(t *testing.T) {
	server := echoServer(t)

	out, err := execute(t, "get", server.URL+"/echo", "-p", "foo=bar", "-H", "Accept: application/json", "-o", "json")
	require.NoError(t, err)

	var result output.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Responses, 1)
	assert.Equal(t, 200, result.Responses[0].StatusCode)
	assert.Equal(t, map[string]any{"foo": "bar", "accept": "application/json", "cookie": ""}, result.Responses[0].Body)
}

func TestGetCommand_Path(t *testing.T) {
	server := echoServer(t)

	out, err := execute(t, "get", server.URL+"/echo", "-p", "foo=bar", "--path", "foo", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "bar\n")
}

func TestGetCommand_ThenSharesCookies(t *testing.T) {
	server := echoServer(t)

	out, err := execute(t, "get", server.URL+"/login", "--cookies", "--then", server.URL+"/me", "-o", "json")
	require.NoError(t, err)

	var result output.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Responses, 2)
	body, ok := result.Responses[1].Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc", body["cookie"])
}

func TestGetCommand_Raise(t *testing.T) {
	server := echoServer(t)

	_, err := execute(t, "get", server.URL+"/missing", "--no-color")
	require.NoError(t, err)

	_, err = execute(t, "get", server.URL+"/missing", "--raise", "--no-color")
	require.Error(t, err)
	assert.Equal(t, ExitStatusFailure, exitCode(err))
}

func TestGetCommand_NetworkError(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
	url := server.URL
	server.Close()

	_, err := execute(t, "get", url, "--no-color")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, exitCode(err))
}

func TestGetCommand_Schema(t *testing.T) {
	server := echoServer(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"type":"object","required":["foo"]}`), 0o644))
	_, err := execute(t, "get", server.URL+"/echo", "--schema", valid, "--no-color")
	require.NoError(t, err)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"type":"object","required":["missing"]}`), 0o644))
	_, err = execute(t, "get", server.URL+"/echo", "--schema", invalid, "--no-color")
	require.Error(t, err)
	assert.Equal(t, ExitStatusFailure, exitCode(err))
}

func TestGetCommand_ConfigHeaders(t *testing.T) {
	server := echoServer(t)
	cfgPath := filepath.Join(t.TempDir(), "ultralite.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("headers:\n  Accept: text/plain\n"), 0o644))

	out, err := execute(t, "get", server.URL+"/echo", "--config", cfgPath, "--path", "accept", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "text/plain\n")
}

func TestGetCommand_BadConfig(t *testing.T) {
	_, err := execute(t, "get", "http://127.0.0.1:1", "--config", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestGetCommand_BadTimeout(t *testing.T) {
	_, err := execute(t, "get", "http://127.0.0.1:1", "--timeout", "soon")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestHeadCommand(t *testing.T) {
	server := echoServer(t)

	out, err := execute(t, "head", server.URL+"/echo", "-o", "json")
	require.NoError(t, err)

	var result output.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Responses, 1)
	assert.Equal(t, "HEAD", result.Responses[0].Request.Method)
	assert.Nil(t, result.Responses[0].Body)
}

func TestStubCommands(t *testing.T) {
	for _, verb := range []string{"post", "put", "delete"} {
		t.Run(verb, func(t *testing.T) {
			_, err := execute(t, verb, "http://127.0.0.1:1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, http.ErrNotImplemented))
			assert.Equal(t, ExitUsageError, exitCode(err))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ultralite version dev")
}

func TestGetCommand_ErrorReportedOnce(t *testing.T) {
	server := echoServer(t)

	out, err := execute(t, "get", server.URL+"/missing", "--raise", "--no-color")
	require.Error(t, err)
	assert.NotContains(t, out, "Error:")

	out, err = execute(t, "get", server.URL+"/missing", "--raise", "-o", "json")
	require.Error(t, err)
	var result output.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "404")
}

func TestGetCommand_RedirectDowngrade(t *testing.T) {
	plain := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
	defer plain.Close()
	secure := httptest.NewTLSServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		nethttp.Redirect(w, r, plain.URL, nethttp.StatusFound)
	}))
	defer secure.Close()

	_, err := execute(t, "get", secure.URL, "-k", "--no-color")
	require.Error(t, err)
	assert.Equal(t, ExitSecurityError, exitCode(err))
}

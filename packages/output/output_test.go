package output

import (
	"bytes"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdul-hamid-achik/ultralite/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetch(t *testing.T, status int, body string) *http.Response {
	t.Helper()
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		nethttp.SetCookie(w, &nethttp.Cookie{Name: "foo", Value: "bar"})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	resp, err := http.NewClient().Get(server.URL+"/get", nil)
	require.NoError(t, err)
	return resp
}

func TestConsoleFormatter_Success(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	f.FormatResponse(fetch(t, 200, `{"args":{"foo":"bar"}}`))

	out := buf.String()
	assert.Contains(t, out, "GET http://")
	assert.Contains(t, out, "200 OK")
	assert.Contains(t, out, "Content-Type: application/json")
	assert.Contains(t, out, "Cookie: foo=bar")
	assert.Contains(t, out, `{"args":{"foo":"bar"}}`)
}

func TestConsoleFormatter_Path(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithPath("args.foo"))

	f.FormatResponse(fetch(t, 200, `{"args":{"foo":"bar"}}`))

	assert.Contains(t, buf.String(), "bar\n")
	assert.NotContains(t, buf.String(), `"args"`)
}

func TestConsoleFormatter_TransportFailure(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
	url := server.URL
	server.Close()

	resp, err := http.NewClient().Get(url, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	NewConsoleFormatter(WithWriter(&buf), WithNoColor(true)).FormatResponse(resp)

	assert.Contains(t, buf.String(), "x ")
	assert.Contains(t, buf.String(), resp.Reason())
}

func TestConsoleFormatter_Error(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleFormatter(WithWriter(&buf), WithNoColor(true)).FormatError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResponse(fetch(t, 200, `{"args":{"foo":"bar"}}`))
	f.FormatResponse(fetch(t, 404, `missing`))
	f.FormatError(errors.New("boom"))
	require.NoError(t, f.Flush())

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Responses, 2)

	first := out.Responses[0]
	assert.Equal(t, 200, first.StatusCode)
	assert.Equal(t, "GET", first.Request.Method)
	assert.Equal(t, "bar", first.Cookies["foo"])
	assert.Equal(t, map[string]any{"args": map[string]any{"foo": "bar"}}, first.Body)

	second := out.Responses[1]
	assert.Equal(t, 404, second.StatusCode)
	assert.Equal(t, "Not Found", second.Reason)
	assert.Nil(t, second.Body)

	assert.Equal(t, []string{"boom"}, out.Errors)
}

func TestJSONFormatter_Path(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf), JSONWithPath("args.foo"))

	f.FormatResponse(fetch(t, 200, `{"args":{"foo":"bar"}}`))
	require.NoError(t, f.Flush())

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "bar", out.Responses[0].Body)
}

package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/abdul-hamid-achik/ultralite/packages/http"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Responses []JSONResponse `json:"responses"`
	Errors    []string       `json:"errors,omitempty"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	UsingSSL bool              `json:"usingSSL"`
}

// JSONResponse represents response details
type JSONResponse struct {
	Request    *JSONRequest      `json:"request,omitempty"`
	StatusCode int               `json:"statusCode"`
	Reason     string            `json:"reason"`
	Headers    map[string]string `json:"headers"`
	Cookies    map[string]string `json:"cookies,omitempty"`
	Body       any               `json:"body,omitempty"`
	Duration   float64           `json:"duration"`
}

// JSONFormatter collects responses and writes them as one JSON document on Flush
type JSONFormatter struct {
	writer    io.Writer
	path      string
	responses []JSONResponse
	errors    []string
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:    os.Stdout,
		responses: make([]JSONResponse, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithPath replaces the body with the value at a gjson path
func JSONWithPath(path string) JSONOption {
	return func(f *JSONFormatter) {
		f.path = path
	}
}

func (f *JSONFormatter) FormatResponse(resp *http.Response) {
	out := JSONResponse{
		StatusCode: resp.StatusCode(),
		Reason:     resp.Reason(),
		Headers:    resp.Headers(),
		Duration:   float64(resp.DurationMs()),
	}

	if req := resp.Request(); req != nil {
		out.Request = &JSONRequest{
			Method:   req.Method,
			URL:      req.URL,
			Headers:  req.Headers,
			UsingSSL: req.UsingSSL,
		}
	}

	if cookies := resp.CookiesMap(); len(cookies) > 0 {
		out.Cookies = cookies
	}

	switch {
	case f.path != "":
		out.Body = resp.Path(f.path).Value()
	case len(resp.Content()) > 0:
		if v, err := resp.JSON(); err == nil {
			out.Body = v
		} else if text, err := resp.Text(); err == nil {
			out.Body = text
		} else {
			out.Body = resp.Content()
		}
	}

	f.responses = append(f.responses, out)
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush() error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(JSONOutput{
		Responses: f.responses,
		Errors:    f.errors,
	})
}

package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/abdul-hamid-achik/ultralite/packages/http"
	"github.com/fatih/color"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
	path    string
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// WithPath prints only the value at a gjson path instead of the whole body
func WithPath(path string) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.path = path
	}
}

func statusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return color.New(color.FgGreen)
	case code >= 300 && code < 400:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func (f *ConsoleFormatter) FormatResponse(resp *http.Response) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if req := resp.Request(); req != nil {
		fmt.Fprintf(f.writer, "%s %s\n", bold(req.Method), req.URL)
	}

	status := statusColor(resp.StatusCode()).SprintFunc()
	if resp.IsTransportFailure() {
		fmt.Fprintf(f.writer, "%s %s\n", status("x"), status(resp.Reason()))
		return
	}
	fmt.Fprintf(f.writer, "%s %s\n", status(fmt.Sprintf("%d %s", resp.StatusCode(), resp.Reason())),
		cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))

	if f.verbose {
		headers := resp.Headers()
		keys := make([]string, 0, len(headers))
		for k := range headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "%s %s\n", faint(k+":"), headers[k])
		}
		for _, c := range resp.Cookies() {
			fmt.Fprintf(f.writer, "%s %s=%s\n", faint("Cookie:"), c.Name, c.Value)
		}
	}

	if f.path != "" {
		fmt.Fprintf(f.writer, "%s\n", resp.Path(f.path).String())
		return
	}

	if body := resp.Content(); len(body) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", body)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

// Flush is a no-op; console output is written as it arrives
func (f *ConsoleFormatter) Flush() error {
	return nil
}

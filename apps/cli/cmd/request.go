package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/ultralite/packages/core/config"
	"github.com/abdul-hamid-achik/ultralite/packages/core/logger"
	"github.com/abdul-hamid-achik/ultralite/packages/http"
	"github.com/abdul-hamid-achik/ultralite/packages/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// requestFlags holds the flags of a single get/head invocation
type requestFlags struct {
	headers  []string
	params   []string
	then     []string
	cookies  bool
	raise    bool
	path     string
	schema   string
	output   string
	config   string
	envFile  string
	timeout  string
	insecure bool
	verbose  int // 0=off, 1=-v, 2=-vv
	noColor  bool
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResponse(resp *http.Response)
	FormatError(err error)
	Flush() error
}

func newRequestCmd(method string) *cobra.Command {
	f := &requestFlags{}
	name := strings.ToLower(method)

	cmd := &cobra.Command{
		Use:   name + " <url>",
		Short: fmt.Sprintf("Send a %s request", method),
		Long: fmt.Sprintf(`Send a %[1]s request and print the response.

Examples:
  ultralite %[2]s https://httpbin.org/get -p foo=bar
  ultralite %[2]s https://api.example.com/users -H "Accept: application/json" --raise
  ultralite %[2]s https://example.com/login --cookies --then https://example.com/me`, method, name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, f, method, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&f.headers, "header", "H", nil, `Request header "Key: Value" (repeatable)`)
	flags.StringArrayVarP(&f.params, "param", "p", nil, "Query parameter key=value (repeatable)")
	flags.StringArrayVar(&f.then, "then", nil, "Chain a GET to this URL through the same session (repeatable)")
	flags.BoolVar(&f.cookies, "cookies", false, "Attach an in-memory cookie store")
	flags.BoolVar(&f.raise, "raise", false, "Exit with status 1 on a non-2XX response")
	flags.StringVar(&f.path, "path", "", "Print only the value at this JSON path")
	flags.StringVar(&f.schema, "schema", "", "Validate the response body against this JSON Schema file")
	flags.StringVarP(&f.output, "output", "o", getEnvString(config.EnvPrefix+"OUTPUT", "console"), "Output format: console, json (env: ULTRALITE_OUTPUT)")
	flags.StringVar(&f.config, "config", getEnvString(config.EnvPrefix+"CONFIG", ""), "Path to config file (env: ULTRALITE_CONFIG)")
	flags.StringVar(&f.envFile, "env-file", getEnvString(config.EnvPrefix+"ENV_FILE", ""), "Path to .env file (env: ULTRALITE_ENV_FILE)")
	flags.StringVar(&f.timeout, "timeout", "", "Request timeout (e.g., 30s, 1m)")
	flags.BoolVarP(&f.insecure, "insecure", "k", false, "Disable SSL certificate validation")
	flags.CountVarP(&f.verbose, "verbose", "v", "Verbose output (-v headers and cookies, -vv debug logs)")
	flags.BoolVar(&f.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func newStubCmd(method string) *cobra.Command {
	return &cobra.Command{
		Use:   strings.ToLower(method) + " <url>",
		Short: fmt.Sprintf("%s is not implemented", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := http.NewClient()
			var err error
			switch method {
			case "POST":
				_, err = client.Post(args[0], nil)
			case "PUT":
				_, err = client.Put(args[0], nil)
			default:
				_, err = client.Delete(args[0], nil)
			}
			return withExitCode(ExitUsageError, err)
		},
	}
}

func runRequest(cmd *cobra.Command, f *requestFlags, method, url string) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	headers, err := parseHeaders(f.headers)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	params, err := parseParams(f.params)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	var schema []byte
	if f.schema != "" {
		schema, err = os.ReadFile(f.schema)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("failed to read schema: %w", err))
		}
	}

	logLevel := cfg.LogLevel
	if f.verbose > 1 {
		logLevel = "debug"
	}
	log := logger.New(logLevel, cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	formatter, err := newFormatter(cfg.Output, cmd.OutOrStdout(), f.verbose > 0, cfg.GetNoColor(), f.path)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	client := http.NewClient(clientOptions(cfg, log)...)
	opts := &http.Options{Headers: headers, Params: params}
	if f.cookies {
		jar, err := http.NewCookieStore()
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		opts.Cookies = jar
	}

	// Console errors are reported once, by Execute on stderr
	runErr := exchange(client, formatter, f, method, url, opts, schema)
	if runErr != nil && cfg.Output == "json" {
		formatter.FormatError(runErr)
	}
	if err := formatter.Flush(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// exchange sends the initial request followed by each --then request,
// formatting every response as it arrives
func exchange(client *http.Client, formatter Formatter, f *requestFlags, method, url string, opts *http.Options, schema []byte) error {
	var resp *http.Response
	var err error
	if method == "HEAD" {
		resp, err = client.Head(url, opts)
	} else {
		resp, err = client.Get(url, opts)
	}
	if err != nil {
		return err
	}

	if err := check(formatter, f, resp, schema); err != nil {
		return err
	}

	for _, next := range f.then {
		resp, err = resp.Get(next, &http.ChainOptions{Headers: opts.Headers})
		if err != nil {
			return err
		}
		if err := check(formatter, f, resp, schema); err != nil {
			return err
		}
	}
	return nil
}

func check(formatter Formatter, f *requestFlags, resp *http.Response, schema []byte) error {
	formatter.FormatResponse(resp)

	if failure, ok := resp.Outcome.(http.TransportError); ok {
		var downErr *http.SecurityDowngradeError
		if errors.As(failure.Err, &downErr) {
			return withExitCode(ExitSecurityError, downErr)
		}
		return withExitCode(ExitNetworkError, fmt.Errorf("request failed: %s", resp.Reason()))
	}
	if f.raise {
		if err := resp.RaiseForStatus(); err != nil {
			return err
		}
	}
	if schema != nil && resp.IsSuccess() {
		if err := resp.ValidateSchema(schema); err != nil {
			return withExitCode(ExitStatusFailure, err)
		}
	}
	return nil
}

// loadConfig resolves config file, environment and flags, in that order
func loadConfig(cmd *cobra.Command, f *requestFlags) (*config.Config, error) {
	if f.envFile != "" {
		if err := config.LoadEnvFile(f.envFile); err != nil {
			return nil, err
		}
	}

	fileConfig, err := config.LoadConfig(f.config)
	if err != nil {
		return nil, err
	}
	cfg, err := fileConfig.ApplyEnv()
	if err != nil {
		return nil, err
	}

	overrides := &config.Config{}
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		timeout, err := time.ParseDuration(f.timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", f.timeout, err)
		}
		overrides.Timeout = int(timeout.Milliseconds())
	}
	if f.insecure {
		overrides.ValidateSSL = config.BoolPtr(false)
	}
	if f.noColor {
		overrides.NoColor = config.BoolPtr(true)
	}
	if flags.Changed("output") {
		overrides.Output = f.output
	}
	return cfg.Merge(overrides), nil
}

func clientOptions(cfg *config.Config, log *zap.Logger) []http.ClientOption {
	opts := []http.ClientOption{
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithDefaultHeaders(cfg.Headers),
		http.WithLogger(log),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, http.WithTimeout(time.Duration(cfg.Timeout)*time.Millisecond))
	}
	if cfg.MaxRedirects > 0 {
		opts = append(opts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, http.WithRateLimit(cfg.RateLimit))
	}
	if cfg.RequestIDHeader != "" {
		opts = append(opts, http.WithRequestID(cfg.RequestIDHeader))
	}
	return opts
}

func newFormatter(format string, w io.Writer, verbose, noColor bool, path string) (Formatter, error) {
	switch format {
	case "", "console":
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(verbose),
			output.WithNoColor(noColor),
			output.WithPath(path),
		), nil
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w), output.JSONWithPath(path)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use console or json)", format)
	}
}

// parseHeaders parses "Key: Value" pairs
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q (use \"Key: Value\")", h)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

// parseParams parses key=value pairs
func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(raw))
	for _, p := range raw {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q (use key=value)", p)
		}
		params[key] = value
	}
	return params, nil
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Headers:         nil,
		LogLevel:        "warn",
		RateLimit:       0,
		RequestIDHeader: "",
		Output:          "console",
		NoColor:         BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Timeout == defaults.Timeout &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		len(c.Headers) == 0 &&
		c.LogLevel == defaults.LogLevel &&
		c.RateLimit == defaults.RateLimit &&
		c.RequestIDHeader == defaults.RequestIDHeader &&
		c.Output == defaults.Output &&
		c.GetNoColor() == defaults.GetNoColor()
}

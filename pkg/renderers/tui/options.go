package tui

// Theme captures optional formatting hints applied to printed lines.
type Theme struct {
	Indent       string
	EditedMarker string
	ReadOnlyMark string
}

var defaultTheme = Theme{
	Indent:       "  ",
	EditedMarker: "*",
	ReadOnlyMark: "(ro)",
}

// Option configures the TUI renderer and editor.
type Option func(*config)

type config struct {
	driver      PromptDriver
	theme       Theme
	rawResponse bool
}

// WithPromptDriver overrides the prompt driver used by the editor.
func WithPromptDriver(driver PromptDriver) Option {
	return func(cfg *config) {
		if driver != nil {
			cfg.driver = driver
		}
	}
}

// WithRawResponse makes the editor offer the response JSON for editing before
// it submits.
func WithRawResponse(enabled bool) Option {
	return func(cfg *config) {
		cfg.rawResponse = enabled
	}
}

// WithTheme applies optional formatting hints. Empty fields keep defaults.
func WithTheme(theme Theme) Option {
	return func(cfg *config) {
		if theme.Indent != "" {
			cfg.theme.Indent = theme.Indent
		}
		if theme.EditedMarker != "" {
			cfg.theme.EditedMarker = theme.EditedMarker
		}
		if theme.ReadOnlyMark != "" {
			cfg.theme.ReadOnlyMark = theme.ReadOnlyMark
		}
	}
}

func newConfig(options []Option) config {
	cfg := config{theme: defaultTheme}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.driver == nil {
		cfg.driver = NewSurveyDriver()
	}
	return cfg
}

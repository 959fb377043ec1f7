package agent

import (
	"io"
	"log"
	"time"

	"mcpchat/internal/middleware"
	"mcpchat/internal/prompt"
)

const (
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.0
)

type Option func(*Agent)

// WithModel sets the model identifier sent with every request.
func WithModel(model string) Option {
	return func(a *Agent) {
		a.model = model
	}
}

// WithTemplate replaces prompt.DefaultTemplate.
func WithTemplate(template string) Option {
	return func(a *Agent) {
		a.template = template
	}
}

// WithMaxTokens caps the first completion of a turn.
func WithMaxTokens(n int) Option {
	return func(a *Agent) {
		a.maxTokens = n
	}
}

// WithTemperature sets the temperature of the first completion of a turn.
func WithTemperature(t float64) Option {
	return func(a *Agent) {
		a.temperature = t
	}
}

// WithCompletionTimeout bounds each completion. Zero waits indefinitely.
func WithCompletionTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.completionTimeout = d
	}
}

// WithToolTimeout bounds each tool invocation. Zero waits indefinitely.
func WithToolTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.toolTimeout = d
	}
}

func WithMiddlewareChain(chain *middleware.Chain) Option {
	return func(a *Agent) {
		a.mws = chain
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.log = l
		}
	}
}

func defaults(a *Agent) {
	a.template = prompt.DefaultTemplate
	a.maxTokens = DefaultMaxTokens
	a.temperature = DefaultTemperature
	a.log = log.New(io.Discard, "", 0)
}

package bridge

import (
	"go.uber.org/zap"

	"github.com/yanet-platform/switchsim/internal/fdb"
)

type options struct {
	Log    *zap.SugaredLogger
	MaxAge uint32
}

func newOptions() *options {
	return &options{
		Log:    zap.NewNop().Sugar(),
		MaxAge: fdb.DefaultMaxAge,
	}
}

// Option is a function that configures the switch.
type Option func(*options)

// WithLog sets the logger for the switch.
func WithLog(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.Log = log
	}
}

// WithMaxAge sets the number of forwarding steps after which an unseen
// address is evicted. Zero keeps the default.
func WithMaxAge(maxAge uint32) Option {
	return func(o *options) {
		if maxAge > 0 {
			o.MaxAge = maxAge
		}
	}
}

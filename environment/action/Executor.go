package action

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrBusy is returned by an Executor which is still carrying out a
// previous action
var ErrBusy = errors.New("executor busy")

// Executor carries out actions, for example by probing hosts on the
// network. Executors are opaque to the learning agent; only the
// outcome of an action is used to shape the reward.
type Executor interface {
	Execute(ctx context.Context, a Action) error
}

// ExecutorFunc adapts a function to the Executor interface
type ExecutorFunc func(ctx context.Context, a Action) error

// Execute calls f(ctx, a)
func (f ExecutorFunc) Execute(ctx context.Context, a Action) error {
	return f(ctx, a)
}

// LogExecutor is an Executor which only logs the actions it is given
type LogExecutor struct {
	logger logrus.FieldLogger
}

// NewLogExecutor returns a new LogExecutor
func NewLogExecutor(logger logrus.FieldLogger) *LogExecutor {
	return &LogExecutor{logger}
}

// Execute logs the action
func (l *LogExecutor) Execute(ctx context.Context, a Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.logger.WithField("action", a).Debug("executing action")
	return nil
}

package tripo

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/logger"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

// PollState is exposed for testing and metrics instead of being inferred
// from log lines.
type PollState string

const (
	PollStateNotStarted PollState = "not_started"
	PollStatePolling    PollState = "polling"
	PollStateSucceeded  PollState = "succeeded"
	PollStateFailed     PollState = "failed"
	PollStateTimedOut   PollState = "timed_out"
	PollStateCanceled   PollState = "canceled"
)

// StatusClient is what the poller needs from the task adaptor.
type StatusClient interface {
	GetTaskStatus(ctx context.Context, taskId string) (*relaymodel.GenerationTask, *relaymodel.ErrorWithStatusCode)
}

type PollerOptions struct {
	Interval    time.Duration
	MaxAttempts int
	// Transient 5xx/transport errors are retried within the same attempt
	// after TransientDelay, up to TransientRetries times. That isolates a
	// server hiccup from a failed task.
	TransientRetries int
	TransientDelay   time.Duration
	// OnProgress fires only when the observed progress differs from the
	// previous observation, not on every tick.
	OnProgress func(progress int)
}

// Poller drives a task to a terminal state on a fixed interval with a
// bounded attempt count. Wall clock ceiling is MaxAttempts * Interval.
type Poller struct {
	client StatusClient
	opts   PollerOptions

	mu    sync.Mutex
	state PollState
}

func NewPoller(client StatusClient, opts PollerOptions) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = config.PollInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = config.PollMaxAttempts
	}
	if opts.TransientRetries <= 0 {
		opts.TransientRetries = config.PollTransientRetries
	}
	if opts.TransientDelay <= 0 {
		opts.TransientDelay = config.PollTransientDelay
	}
	return &Poller{
		client: client,
		opts:   opts,
		state:  PollStateNotStarted,
	}
}

func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) setState(s PollState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run polls until the task reaches a terminal state, the attempt budget runs
// out, or ctx is canceled. Timeout is reported as its own error kind,
// distinct from upstream task failure. No timer survives Run returning.
func (p *Poller) Run(ctx context.Context, taskId string) (*relaymodel.GenerationTask, *relaymodel.ErrorWithStatusCode) {
	p.setState(PollStatePolling)
	lastProgress := -1

	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		task, errw := p.observe(ctx, taskId)
		if errw != nil {
			if errw.Type == relaymodel.ErrTypeCanceled {
				p.setState(PollStateCanceled)
			} else {
				p.setState(PollStateFailed)
			}
			return nil, errw
		}

		if task.Progress != lastProgress {
			lastProgress = task.Progress
			if p.opts.OnProgress != nil {
				p.opts.OnProgress(task.Progress)
			}
		}

		switch task.Status {
		case relaymodel.TaskStatusSuccess:
			p.setState(PollStateSucceeded)
			return task, nil
		case relaymodel.TaskStatusFailed:
			p.setState(PollStateFailed)
			return task, relaymodel.NewError(http.StatusBadGateway, relaymodel.ErrTypeUpstream,
				fmt.Sprintf("generation task %s failed upstream", taskId))
		}

		if attempt == p.opts.MaxAttempts {
			break
		}
		if !sleepCtx(ctx, p.opts.Interval) {
			p.setState(PollStateCanceled)
			return nil, canceledError()
		}
	}

	p.setState(PollStateTimedOut)
	return nil, relaymodel.NewError(http.StatusGatewayTimeout, relaymodel.ErrTypeTimeout,
		fmt.Sprintf("generation task %s did not finish within %d polls", taskId, p.opts.MaxAttempts))
}

// observe reads the status once, short-retrying transport/5xx hiccups
// within the attempt. When the retry budget is exhausted it degrades to a
// synthetic running status rather than failing the whole poll.
func (p *Poller) observe(ctx context.Context, taskId string) (*relaymodel.GenerationTask, *relaymodel.ErrorWithStatusCode) {
	for retry := 0; ; retry++ {
		task, errw := p.client.GetTaskStatus(ctx, taskId)
		if errw == nil {
			return task, nil
		}
		if errw.Type != relaymodel.ErrTypeTransport && errw.Type != relaymodel.ErrTypeUpstream {
			return nil, errw
		}
		if retry >= p.opts.TransientRetries {
			logger.Warnf(ctx, "transient retry budget exhausted for task %s, degrading to synthetic progress", taskId)
			return SyntheticRunningTask(taskId), nil
		}
		if !sleepCtx(ctx, p.opts.TransientDelay) {
			return nil, canceledError()
		}
	}
}

// sleepCtx waits d and reports false when ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func canceledError() *relaymodel.ErrorWithStatusCode {
	return relaymodel.NewError(499, relaymodel.ErrTypeCanceled, "polling abandoned by caller")
}

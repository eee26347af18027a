// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package moby

import (
	"context"
	"fmt"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

// LogKind tells the origin of a LogEvent.
type LogKind int

const (
	StdOut LogKind = iota // container stdout output
	StdErr                // container stderr output
	Error                 // log streaming failed
	EOF                   // log stream ended
)

// LogEvent is a chunk of container log output, or a log stream status.
type LogEvent struct {
	Kind    LogKind
	Message string
}

// LogOptions controls which container logs to retrieve.
type LogOptions struct {
	Tail       int  // number of lines from the end; zero or less means all.
	Follow     bool // keep streaming new log output.
	Timestamps bool
}

// Logs streams the logs of the referenced container to fn, ending with either
// an Error or an EOF event. When following the logs, Logs returns only after
// the container terminated or the context got cancelled.
func (e *Engine) Logs(ctx context.Context, ref string, opts LogOptions, fn func(LogEvent)) error {
	tail := "all"
	if opts.Tail > 0 {
		tail = strconv.Itoa(opts.Tail)
	}
	rc, err := e.client.ContainerLogs(ctx, ref, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: opts.Timestamps,
		Follow:     opts.Follow,
		Tail:       tail,
	})
	if err != nil {
		err = wrap(err, "retrieve logs of container %s", ref)
		fn(LogEvent{Kind: Error, Message: err.Error()})
		return err
	}
	defer rc.Close()
	_, err = stdcopy.StdCopy(
		&logWriter{kind: StdOut, fn: fn},
		&logWriter{kind: StdErr, fn: fn},
		rc)
	if err != nil && ctx.Err() == nil {
		err = fmt.Errorf("cannot stream logs of container %s, reason: %w", ref, err)
		fn(LogEvent{Kind: Error, Message: err.Error()})
		return err
	}
	fn(LogEvent{Kind: EOF})
	return nil
}

// logWriter turns demultiplexed log output into LogEvents.
type logWriter struct {
	kind LogKind
	fn   func(LogEvent)
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.fn(LogEvent{Kind: w.kind, Message: string(p)})
	return len(p), nil
}

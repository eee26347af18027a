// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package ldbengine

import (
	"context"
	"time"
)

// settle waits for the specified duration to give an engine the chance to
// reach a stable container state after an asynchronous operation, such as a
// restart. It returns early with the context's error when the context gets
// cancelled.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	// time.After is kind of hard to use without small leaks, so let's do it
	// properly.
	wecker := time.NewTimer(d)
	select {
	case <-wecker.C:
		return nil
	case <-ctx.Done():
		if !wecker.Stop() { // drain the timer, if necessary.
			<-wecker.C
		}
		return ctx.Err()
	}
}

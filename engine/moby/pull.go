// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package moby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/jsonmessage"
)

// PullProgress reports the progress of an image pull, either for the pull as
// a whole or for an individual layer (identified by ID).
type PullProgress struct {
	ID      string // layer ID, if any.
	Status  string // such as "Downloading", "Pull complete", ...
	Current int64
	Total   int64
}

// Pull pulls the referenced image, reporting progress to the optional
// progress callback. Pull returns when the pull has finished, failed, or the
// context was cancelled.
func (e *Engine) Pull(ctx context.Context, ref string, progress func(PullProgress)) error {
	rc, err := e.client.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return wrap(err, "pull image %s", ref)
	}
	defer rc.Close()
	dec := json.NewDecoder(rc)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctxerr := ctx.Err(); ctxerr != nil {
				return fmt.Errorf("pulling image %s cancelled, reason: %w", ref, ctxerr)
			}
			return fmt.Errorf("cannot decode pull progress of image %s, reason: %w", ref, err)
		}
		if msg.Error != nil {
			return fmt.Errorf("cannot pull image %s, reason: %w", ref, msg.Error)
		}
		if progress == nil {
			continue
		}
		p := PullProgress{ID: msg.ID, Status: msg.Status}
		if msg.Progress != nil {
			p.Current = msg.Progress.Current
			p.Total = msg.Progress.Total
		}
		progress(p)
	}
}

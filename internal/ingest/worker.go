// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardinalhq/seriesingest/internal/logctx"
	"github.com/cardinalhq/seriesingest/internal/series"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

type request struct {
	kind  seriestype.Kind
	files []string
	stop  bool
}

// worker validates the shards it is sent. It owns its validators and talks
// to the coordinator only through its request and reply channels.
type worker struct {
	id         int
	validators map[seriestype.Kind]*series.Validator
	requests   chan request
	replies    chan shardResult
}

func newWorker(id int, types map[seriestype.Kind]seriestype.Config) *worker {
	validators := make(map[seriestype.Kind]*series.Validator, len(types))
	for kind, st := range types {
		validators[kind] = series.NewValidator(st)
	}
	return &worker{
		id:         id,
		validators: validators,
		requests:   make(chan request, 1),
		replies:    make(chan shardResult, 1),
	}
}

func (w *worker) name() string {
	return fmt.Sprintf("worker-%d", w.id)
}

// run serves requests until a stop request arrives or the request channel
// is closed. The reply channel is closed on return.
func (w *worker) run(ctx context.Context) error {
	defer close(w.replies)

	ctx, ll := logctx.With(ctx, slog.String("task", w.name()))
	ll.Debug("Worker started")

	for req := range w.requests {
		if req.stop {
			break
		}
		v, ok := w.validators[req.kind]
		if !ok {
			ll.Error("No validator for series type", slog.String("seriesType", req.kind.String()))
			w.replies <- shardResult{Failed: len(req.files)}
			continue
		}
		ll.Debug("Processing shard", slog.Int("files", len(req.files)))
		w.replies <- processFiles(ctx, v, req.files, 0)
	}

	ll.Debug("Worker stopped")
	return nil
}

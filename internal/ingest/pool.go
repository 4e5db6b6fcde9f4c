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
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/seriesingest/internal/logctx"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// pool is a fixed set of workers created once and reused across runs.
// Dispatch is not safe for concurrent use; the coordinator serializes runs.
type pool struct {
	workers []*worker
	alive   []bool
	g       errgroup.Group

	closeOnce sync.Once
	closeErr  error
}

// poolSize caps the number of execution units by limit when limit is positive.
func poolSize(limit, procs int) int {
	if limit > 0 && limit < procs {
		return limit
	}
	return max(procs, 1)
}

// newPool starts size workers. They outlive ctx cancellation and stop only
// when the pool is closed.
func newPool(ctx context.Context, size int, types map[seriestype.Kind]seriestype.Config) *pool {
	ctx = context.WithoutCancel(ctx)
	p := &pool{
		workers: make([]*worker, size),
		alive:   make([]bool, size),
	}
	for i := range size {
		w := newWorker(i, types)
		p.workers[i] = w
		p.alive[i] = true
		p.g.Go(func() error {
			if err := w.run(ctx); err != nil {
				return fmt.Errorf("%s failed: %w", w.name(), err)
			}
			return nil
		})
	}
	return p
}

func (p *pool) size() int {
	return len(p.workers)
}

// dispatch splits files across the live workers, then waits for every reply
// in pool order. A worker that went away without replying has its whole
// shard counted as failed.
func (p *pool) dispatch(ctx context.Context, kind seriestype.Kind, files []string) shardResult {
	ll := logctx.FromContext(ctx)

	var live []int
	for i, ok := range p.alive {
		if ok {
			live = append(live, i)
		}
	}
	if len(live) == 0 {
		ll.Error("No worker available, the series are left in place", slog.Int("files", len(files)))
		return shardResult{Failed: len(files)}
	}

	shards := splitEvenly(files, len(live))
	for j, idx := range live {
		if len(shards[j]) == 0 {
			continue
		}
		p.workers[idx].requests <- request{kind: kind, files: shards[j]}
	}

	var total shardResult
	for j, idx := range live {
		if len(shards[j]) == 0 {
			continue
		}
		res, ok := <-p.workers[idx].replies
		if !ok {
			ll.Error("Worker exited without replying", slog.String("task", p.workers[idx].name()),
				slog.Int("files", len(shards[j])))
			p.alive[idx] = false
			total.Failed += len(shards[j])
			continue
		}
		total.merge(res)
	}
	return total
}

// close stops every worker and waits for them to return. Only the first
// call has an effect.
func (p *pool) close() error {
	p.closeOnce.Do(func() {
		for i, w := range p.workers {
			if p.alive[i] {
				w.requests <- request{stop: true}
			}
			close(w.requests)
		}
		p.closeErr = p.g.Wait()
	})
	return p.closeErr
}

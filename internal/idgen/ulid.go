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

// Package idgen makes the identifiers carried by logs and telemetry.
package idgen

import (
	crand "crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RunIDGenerator makes ULIDs that sort in creation order, even within the
// same millisecond.
type RunIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewRunIDGenerator() *RunIDGenerator {
	return &RunIDGenerator{
		entropy: ulid.Monotonic(crand.Reader, 0),
	}
}

func (g *RunIDGenerator) Make(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

var runIDs = NewRunIDGenerator()

// NewRunID identifies one ingestion run.
func NewRunID() string {
	return runIDs.Make(time.Now())
}

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
	"errors"

	"github.com/cardinalhq/seriesingest/internal/outputstore"
)

var (
	// ErrHeaderMismatch is returned at construction when an output store
	// does not start with the canonical header.
	ErrHeaderMismatch = outputstore.ErrHeaderMismatch

	// ErrWrongResourceKind is returned at construction when a required
	// directory exists as a file or a required file exists as a directory.
	ErrWrongResourceKind = errors.New("resource exists with the wrong kind")

	// ErrInvalidMaxSeries is returned by a run given a max series override
	// that is not a positive integer.
	ErrInvalidMaxSeries = errors.New("max series must be a positive integer")

	ErrClosed = errors.New("coordinator is closed")
)

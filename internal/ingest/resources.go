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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/cardinalhq/seriesingest/internal/logctx"
	"github.com/cardinalhq/seriesingest/internal/outputstore"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// ResourceValidator makes sure every directory and output store a set of
// series kinds depends on exists with the right shape. Missing resources are
// created; resources that cannot be repaired are reported as errors.
type ResourceValidator struct {
	types []seriestype.Config
}

func NewResourceValidator(types ...seriestype.Config) *ResourceValidator {
	return &ResourceValidator{types: types}
}

// Validate checks every resource and returns all unrecoverable problems at once.
func (rv *ResourceValidator) Validate(ctx context.Context) error {
	ll := logctx.FromContext(ctx)

	var errs *multierror.Error
	for _, st := range rv.types {
		tll := ll.With(slog.String("seriesType", st.Kind.String()))

		if err := ensureDir(tll, st.InputDir); err != nil {
			errs = multierror.Append(errs, err)
		}
		if err := ensureStore(tll, outputstore.ForSeries(st)); err != nil {
			errs = multierror.Append(errs, err)
		}
		if st.Quarantines() {
			if err := ensureDir(tll, st.MalformedDir); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}
	return errs.ErrorOrNil()
}

func ensureDir(ll *slog.Logger, path string) error {
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, err)
		}
		ll.Info("Created missing directory", slog.String("path", path))
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat %s: %w", path, err)
	case !fi.IsDir():
		return fmt.Errorf("%w: %s should be a directory", ErrWrongResourceKind, path)
	}
	return nil
}

func ensureStore(ll *slog.Logger, store *outputstore.Store) error {
	path := store.Path()
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := store.WriteHeader(); err != nil {
			return fmt.Errorf("failed to create output store %s: %w", path, err)
		}
		ll.Info("Created missing output store", slog.String("path", path))
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat %s: %w", path, err)
	case fi.IsDir():
		return fmt.Errorf("%w: %s should be a file", ErrWrongResourceKind, path)
	case fi.Size() == 0:
		if err := store.WriteHeader(); err != nil {
			return fmt.Errorf("failed to write header of output store %s: %w", path, err)
		}
		ll.Warn("The output store was empty, the header has been written", slog.String("path", path))
		return nil
	}

	if err := store.CheckHeader(); err != nil {
		ll.Error("The output store header does not match the configured schema", slog.Any("error", err))
		return err
	}
	return nil
}

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

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cardinalhq/oteltools/pkg/telemetry"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/instrumentation/host"
	iruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/cardinalhq/seriesingest/config"
	"github.com/cardinalhq/seriesingest/internal/idgen"
)

// setupTelemetry installs the default logger described by lc and, when OTLP
// export is enabled through the environment, the OpenTelemetry SDK. The
// returned context is cancelled on SIGINT or SIGTERM; the returned function
// flushes and releases everything that was set up.
func setupTelemetry(servicename string, lc config.LoggingConfig) (context.Context, func() error, error) {
	// Catch signals to stop the process as gracefully as possible.
	doneCtx, doneCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	consoleLevel, err := config.ParseLevel(lc.ConsoleLevel)
	if err != nil {
		doneCancel()
		return doneCtx, nil, fmt.Errorf("invalid console log level: %w", err)
	}
	if os.Getenv("DEBUG") != "" || os.Getenv(config.EnvPrefix+"_DEBUG") != "" {
		consoleLevel = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: consoleLevel}),
	}

	var logFile io.Closer
	if lc.ToFile {
		fileLevel, err := config.ParseLevel(lc.FileLevel)
		if err != nil {
			doneCancel()
			return doneCtx, nil, fmt.Errorf("invalid file log level: %w", err)
		}
		f, err := openLogFile(lc)
		if err != nil {
			doneCancel()
			return doneCtx, nil, err
		}
		logFile = f
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: fileLevel}))
	}

	otlp := os.Getenv("OTEL_SERVICE_NAME") != "" && os.Getenv("ENABLE_OTLP_TELEMETRY") == "true"
	if otlp {
		handlers = append(handlers, otelslog.NewHandler(servicename))
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)).With(
		slog.String("service", servicename),
		slog.String("instanceID", idgen.InstanceID()),
	))

	shutdown := func(context.Context) error { return nil }
	if otlp {
		slog.Info("OpenTelemetry exporting enabled")
		otelShutdown, err := telemetry.SetupOTelSDK(doneCtx)
		if err != nil {
			doneCancel()
			return doneCtx, nil, fmt.Errorf("failed to setup OpenTelemetry SDK: %w", err)
		}

		if err := iruntime.Start(iruntime.WithMinimumReadMemStatsInterval(time.Second * 10)); err != nil {
			slog.Warn("failed to start runtime metrics", "error", err.Error())
		}

		if err := host.Start(); err != nil {
			slog.Warn("failed to start host metrics", "error", err.Error())
		}

		shutdown = func(ctx context.Context) error {
			slog.Info("Shutting down OpenTelemetry SDK")
			return otelShutdown(ctx)
		}
	}

	f := func() error {
		defer doneCancel()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := shutdown(ctx)
		if logFile != nil {
			if cerr := logFile.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		return err
	}

	return doneCtx, f, nil
}

func openLogFile(lc config.LoggingConfig) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(lc.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if lc.FileMode == config.FileModeTruncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(lc.FilePath, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Copyright 2026 The Flowstone Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package context

import (
	stdcontext "context"
	"errors"
	"testing"
	"time"

	"github.com/flowstone/engine/clock"
)

type recordingLogger struct {
	NoOpLogger
	infos []string
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.infos = append(l.infos, msg)
}

type recordingRecorder struct {
	errs []error
}

func (r *recordingRecorder) RecordError(err error, metadata map[string]interface{}) {
	r.errs = append(r.errs, err)
}

func TestNewExecutionContext_Defaults(t *testing.T) {
	ec := NewExecutionContext(nil, nil) //nolint:staticcheck // nil context is normalized

	if ec.Context == nil {
		t.Error("Context should default to background")
	}
	if ec.Clock == nil {
		t.Error("Clock should default to real time")
	}
	if _, ok := ec.Logger.(*NoOpLogger); !ok {
		t.Errorf("expected NoOpLogger, got %T", ec.Logger)
	}
	if _, ok := ec.Metrics.(*NoOpMetrics); !ok {
		t.Errorf("expected NoOpMetrics, got %T", ec.Metrics)
	}
	if _, ok := ec.Tracer.(*NoOpTracer); !ok {
		t.Errorf("expected NoOpTracer, got %T", ec.Tracer)
	}
	if _, ok := ec.ErrorRecorder.(*NoOpErrorRecorder); !ok {
		t.Errorf("expected NoOpErrorRecorder, got %T", ec.ErrorRecorder)
	}

	// NoOps must be callable
	span := ec.Tracer.StartSpan("noop")
	span.SetAttribute("k", 1)
	span.RecordError(errors.New("x"))
	span.End()
	ec.Metrics.Inc("noop")
	ec.Logger.Info("noop", nil)
	ec.ErrorRecorder.RecordError(errors.New("x"), nil)
}

func TestExecutionContext_WithMethodsCopy(t *testing.T) {
	base := NewExecutionContext(stdcontext.Background(), clock.NewRealTimeClock())
	logger := &recordingLogger{}

	withLogger := base.WithLogger(logger)
	if withLogger == base {
		t.Fatal("WithLogger should return a copy")
	}
	if _, ok := base.Logger.(*NoOpLogger); !ok {
		t.Error("WithLogger must not modify the original")
	}
	withLogger.Logger.Info("hello", nil)
	if len(logger.infos) != 1 {
		t.Errorf("expected 1 info record, got %d", len(logger.infos))
	}

	t.Run("nil resets to noop", func(t *testing.T) {
		ec := withLogger.WithLogger(nil)
		if _, ok := ec.Logger.(*NoOpLogger); !ok {
			t.Errorf("expected NoOpLogger after nil, got %T", ec.Logger)
		}
	})

	t.Run("context", func(t *testing.T) {
		type key struct{}
		goCtx := stdcontext.WithValue(stdcontext.Background(), key{}, "v")
		ec := base.WithContext(goCtx)
		if ec.Context.Value(key{}) != "v" {
			t.Error("WithContext did not bind the context")
		}
		if ec.Logger != base.Logger {
			t.Error("WithContext should keep observability")
		}
	})

	t.Run("clock", func(t *testing.T) {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		ec := base.WithClock(clock.NewVirtualClock(start))
		if !ec.Clock.Now().Equal(start) {
			t.Errorf("expected virtual clock time %v, got %v", start, ec.Clock.Now())
		}
	})
}

func TestExecutionContextBuilder(t *testing.T) {
	recorder := &recordingRecorder{}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	ec := NewExecutionContextBuilder().
		WithClock(clock.NewVirtualClock(start)).
		WithErrorRecorder(recorder).
		Build()

	if !ec.Clock.Now().Equal(start) {
		t.Errorf("expected %v, got %v", start, ec.Clock.Now())
	}
	ec.ErrorRecorder.RecordError(errors.New("boom"), nil)
	if len(recorder.errs) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(recorder.errs))
	}
	if _, ok := ec.Metrics.(*NoOpMetrics); !ok {
		t.Errorf("unset metrics should be NoOp, got %T", ec.Metrics)
	}

	clone := ec.Clone().WithLogger(&recordingLogger{}).Build()
	if clone.ErrorRecorder != ec.ErrorRecorder {
		t.Error("Clone should carry the error recorder")
	}
	if _, ok := clone.Logger.(*recordingLogger); !ok {
		t.Errorf("expected recordingLogger, got %T", clone.Logger)
	}
}

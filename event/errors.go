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

package event

import (
	"errors"
	"fmt"
)

// ErrHookFailed is matched by every HookError.
var ErrHookFailed = errors.New("event: hook failed")

// HookError wraps a failure returned or raised by one subscriber.
type HookError struct {
	Point      HookPoint
	Subscriber string
	Err        error
}

// Error implements error.
func (e *HookError) Error() string {
	return fmt.Sprintf("event: %s hook %s failed: %v", e.Point, e.Subscriber, e.Err)
}

// Unwrap returns the subscriber's error.
func (e *HookError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrHookFailed) true.
func (e *HookError) Is(target error) bool {
	return target == ErrHookFailed
}

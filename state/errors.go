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

package state

import (
	"errors"
	"fmt"
)

// ErrInsufficientTokens is matched by every InsufficientTokensError.
var ErrInsufficientTokens = errors.New("state: insufficient tokens")

// InsufficientTokensError is returned by Marking.Apply when a from place
// does not hold the token the transition needs to consume.
type InsufficientTokensError struct {
	Transition string
	Place      string
	Have       int
}

// Error implements error.
func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("state: transition %q needs a token in %q, have %d", e.Transition, e.Place, e.Have)
}

// Is makes errors.Is(err, ErrInsufficientTokens) true.
func (e *InsufficientTokensError) Is(target error) bool {
	return target == ErrInsufficientTokens
}

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

package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTransition is returned when a transition name is not
	// declared in the subject's definition.
	ErrUnknownTransition = errors.New("engine: unknown transition")

	// ErrTransitionNotEnabled is matched by *TransitionNotEnabledError.
	ErrTransitionNotEnabled = errors.New("engine: transition not enabled")

	// ErrUnauthorizedTransition is matched by *UnauthorizedTransitionError.
	ErrUnauthorizedTransition = errors.New("engine: unauthorized transition")

	// ErrTransitionBlocked is matched by *TransitionBlockedError.
	ErrTransitionBlocked = errors.New("engine: transition blocked")

	// ErrUnsupportedSubject is returned when the resolved definition does
	// not list the subject's type in supports.
	ErrUnsupportedSubject = errors.New("engine: subject type not supported")

	// ErrNoRecordStore is returned on commit when the engine has no
	// RecordStore and the subject does not implement state.HasMarking.
	ErrNoRecordStore = errors.New("engine: nowhere to commit marking")
)

// TransitionNotEnabledError reports that the current marking does not hold
// the tokens the transition consumes.
type TransitionNotEnabledError struct {
	Workflow   string
	Transition string
	Marking    string
}

// Error implements error.
func (e *TransitionNotEnabledError) Error() string {
	return fmt.Sprintf("engine: transition %q is not enabled in %q for marking %s", e.Transition, e.Workflow, e.Marking)
}

// Is makes errors.Is(err, ErrTransitionNotEnabled) true.
func (e *TransitionNotEnabledError) Is(target error) bool {
	return target == ErrTransitionNotEnabled
}

// UnauthorizedTransitionError reports that the caller holds none of the
// roles the transition requires.
type UnauthorizedTransitionError struct {
	Workflow   string
	Transition string
	Required   []string
	Roles      []string
}

// Error implements error.
func (e *UnauthorizedTransitionError) Error() string {
	return fmt.Sprintf("engine: transition %q in %q requires one of [%s], caller has [%s]",
		e.Transition, e.Workflow, strings.Join(e.Required, ", "), strings.Join(e.Roles, ", "))
}

// Is makes errors.Is(err, ErrUnauthorizedTransition) true.
func (e *UnauthorizedTransitionError) Is(target error) bool {
	return target == ErrUnauthorizedTransition
}

// TransitionBlockedError reports a guard veto. Reasons holds the messages
// given by the vetoing guard.
type TransitionBlockedError struct {
	Workflow   string
	Transition string
	Reasons    []string
}

// Error implements error.
func (e *TransitionBlockedError) Error() string {
	return fmt.Sprintf("engine: transition %q in %q blocked: %s", e.Transition, e.Workflow, strings.Join(e.Reasons, "; "))
}

// Is makes errors.Is(err, ErrTransitionBlocked) true.
func (e *TransitionBlockedError) Is(target error) bool {
	return target == ErrTransitionBlocked
}

// IsDenial reports whether err is an expected refusal to apply a
// transition, as opposed to a failure.
func IsDenial(err error) bool {
	return errors.Is(err, ErrTransitionNotEnabled) ||
		errors.Is(err, ErrUnauthorizedTransition) ||
		errors.Is(err, ErrTransitionBlocked)
}

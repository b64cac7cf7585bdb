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

// Package clock supplies the engine's notion of now.
//
// Two readers depend on it. The definition cache stamps each compiled
// definition with an expiry of now plus Config.TTL, and the executor stamps
// every hook event with Event.Timestamp from the ExecutionContext's Clock.
// Tests hand both a VirtualClock and step time by hand:
//
//	clk := clock.NewVirtualClock(start)
//	defs := cache.New(loader, clk, cache.Config{TTL: time.Minute})
//	clk.AdvanceBy(2 * time.Minute) // the next defs.Get recompiles
package clock

import "time"

// Clock reports the current time to the cache and the executor. It is read
// from concurrent Apply calls, so implementations must be goroutine safe.
type Clock interface {
	Now() time.Time
}

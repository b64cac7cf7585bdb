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

package config

import (
	"context"

	"github.com/flowstone/engine/cache"
	"github.com/flowstone/engine/petri"
)

// Loader serves definitions from an already parsed file. defaultKey is the
// engine's default workflow key.
func Loader(f *File, defaultKey string) cache.Loader {
	return cache.LoaderFunc(func(ctx context.Context, subjectType, workflowKey string) (*petri.Definition, error) {
		w, err := f.Resolve(subjectType, workflowKey, defaultKey)
		if err != nil {
			return nil, err
		}
		return w.Compile()
	})
}

// FileLoader re-reads path on every load, so a cache in debug mode picks up
// edits without a restart.
func FileLoader(path, defaultKey string) cache.Loader {
	return cache.LoaderFunc(func(ctx context.Context, subjectType, workflowKey string) (*petri.Definition, error) {
		f, err := Load(path)
		if err != nil {
			return nil, err
		}
		return Loader(f, defaultKey).Load(ctx, subjectType, workflowKey)
	})
}

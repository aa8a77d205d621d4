// Copyright 2025 Poiesic Systems
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

// Package storage defines the lookup result cache used by the sources.
//
// The cache keeps serialized []core.LookupResult values under opaque
// string keys with a time to live. Values are encoded with mus-go; see
// MarshalResults.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the ResultCache
// interface rather than a concrete type:
//
//	cache, err := badger.NewMemoryResultCache()  // returns storage.ResultCache
//
// # Thread Safety
//
// Implementations must be safe for concurrent use by multiple goroutines.
package storage

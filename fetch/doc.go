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


// Package fetch is the HTTP layer shared by the remote lookup sources.
//
// A Client adds a user agent, a per-request timeout, a body size limit
// and retries with exponential backoff on network errors and 5xx
// responses. Failures are reported in terms of the core error kinds:
//
//   - transport errors and unexpected statuses wrap core.ErrSourceUnavailable
//   - 404 responses wrap core.ErrNotFound
//   - undecodable bodies wrap core.ErrParseFailure
//
// Sources that need to observe redirects, such as a dictionary whose
// search page redirects straight to a single entry, create the client
// with WithoutRedirects and read Response.Location.
package fetch

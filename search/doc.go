// Copyright 2026 Civita Labs
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


// Package search answers case queries in three modes:
//
//   - exact_key: direct lookup by entry key; a miss is a zero-hit result
//     with a not_found flag, never an error
//   - semantic: embed the query, nearest-neighbour search over the chunk
//     index, deduplicate per case, re-hydrate against the live store
//   - hybrid: semantic search with over-fetch, then exact structured
//     filtering, then truncation
//
// A companion operation mines lightweight completion suggestions for
// partial queries from top semantic hits.
package search

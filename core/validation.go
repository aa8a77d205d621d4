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


package core

import "fmt"

// ValidateLookupResult validates a LookupResult according to domain rules.
//
// Validation rules:
//   - Headword must not be empty
//   - Source must not be empty
//
// Every other field is optional.
func ValidateLookupResult(result *LookupResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidResult)
	}

	if result.Headword == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResult, ErrEmptyHeadword)
	}

	if result.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResult, ErrEmptySource)
	}

	return nil
}

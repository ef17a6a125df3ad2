// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbgone

// CachedSignatures returns the number of signatures memoized by s.
func (s *Schema) CachedSignatures() int {
	return s.cache.len()
}

// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbgone

import (
	"sync"
)

// signatureCache stores the signatures inferred against one Schema, indexed
// by statement text. Inference is a pure function of the schema and the
// statement, so a cached signature is always valid for its Schema.
//
// The cache hands out copies. Callers may modify the signatures they get
// without affecting later lookups.
//
// The mutex must be locked when accessing sigs.
type signatureCache struct {
	sigs  map[string]*Signature
	mutex sync.RWMutex
}

func newSignatureCache() *signatureCache {
	return &signatureCache{sigs: map[string]*Signature{}}
}

// lookup returns a copy of the signature cached for query.
func (sc *signatureCache) lookup(query string) (*Signature, bool) {
	sc.mutex.RLock()
	sig, ok := sc.sigs[query]
	sc.mutex.RUnlock()
	if !ok {
		return nil, false
	}
	return sig.clone(), true
}

// store caches sig under its SQL and returns a copy of it. If a signature
// has been stored for the same SQL in the meantime, that one is kept.
func (sc *signatureCache) store(sig *Signature) *Signature {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	if existing, ok := sc.sigs[sig.SQL]; ok {
		return existing.clone()
	}
	sc.sigs[sig.SQL] = sig
	return sig.clone()
}

// len returns the number of cached signatures.
func (sc *signatureCache) len() int {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return len(sc.sigs)
}

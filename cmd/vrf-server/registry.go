//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package main

import (
	"github.com/google/uuid"
	metrics "github.com/hashicorp/go-metrics"
	lru "github.com/hashicorp/golang-lru/v2"
)

func countRegistryHit(typ string, hit bool) {
	lbls := []metrics.Label{{Name: "type", Value: typ}}
	var name []string
	if hit {
		name = []string{"registry", "hit"}
	} else {
		name = []string{"registry", "miss"}
	}
	metrics.IncrCounterWithLabels(name, 1, lbls)
}

// registry holds live protocol objects behind unguessable handles.
// Capacity is bounded: the least recently used entry is evicted once
// the registry is full.
type registry[T any] struct {
	name  string
	cache *lru.Cache[string, T]
}

func newRegistry[T any](name string, size int) *registry[T] {
	cache, err := lru.New[string, T](size)
	if err != nil {
		panic(err)
	}
	return &registry[T]{name: name, cache: cache}
}

// add stores val and returns its freshly minted handle.
func (r *registry[T]) add(val T) string {
	handle := uuid.NewString()
	r.cache.Add(handle, val)
	metrics.SetGaugeWithLabels([]string{"registry", "size"}, float32(r.cache.Len()), []metrics.Label{{Name: "type", Value: r.name}})
	return handle
}

// get looks up a handle, refreshing its recency.
func (r *registry[T]) get(handle string) (T, bool) {
	val, ok := r.cache.Get(handle)
	countRegistryHit(r.name, ok)
	return val, ok
}

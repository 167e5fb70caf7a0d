// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/cache"
	"github.com/vidra-media/vidra/internal/models"
)

// Enricher derives a full metadata record from a filename, resolving
// the external identity for movie and series files and caching results
// keyed by filename.
type Enricher struct {
	resolver Resolver
	cache    *cache.Cache[string, *EnrichedInfo]
	ttl      time.Duration
}

func NewEnricher(resolver Resolver, c *cache.Cache[string, *EnrichedInfo], ttl time.Duration) *Enricher {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Enricher{
		resolver: resolver,
		cache:    c,
		ttl:      ttl,
	}
}

// Enrich never fails: a filename both parsers reject still produces a
// record with the raw name as title and an unknown kind, and resolver
// outages degrade to a nil identity.
func (e *Enricher) Enrich(ctx context.Context, fileName string, size int64) *EnrichedInfo {
	if cached, ok := e.cache.Get(fileName, e.ttl); ok {
		return cached
	}

	structural := Merge(fileName, Classify(fileName), Parse(fileName))

	info := &EnrichedInfo{
		FileName:   fileName,
		Size:       size,
		Structural: structural,
	}

	if interesting(structural.Kind) && e.resolver != nil {
		identity, err := e.resolver.Resolve(ctx, structural.Title, structural.Year, structural.Kind)
		if err != nil {
			log.Warn().Err(err).Str("file", fileName).Msg("metadata: identity lookup failed")
		} else {
			info.Identity = identity
		}
	}

	e.cache.Set(fileName, info)
	return info
}

func interesting(kind models.ContentKind) bool {
	return kind == models.ContentKindMovie || kind == models.ContentKindSeries
}

// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidra-media/vidra/internal/cache"
	"github.com/vidra-media/vidra/internal/models"
)

type fakeResolver struct {
	calls    int
	identity *Identity
	err      error
}

func (f *fakeResolver) Resolve(_ context.Context, _ string, _ *int, _ models.ContentKind) (*Identity, error) {
	f.calls++
	return f.identity, f.err
}

func newTestEnricher(r Resolver) *Enricher {
	return NewEnricher(r, cache.New[string, *EnrichedInfo](100), time.Hour)
}

func TestEnrichResolvesIdentity(t *testing.T) {
	resolver := &fakeResolver{identity: &Identity{ID: "tt2543164", CanonicalTitle: "Arrival", Score: 1}}
	e := newTestEnricher(resolver)

	info := e.Enrich(context.Background(), "Arrival.2016.1080p.BluRay.x264-SPARKS.mkv", 4<<30)

	assert.Equal(t, models.ContentKindMovie, info.Kind)
	require.NotNil(t, info.Identity)
	assert.Equal(t, "tt2543164", info.Identity.ID)
	assert.Equal(t, 1, resolver.calls)
}

func TestEnrichCachesByFileName(t *testing.T) {
	resolver := &fakeResolver{identity: &Identity{ID: "tt1160419"}}
	e := newTestEnricher(resolver)

	first := e.Enrich(context.Background(), "Dune.2021.2160p.WEB-DL.mkv", 1)
	second := e.Enrich(context.Background(), "Dune.2021.2160p.WEB-DL.mkv", 1)

	assert.Same(t, first, second)
	assert.Equal(t, 1, resolver.calls, "second enrichment must come from cache")
}

func TestEnrichUnresolvedKeepsStructuralResult(t *testing.T) {
	resolver := &fakeResolver{}
	e := newTestEnricher(resolver)

	info := e.Enrich(context.Background(), "random_home_video.mp4", 1)

	assert.Nil(t, info.Identity)
	assert.Equal(t, "random_home_video", info.Title)
}

func TestInterestingKinds(t *testing.T) {
	assert.True(t, interesting(models.ContentKindMovie))
	assert.True(t, interesting(models.ContentKindSeries))
	assert.False(t, interesting(models.ContentKindUnknown))
}

func TestEnrichResolverFailureDegrades(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("identity api unavailable")}
	e := newTestEnricher(resolver)

	info := e.Enrich(context.Background(), "Arrival.2016.1080p.BluRay.mkv", 1)

	assert.Nil(t, info.Identity)
	assert.Equal(t, models.ContentKindMovie, info.Kind)
	assert.Equal(t, "Arrival", info.Title)
}

func TestEnrichNilResolver(t *testing.T) {
	e := newTestEnricher(nil)

	info := e.Enrich(context.Background(), "Arrival.2016.1080p.mkv", 1)

	assert.Nil(t, info.Identity)
	assert.Equal(t, models.ContentKindMovie, info.Kind)
}

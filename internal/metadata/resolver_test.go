// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidra-media/vidra/internal/models"
)

func TestResolveMovie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "Arrival", r.URL.Query().Get("t"))
		assert.Equal(t, "2016", r.URL.Query().Get("y"))
		assert.Equal(t, "movie", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Title": "Arrival",
			"Year": "2016",
			"Type": "movie",
			"Poster": "https://img.example/arrival.jpg",
			"Actors": "Amy Adams, Jeremy Renner, Forest Whitaker",
			"imdbID": "tt2543164",
			"Response": "True"
		}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "test-key", 5*time.Second)

	identity, err := r.Resolve(context.Background(), "Arrival", intp(2016), models.ContentKindMovie)
	require.NoError(t, err)
	require.NotNil(t, identity)

	assert.Equal(t, "tt2543164", identity.ID)
	assert.Equal(t, "Arrival", identity.CanonicalTitle)
	require.NotNil(t, identity.Year)
	assert.Equal(t, 2016, *identity.Year)
	assert.Empty(t, identity.YearRange)
	assert.Equal(t, []string{"Amy Adams", "Jeremy Renner", "Forest Whitaker"}, identity.Actors)
	assert.Equal(t, 1.0, identity.Score)
}

func TestResolveSeriesYearRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Title":"The Expanse","Year":"2015–2022","Type":"series","imdbID":"tt3230854","Response":"True"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "k", 5*time.Second)

	identity, err := r.Resolve(context.Background(), "The Expanse", nil, models.ContentKindSeries)
	require.NoError(t, err)
	require.NotNil(t, identity)

	require.NotNil(t, identity.Year)
	assert.Equal(t, 2015, *identity.Year)
	assert.Equal(t, "2015-2022", identity.YearRange)
}

func TestResolveMissReturnsNilIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "k", 5*time.Second)

	identity, err := r.Resolve(context.Background(), "Nonexistent", nil, models.ContentKindMovie)
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestResolveRetriesTransientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"Title":"Dune","Year":"2021","Type":"movie","imdbID":"tt1160419","Response":"True"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "k", 5*time.Second)

	identity, err := r.Resolve(context.Background(), "Dune", intp(2021), models.ContentKindMovie)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, 3, calls)
}

func TestResolveBadKeyDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, "bad", 5*time.Second)

	_, err := r.Resolve(context.Background(), "Dune", nil, models.ContentKindMovie)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestResolveEmptyBaseURLIsNoop(t *testing.T) {
	r := NewHTTPResolver("", "", 0)

	identity, err := r.Resolve(context.Background(), "Anything", nil, models.ContentKindMovie)
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestSimilarityScore(t *testing.T) {
	assert.Equal(t, 1.0, SimilarityScore("The Expanse", "the.expanse"))
	assert.Equal(t, 1.0, SimilarityScore("Amélie", "Amelie"))
	assert.Equal(t, 0.0, SimilarityScore("", "Arrival"))

	near := SimilarityScore("Blade Runner 2049", "Blade Runner")
	far := SimilarityScore("Blade Runner 2049", "Totally Different Film")
	assert.Greater(t, near, far)
	assert.Greater(t, near, 0.5)
}

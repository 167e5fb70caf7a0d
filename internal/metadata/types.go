// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metadata derives structural and external-identity metadata from
// media filenames.
package metadata

import "github.com/vidra-media/vidra/internal/models"

// Structural holds attributes parsed from the filename alone.
type Structural struct {
	Kind          models.ContentKind
	Title         string
	Year          *int
	Season        *int
	Episode       *int
	Resolution    string
	Source        string
	VideoCodec    string
	AudioCodec    string
	AudioChannels string
	Languages     []string
	ReleaseGroup  string
	Flags         []string
	Edition       string
}

// Identity is a resolved external catalog record.
type Identity struct {
	ID             string   `json:"id"`
	CanonicalTitle string   `json:"canonicalTitle"`
	Year           *int     `json:"year,omitempty"`
	Type           string   `json:"type"`
	YearRange      string   `json:"yearRange,omitempty"`
	PosterURL      string   `json:"posterUrl,omitempty"`
	Actors         []string `json:"actors"`
	Score          float64  `json:"score"`
}

// EnrichedInfo is the pipeline output for one file: always-present
// structural fields plus an optional resolved identity.
type EnrichedInfo struct {
	FileName string
	Size     int64
	Structural
	Identity *Identity
}

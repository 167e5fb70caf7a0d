// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidra-media/vidra/internal/models"
)

func intp(v int) *int { return &v }

func TestMergeFieldPreferences(t *testing.T) {
	a := Structural{
		Kind:         models.ContentKindSeries,
		Title:        "expanse s03",
		Season:       intp(3),
		Episode:      intp(6),
		Source:       "web",
		VideoCodec:   "x265",
		AudioCodec:   "ac3",
		Languages:    []string{"english"},
		ReleaseGroup: "NTb",
		Flags:        []string{"proper"},
	}
	b := Structural{
		Kind:          models.ContentKindSeries,
		Title:         "The Expanse",
		Year:          intp(2018),
		Resolution:    "1080p",
		Source:        "web-dl",
		VideoCodec:    "hevc",
		AudioCodec:    "eac3",
		AudioChannels: "5.1",
		Languages:     []string{"English", "german"},
		Flags:         []string{"REPACK"},
	}

	got := Merge("irrelevant.mkv", a, b)

	assert.Equal(t, models.ContentKindSeries, got.Kind)
	assert.Equal(t, "The Expanse", got.Title)
	require.NotNil(t, got.Season)
	assert.Equal(t, 3, *got.Season)
	require.NotNil(t, got.Episode)
	assert.Equal(t, 6, *got.Episode)
	require.NotNil(t, got.Year)
	assert.Equal(t, 2018, *got.Year)
	assert.Equal(t, "1080p", got.Resolution)
	assert.Equal(t, "web", got.Source, "source prefers first-pass value")
	assert.Equal(t, "x265+hevc", got.VideoCodec, "codecs merge both detections")
	assert.Equal(t, "eac3", got.AudioCodec)
	assert.Equal(t, "5.1", got.AudioChannels)
	assert.Equal(t, []string{"english", "german"}, got.Languages)
	assert.Equal(t, "NTb", got.ReleaseGroup)
	assert.Equal(t, []string{"PROPER", "REPACK"}, got.Flags)
}

func TestMergeKindFallsBackToParser(t *testing.T) {
	a := Structural{Kind: models.ContentKindUnknown}
	b := Structural{Kind: models.ContentKindMovie, Title: "Arrival", Year: intp(2016)}

	got := Merge("Arrival.2016.mkv", a, b)

	assert.Equal(t, models.ContentKindMovie, got.Kind)
}

func TestMergeTitleFallsBackToFileName(t *testing.T) {
	got := Merge("weird_clip.mp4", Structural{}, Structural{})

	assert.Equal(t, "weird_clip", got.Title)
	assert.Equal(t, models.ContentKindUnknown, got.Kind)
	assert.Nil(t, got.Season)
	assert.Nil(t, got.Episode)
}

func TestMergeDeterministic(t *testing.T) {
	a := Classify("Dune.Part.Two.2024.REPACK.2160p.WEB-DL.DDP5.1.Atmos.x265-FLUX.mkv")
	b := Parse("Dune.Part.Two.2024.REPACK.2160p.WEB-DL.DDP5.1.Atmos.x265-FLUX.mkv")

	first := Merge("Dune.Part.Two.2024.REPACK.2160p.WEB-DL.DDP5.1.Atmos.x265-FLUX.mkv", a, b)
	for i := 0; i < 10; i++ {
		again := Merge("Dune.Part.Two.2024.REPACK.2160p.WEB-DL.DDP5.1.Atmos.x265-FLUX.mkv", a, b)
		assert.Equal(t, first, again)
	}
}

func TestParseRevisionAddsProperFlag(t *testing.T) {
	got := Parse("Oppenheimer.2023.PROPER.1080p.BluRay.x264-SPARKS.mkv")

	assert.Contains(t, got.Flags, "PROPER")
	require.NotNil(t, got.Year)
	assert.Equal(t, 2023, *got.Year)
	assert.Equal(t, models.ContentKindMovie, got.Kind)
}

func TestParseEpisode(t *testing.T) {
	got := Parse("Severance.S02E01.1080p.WEB.H264-SuccessfulCrab.mkv")

	assert.Equal(t, models.ContentKindSeries, got.Kind)
	require.NotNil(t, got.Season)
	assert.Equal(t, 2, *got.Season)
	require.NotNil(t, got.Episode)
	assert.Equal(t, 1, *got.Episode)
	assert.Equal(t, "Severance", got.Title)
	assert.Equal(t, "SuccessfulCrab", got.ReleaseGroup)
}

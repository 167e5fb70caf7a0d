// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"strings"

	"github.com/moistari/rls"

	"github.com/vidra-media/vidra/internal/models"
)

// Parse runs the release-name parser (strategy B) over a filename.
func Parse(fileName string) Structural {
	r := rls.ParseString(fileName)

	result := Structural{
		Kind:          kindFromType(r.Type),
		Title:         r.Title,
		Resolution:    strings.ToLower(r.Resolution),
		Source:        strings.ToLower(r.Source),
		AudioChannels: r.Channels,
		ReleaseGroup:  r.Group,
	}

	if r.Year > 0 {
		year := r.Year
		result.Year = &year
	}
	if r.Series > 0 {
		season := r.Series
		result.Season = &season
	}
	if r.Episode > 0 {
		episode := r.Episode
		result.Episode = &episode
	}

	if len(r.Codec) > 0 {
		result.VideoCodec = strings.ToLower(strings.Join(r.Codec, "+"))
	}
	if len(r.Audio) > 0 {
		result.AudioCodec = strings.ToLower(strings.Join(r.Audio, "+"))
	}
	for _, lang := range r.Language {
		result.Languages = append(result.Languages, strings.ToLower(lang))
	}

	for _, other := range r.Other {
		result.Flags = append(result.Flags, strings.ToUpper(other))
	}
	if revision(r) > 1 {
		result.Flags = appendUnique(result.Flags, "PROPER")
	}

	edition := append(append([]string{}, r.Cut...), r.Edition...)
	if len(edition) > 0 {
		result.Edition = strings.Join(edition, " ")
		for _, e := range edition {
			result.Flags = appendUnique(result.Flags, strings.ToUpper(e))
		}
	}

	return result
}

// revision counts the release revision: 1 for an original release, one
// more per PROPER or REPACK marker.
func revision(r rls.Release) int {
	rev := 1
	for _, other := range r.Other {
		switch strings.ToUpper(other) {
		case "PROPER", "REPACK", "RERIP":
			rev++
		}
	}
	return rev
}

func kindFromType(t rls.Type) models.ContentKind {
	switch t {
	case rls.Movie:
		return models.ContentKindMovie
	case rls.Series, rls.Episode:
		return models.ContentKindSeries
	default:
		return models.ContentKindUnknown
	}
}

func appendUnique(flags []string, flag string) []string {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	return append(flags, flag)
}

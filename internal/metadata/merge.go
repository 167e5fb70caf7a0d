// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/vidra-media/vidra/internal/models"
)

// Merge combines the coarse classification (a) with the release-name
// parse (b) into a single structural record. Each field has a fixed
// preference order so the result is deterministic for a given input
// pair.
func Merge(fileName string, a, b Structural) Structural {
	merged := Structural{
		Kind:    a.Kind,
		Season:  a.Season,
		Episode: a.Episode,
	}

	if merged.Kind == models.ContentKindUnknown {
		merged.Kind = b.Kind
	}
	if merged.Season == nil {
		merged.Season = b.Season
	}
	if merged.Episode == nil {
		merged.Episode = b.Episode
	}

	merged.Title = firstNonEmpty(b.Title, a.Title,
		strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	if b.Year != nil {
		merged.Year = b.Year
	} else {
		merged.Year = a.Year
	}

	merged.Resolution = firstNonEmpty(b.Resolution, a.Resolution)
	merged.Source = firstNonEmpty(a.Source, b.Source)
	merged.VideoCodec = mergeCodecs(a.VideoCodec, b.VideoCodec)
	merged.AudioCodec = firstNonEmpty(b.AudioCodec, a.AudioCodec)
	merged.AudioChannels = firstNonEmpty(b.AudioChannels, a.AudioChannels)
	merged.Languages = unionLower(a.Languages, b.Languages)
	merged.ReleaseGroup = firstNonEmpty(a.ReleaseGroup, b.ReleaseGroup)
	merged.Flags = unionUpper(a.Flags, b.Flags)
	merged.Edition = firstNonEmpty(b.Edition, a.Edition)

	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// mergeCodecs joins both detections, dropping duplicates.
func mergeCodecs(a, b string) string {
	seen := map[string]bool{}
	var parts []string
	for _, s := range []string{a, b} {
		for _, p := range strings.Split(s, "+") {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "+")
}

func unionLower(a, b []string) []string {
	return union(a, b, strings.ToLower)
}

func unionUpper(a, b []string) []string {
	return union(a, b, strings.ToUpper)
}

func union(a, b []string, normalize func(string) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		s = normalize(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vidra-media/vidra/internal/models"
)

// Strategy A: coarse first-pass classification of a filename into
// movie/series plus robust season/episode and token extraction.

var (
	episodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[\s._-]S(\d{1,3})[\s._-]?E(\d{1,3})`), // Show.S01E02
		regexp.MustCompile(`(?i)[\s._-](\d{1,2})x(\d{1,3})[\s._-]`),   // Show.1x02.
		regexp.MustCompile(`(?i)[\s._-]S(\d{1,3})[\s._-]?Ep?(\d{1,3})`),
	}
	seasonOnlyPattern = regexp.MustCompile(`(?i)[\s._-]S(\d{1,3})(?:[\s._-]|$)`)

	// Year needs delimiters so it never matches inside episode numbers
	// or dates like 2020.01.15.
	yearPattern = regexp.MustCompile(`[\(\[\.\-_\s]((?:19|20)\d{2})[\)\]\.\-_\s]`)

	releaseGroupPattern = regexp.MustCompile(`-([A-Za-z0-9]+)$`)
)

// sourceTokens maps source labels to their identifying filename tokens.
var sourceTokens = map[string][]string{
	"bluray":   {"bluray", "blu-ray", "bdrip", "brrip", "bdremux", "remux"},
	"dvd":      {"dvd", "dvdrip", "r5"},
	"web":      {"webrip", "web-dl", "webdl", "web"},
	"hdtv":     {"hdtv", "pdtv", "tvrip"},
	"cam":      {"cam", "telesync", "telecine"},
	"screener": {"dvdscr", "screener", "scr"},
}

var videoCodecTokens = map[string][]string{
	"x264": {"x264", "h264", "h.264", "avc"},
	"x265": {"x265", "h265", "h.265", "hevc"},
	"xvid": {"xvid", "divx"},
	"av1":  {"av1"},
}

var audioCodecTokens = map[string][]string{
	"aac":    {"aac"},
	"ac3":    {"ac3", "ac-3", "dd5.1", "dd2.0"},
	"eac3":   {"eac3", "ddp5.1"},
	"dts":    {"dts", "dts-hd", "dtshd"},
	"truehd": {"truehd", "atmos"},
	"flac":   {"flac"},
}

var channelTokens = []string{"7.1", "5.1", "2.0"}

var languageTokens = map[string][]string{
	"english": {"english", "eng"},
	"french":  {"french", "vff", "vfq"},
	"german":  {"german"},
	"spanish": {"spanish", "castellano"},
	"italian": {"italian", "ita"},
	"multi":   {"multi", "multisubs", "dual.audio", "dual-audio"},
	"nordic":  {"nordic"},
	"japanese": {"japanese", "jpn"},
}

var flagTokens = []string{
	"PROPER", "REPACK", "RERIP", "INTERNAL", "LIMITED", "REMASTERED",
	"UNRATED", "EXTENDED", "UNCUT", "COMPLETE", "HDR", "10BIT",
}

var resolutionPattern = regexp.MustCompile(`(?i)\b(480p|576p|720p|1080p|1080i|2160p|4320p)\b`)

// Classify runs the coarse first-pass parse (strategy A).
func Classify(fileName string) Structural {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	lower := strings.ToLower(base)

	result := Structural{Kind: models.ContentKindUnknown}

	titleEnd := len(base)

	if season, episode, end, ok := matchEpisode(base); ok {
		result.Kind = models.ContentKindSeries
		result.Season = season
		result.Episode = episode
		if end < titleEnd {
			titleEnd = end
		}
	}

	// Titles may themselves contain a year ("Blade Runner 2049"), so the
	// release year is taken from the last candidate, not the first.
	if matches := yearPattern.FindAllStringSubmatchIndex(base, -1); len(matches) > 0 {
		m := matches[len(matches)-1]
		if year, err := strconv.Atoi(base[m[2]:m[3]]); err == nil {
			result.Year = &year
		}
		if result.Kind == models.ContentKindUnknown {
			result.Kind = models.ContentKindMovie
		}
		if m[0] < titleEnd {
			titleEnd = m[0]
		}
	}

	// A season pack without an episode number still classifies as series.
	if result.Kind == models.ContentKindUnknown {
		if m := seasonOnlyPattern.FindStringSubmatchIndex(base); m != nil {
			if season, err := strconv.Atoi(base[m[2]:m[3]]); err == nil {
				result.Kind = models.ContentKindSeries
				result.Season = &season
				if m[0] < titleEnd {
					titleEnd = m[0]
				}
			}
		}
	}

	result.Title = cleanTitle(base[:titleEnd])

	if m := resolutionPattern.FindStringSubmatch(base); m != nil {
		result.Resolution = strings.ToLower(m[1])
	}

	result.Source = firstTokenMatch(lower, sourceTokens)
	result.VideoCodec = firstTokenMatch(lower, videoCodecTokens)
	result.AudioCodec = firstTokenMatch(lower, audioCodecTokens)

	for _, ch := range channelTokens {
		if strings.Contains(lower, ch) {
			result.AudioChannels = ch
			break
		}
	}

	for lang, tokens := range languageTokens {
		for _, token := range tokens {
			if containsToken(lower, token) {
				result.Languages = append(result.Languages, lang)
				break
			}
		}
	}

	for _, flag := range flagTokens {
		if containsToken(lower, strings.ToLower(flag)) {
			result.Flags = append(result.Flags, flag)
		}
	}

	if m := releaseGroupPattern.FindStringSubmatch(base); m != nil && !isKnownToken(m[1]) {
		result.ReleaseGroup = m[1]
	}

	return result
}

func matchEpisode(base string) (season, episode *int, titleEnd int, ok bool) {
	for _, pattern := range episodePatterns {
		m := pattern.FindStringSubmatchIndex(base)
		if m == nil {
			continue
		}

		s, err1 := strconv.Atoi(base[m[2]:m[3]])
		e, err2 := strconv.Atoi(base[m[4]:m[5]])
		if err1 != nil || err2 != nil {
			continue
		}

		return &s, &e, m[0], true
	}

	return nil, nil, 0, false
}

// cleanTitle turns a dotted/underscored filename fragment into a display
// title, stripping bracket noise.
func cleanTitle(s string) string {
	s = strings.NewReplacer(".", " ", "_", " ").Replace(s)
	s = strings.Trim(s, " -([")
	return strings.Join(strings.Fields(s), " ")
}

func firstTokenMatch(lower string, tokenMap map[string][]string) string {
	// Longest token first so "web-dl" wins over "web".
	best := ""
	bestLen := 0
	for label, tokens := range tokenMap {
		for _, token := range tokens {
			if containsToken(lower, token) && len(token) > bestLen {
				best = label
				bestLen = len(token)
			}
		}
	}
	return best
}

// containsToken matches token at separator boundaries.
func containsToken(lower, token string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], token)
		if i < 0 {
			return false
		}
		i += idx

		beforeOK := i == 0 || isSeparator(lower[i-1])
		after := i + len(token)
		afterOK := after == len(lower) || isSeparator(lower[after])
		if beforeOK && afterOK {
			return true
		}

		idx = i + 1
		if idx >= len(lower) {
			return false
		}
	}
}

func isSeparator(b byte) bool {
	switch b {
	case '.', ' ', '-', '_', '[', ']', '(', ')', ',', '+':
		return true
	}
	return false
}

func isKnownToken(s string) bool {
	lower := strings.ToLower(s)
	for _, tokens := range sourceTokens {
		for _, t := range tokens {
			if t == lower {
				return true
			}
		}
	}
	for _, tokens := range videoCodecTokens {
		for _, t := range tokens {
			if t == lower {
				return true
			}
		}
	}
	for _, tokens := range audioCodecTokens {
		for _, t := range tokens {
			if t == lower {
				return true
			}
		}
	}
	for _, flag := range flagTokens {
		if strings.EqualFold(flag, s) {
			return true
		}
	}
	return false
}

// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/avast/retry-go"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/unicode/norm"

	"github.com/vidra-media/vidra/internal/buildinfo"
	"github.com/vidra-media/vidra/internal/models"
)

// Resolver looks up the canonical identity for a parsed title.
type Resolver interface {
	Resolve(ctx context.Context, title string, year *int, kind models.ContentKind) (*Identity, error)
}

// HTTPResolver queries an OMDb-compatible identity API.
type HTTPResolver struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewHTTPResolver(baseURL, apiKey string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPResolver{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type identityResponse struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Type     string `json:"Type"`
	Poster   string `json:"Poster"`
	Actors   string `json:"Actors"`
	ImdbID   string `json:"imdbID"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Resolve queries the identity API with (title, year, kind). A miss
// returns (nil, nil); only transport-level failures return an error.
func (r *HTTPResolver) Resolve(ctx context.Context, title string, year *int, kind models.ContentKind) (*Identity, error) {
	if r.baseURL == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apikey", r.apiKey)
	params.Set("t", title)
	if year != nil {
		params.Set("y", strconv.Itoa(*year))
	}
	switch kind {
	case models.ContentKindMovie:
		params.Set("type", "movie")
	case models.ContentKindSeries:
		params.Set("type", "series")
	}

	reqURL := r.baseURL + "/?" + params.Encode()

	var payload identityResponse
	err := retry.Do(
		func() error {
			return r.fetch(ctx, reqURL, &payload)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(payload.Response, "True") {
		log.Debug().Str("title", title).Str("reason", payload.Error).Msg("metadata: identity miss")
		return nil, nil
	}

	identity := &Identity{
		ID:             payload.ImdbID,
		CanonicalTitle: payload.Title,
		Type:           payload.Type,
		PosterURL:      payload.Poster,
		Score:          SimilarityScore(title, payload.Title),
	}

	identity.Year, identity.YearRange = parseYearField(payload.Year)

	if payload.Actors != "" && payload.Actors != "N/A" {
		for _, actor := range strings.Split(payload.Actors, ",") {
			if actor = strings.TrimSpace(actor); actor != "" {
				identity.Actors = append(identity.Actors, actor)
			}
		}
	}

	return identity, nil
}

func (r *HTTPResolver) fetch(ctx context.Context, reqURL string, payload *identityResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return retry.Unrecoverable(fmt.Errorf("identity api rejected key: status %d", resp.StatusCode))
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("identity api unavailable: status %d", resp.StatusCode)
	default:
		return retry.Unrecoverable(fmt.Errorf("identity api error: status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(payload); err != nil {
		return fmt.Errorf("decoding identity response: %w", err)
	}
	return nil
}

// parseYearField splits OMDb's year field, which is either a plain year
// or a range like "2008-2013" or an open range "2015-".
func parseYearField(field string) (*int, string) {
	field = strings.TrimSpace(field)
	if field == "" || field == "N/A" {
		return nil, ""
	}

	// En dash appears in series ranges.
	normalized := strings.NewReplacer("–", "-", "—", "-").Replace(field)

	first := normalized
	yearRange := ""
	if idx := strings.IndexByte(normalized, '-'); idx >= 0 {
		first = normalized[:idx]
		yearRange = normalized
	}

	year, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return nil, yearRange
	}
	return &year, yearRange
}

// SimilarityScore compares two titles after stripping diacritics and
// case, returning a value in [0, 1] where 1 is an exact match.
func SimilarityScore(a, b string) float64 {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	rank := fuzzy.LevenshteinDistance(na, nb)
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	if rank >= longest {
		return 0
	}
	return 1 - float64(rank)/float64(longest)
}

var diacriticStripper = runes.Remove(runes.In(unicode.Mn))

func normalizeTitle(s string) string {
	decomposed := norm.NFD.String(s)
	stripped := diacriticStripper.String(decomposed)
	composed := norm.NFC.String(stripped)
	lowered := strings.ToLower(composed)

	var b strings.Builder
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else if r == ' ' || r == '.' || r == '-' || r == '_' || r == ':' {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

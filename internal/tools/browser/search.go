// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// intent names the query classification families, checked in this
// fixed order: the first matching family wins.
type intent string

const (
	intentNews          intent = "news"
	intentOfficial      intent = "official"
	intentDocumentation intent = "documentation"
	intentPrice         intent = "price"
	intentAcademic      intent = "academic"
	intentHowTo         intent = "how-to"
	intentGeneral       intent = "general"
)

var intentRules = []struct {
	intent   intent
	keywords []string
}{
	{intentNews, []string{"news", "breaking", "latest", "headline"}},
	{intentOfficial, []string{"official", "government", ".gov"}},
	{intentDocumentation, []string{"docs", "documentation", "api reference", "manual"}},
	{intentPrice, []string{"price", "cost", "buy", "cheap", "deal"}},
	{intentAcademic, []string{"paper", "research", "study", "journal", "thesis"}},
	{intentHowTo, []string{"how to", "tutorial", "guide"}},
}

// detectIntent matches the lowercased query against ordered rule
// families, returning the first family with a keyword hit.
func detectIntent(query string) intent {
	lower := strings.ToLower(query)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return intentGeneral
}

// refineQuery appends intent-specific hints to improve result
// relevance before the request is sent to the search endpoint.
func refineQuery(query string, i intent, now time.Time) string {
	switch i {
	case intentNews:
		return fmt.Sprintf("%s %d", query, now.Year())
	case intentPrice:
		return fmt.Sprintf("%s %d pt-br", query, now.Year())
	case intentAcademic:
		return query + " site:scholar.google.com OR site:arxiv.org OR site:researchgate.net"
	case intentDocumentation:
		if !strings.Contains(strings.ToLower(query), "documentation") {
			return query + " documentation"
		}
		return query
	default:
		return query
	}
}

// trustedDomains is the fixed scoring table for known-reputable hosts.
var trustedDomains = map[string]float64{
	"wikipedia.org":        8,
	"arxiv.org":            8,
	"github.com":           7,
	"stackoverflow.com":    7,
	"stackexchange.com":    7,
	"developer.mozilla.org": 7,
	"docs.microsoft.com":   7,
	"nytimes.com":          6,
	"bbc.com":              6,
	"reuters.com":          6,
	"apnews.com":           6,
	"theguardian.com":      6,
	"medium.com":           5,
	"reddit.com":           4,
}

var newsHosts = map[string]bool{
	"nytimes.com": true, "bbc.com": true, "reuters.com": true,
	"apnews.com": true, "theguardian.com": true,
}

var (
	officialHostPattern = regexp.MustCompile(`\.gov(\.|$)`)
	academicPattern     = regexp.MustCompile(`(?i)arxiv|scholar|research`)
	howToTitlePattern   = regexp.MustCompile(`(?i)tutorial|guide|how`)
	penalizedPattern    = regexp.MustCompile(`(?i)login|signin|subscribe|paywall|buy|cart|pinterest|facebook|instagram`)
)

// RawResult is one unranked candidate pulled from the search endpoint.
type RawResult struct {
	Title   string
	URL     string
	Snippet string
}

// Result is a ranked, deduplicated search result.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

func trustedDomainScore(host string) float64 {
	for domain, score := range trustedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return score
		}
	}
	return 0
}

func intentBonus(i intent, host, title, snippet, rawURL string, now time.Time) float64 {
	switch i {
	case intentDocumentation:
		if strings.Contains(host, "github") || strings.Contains(host, "docs") {
			return 4
		}
	case intentNews:
		bonus := 0.0
		if newsHosts[host] {
			bonus += 4
		}
		if strings.Contains(snippet, strconv.Itoa(now.Year())) {
			bonus += 2
		}
		return bonus
	case intentOfficial:
		if officialHostPattern.MatchString(host) {
			return 5
		}
	case intentAcademic:
		if academicPattern.MatchString(host) || academicPattern.MatchString(rawURL) {
			return 5
		}
	case intentHowTo:
		if howToTitlePattern.MatchString(title) {
			return 3
		}
	}
	return 0
}

func queryWordScore(query, title string) float64 {
	lowerTitle := strings.ToLower(title)
	var bonus float64
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len(word) > 2 && strings.Contains(lowerTitle, word) {
			bonus += 1.5
		}
	}
	if bonus > 5 {
		bonus = 5
	}
	return bonus
}

func snippetLengthScore(snippet string) float64 {
	var bonus float64
	if len(snippet) >= 100 {
		bonus += 1
	}
	if len(snippet) >= 200 {
		bonus += 1
	}
	return bonus
}

func score(query string, i intent, r RawResult, now time.Time) float64 {
	host := hostOf(r.URL)
	total := trustedDomainScore(host)
	total += intentBonus(i, host, r.Title, r.Snippet, r.URL, now)
	total += queryWordScore(query, r.Title)
	total += snippetLengthScore(r.Snippet)
	if penalizedPattern.MatchString(r.URL) || penalizedPattern.MatchString(r.Snippet) {
		total -= 4
	}
	if total < 0 {
		total = 0
	}
	return total
}

// defaultNumResults and maxNumResults bound the search tool's
// num_results argument.
const (
	defaultNumResults = 10
	maxNumResults     = 20
)

// rankResults dedupes by host, scores every candidate against query,
// and returns them sorted by descending score.
func rankResults(query string, raws []RawResult, now time.Time) []Result {
	i := detectIntent(query)

	seen := map[string]bool{}
	deduped := lo.Filter(raws, func(r RawResult, _ int) bool {
		host := hostOf(r.URL)
		if host == "" || seen[host] {
			return false
		}
		seen[host] = true
		return true
	})

	out := make([]Result, 0, len(deduped))
	for _, r := range deduped {
		out = append(out, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Snippet,
			Score:   score(query, i, r, now),
		})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}

// trimResults caps results at numResults, clamping to maxNumResults
// and falling back to defaultNumResults when numResults is unset.
func trimResults(results []Result, numResults int) []Result {
	if numResults <= 0 {
		numResults = defaultNumResults
	}
	if numResults > maxNumResults {
		numResults = maxNumResults
	}
	if len(results) > numResults {
		return results[:numResults]
	}
	return results
}

// aggregateConfidence buckets the mean score across results into the
// response-level confidence tier.
func aggregateConfidence(results []Result) string {
	if len(results) == 0 {
		return "low"
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	avg := sum / float64(len(results))
	switch {
	case avg >= 6:
		return "high"
	case avg >= 3:
		return "medium"
	default:
		return "low"
	}
}

package domain

import (
	"sort"
	"strings"
)

// Scoring constants for bookmark name matching
const (
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// ScorePositionBonus rewards substring matches that start early
	ScorePositionBonus = 10.0

	// ScoreExactNameBonus makes an exact name always win
	ScoreExactNameBonus = 200.0
)

// BookmarkCandidate represents a bookmark candidate with its match score
type BookmarkCandidate struct {
	Bookmark Bookmark
	Score    float64
}

// ScoreBookmark calculates the match score for a bookmark name against a query string
func ScoreBookmark(queryStr string, bookmark Bookmark) float64 {
	queryStr = strings.ToLower(strings.TrimSpace(queryStr))
	name := strings.ToLower(bookmark.Name)
	if queryStr == "" || name == "" {
		return 0.0
	}

	if queryStr == name {
		return ScoreExactMatch + ScoreExactNameBonus
	}

	if strings.HasPrefix(name, queryStr) {
		return ScorePrefixMatch
	}

	if index := strings.Index(name, queryStr); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(name)))
		return ScoreSubstringMatch + substringBonus
	}

	// Word-based: every query word appears in the name
	queryWords := strings.Fields(queryStr)
	if len(queryWords) > 1 {
		allMatch := true
		for _, word := range queryWords {
			if !strings.Contains(name, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch
		}
	}

	similarity := calculateSimilarity(queryStr, name)
	if similarity > 0.5 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// RankBookmarkCandidates ranks bookmarks by score, best first. Ties keep list order.
func RankBookmarkCandidates(queryStr string, bookmarks []Bookmark) []BookmarkCandidate {
	candidates := make([]BookmarkCandidate, 0, len(bookmarks))

	for _, bookmark := range bookmarks {
		score := ScoreBookmark(queryStr, bookmark)
		if score == 0.0 {
			continue
		}
		candidates = append(candidates, BookmarkCandidate{
			Bookmark: bookmark,
			Score:    score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

// FindBestBookmark finds the best matching bookmark for a query
func FindBestBookmark(queryStr string, bookmarks []Bookmark) (Bookmark, bool) {
	candidates := RankBookmarkCandidates(queryStr, bookmarks)
	if len(candidates) == 0 {
		return Bookmark{}, false
	}
	return candidates[0].Bookmark, true
}

// calculateSimilarity is the ratio of query characters present in s2
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	matches := 0
	total := 0
	for _, c := range s1 {
		total++
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(total)
}

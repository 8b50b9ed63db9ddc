package game

import (
	"fmt"
	"sort"

	"guessquest/internal/models"
)

// quickRoundSeconds is the cutoff for a "quick" win.
const quickRoundSeconds = 15

// Achievements derives the badges earned by a finished session. Pure
// function of the recorded rounds; no hidden state.
func Achievements(rounds []models.RoundRecord) []string {
	var out []string

	if streak := maxConsecutiveWins(rounds); streak >= 10 {
		out = append(out, "Unstoppable (10+ win streak)")
	} else if streak >= 5 {
		out = append(out, "On Fire (5+ win streak)")
	} else if streak >= 3 {
		out = append(out, "Hot Streak (3+ win streak)")
	}

	quick := 0
	for _, r := range rounds {
		if r.Correct && r.TimeTaken <= quickRoundSeconds {
			quick++
		}
	}
	if quick >= 5 {
		out = append(out, "Lightning Fast (5+ quick answers)")
	} else if quick >= 3 {
		out = append(out, "Speedy (3+ quick answers)")
	}

	firstFact := 0
	for _, r := range rounds {
		if r.Correct && r.FactsShown <= 1 {
			firstFact++
		}
	}
	if firstFact >= 3 {
		out = append(out, "Mind Reader (3+ first-fact wins)")
	}

	exact := 0
	for _, r := range rounds {
		if r.Correct && r.MatchType == MatchExact.String() {
			exact++
		}
	}
	if exact >= 5 {
		out = append(out, "Perfect Speller (5+ exact matches)")
	}

	winsByCategory := map[string]int{}
	for _, r := range rounds {
		if r.Correct {
			winsByCategory[r.Category]++
		}
	}
	categories := make([]string, 0, len(winsByCategory))
	for category := range winsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		if winsByCategory[category] >= 3 {
			out = append(out, fmt.Sprintf("%s Expert (3+ wins)", category))
		}
	}

	if len(rounds) >= 5 {
		perfect := true
		for _, r := range rounds {
			if !r.Correct {
				perfect = false
				break
			}
		}
		if perfect {
			out = append(out, "Flawless Victory (perfect session)")
		}
	}

	return out
}

// maxConsecutiveWins returns the longest run of won rounds.
func maxConsecutiveWins(rounds []models.RoundRecord) int {
	best, run := 0, 0
	for _, r := range rounds {
		if r.Correct {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

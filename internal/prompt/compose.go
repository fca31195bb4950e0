// Package prompt assembles the completion prompt and its token budget from
// player statistics and web-search citations.
package prompt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"hof-narrator/internal/player"
	"hof-narrator/internal/search"
)

const (
	// charsPerToken is the character-to-token heuristic. Exact tokenization
	// is the provider's concern, not ours.
	charsPerToken = 4

	// completionHeadroom reserves budget for the generated text on top of
	// the prompt estimate.
	completionHeadroom = 1.6

	// maxTokensCap is the provider-side hard cap against runaway cost.
	maxTokensCap = 2000
)

const instructionTemplate = "The current date is %s. " +
	"Using the provided Web search results and information in the query, write a comprehensive reply to the given query. " +
	"Make sure to cite results using [[number](URL)] notation after the reference. " +
	"If the provided search results refer to multiple subjects with the same name, write separate answers for each subject. " +
	"Query: An AI model states the probability of baseball hall of fame induction for %s as %s. " +
	"%s has played baseball for %s years. " +
	"Provide a detailed case supporting or against %s to be considered for the Hall of Fame.\n"

// CitationBlock renders the numbered web-search results the model is told to
// cite. Empty input still yields the header, matching a search that found
// nothing.
func CitationBlock(results []search.Result) string {
	var b strings.Builder
	b.WriteString("Web search results:\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "[%d] %q\nURL: %s\n\n", r.ID, r.Title+". "+r.Snippet, r.URL)
	}
	return b.String()
}

// FootnoteBlock renders the newline-separated source list appended after the
// generated narrative.
func FootnoteBlock(results []search.Result) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "%d. %s: %s\n", r.ID, r.Title, r.URL)
	}
	return b.String()
}

// Compose builds the full prompt text for a query plus its citation block,
// and returns the max-token budget for the completion call. currentDate is
// passed in so callers control the clock.
func Compose(q player.Query, citations string, currentDate string) (string, int) {
	instructions := fmt.Sprintf(instructionTemplate,
		currentDate,
		q.FullPlayerName,
		formatProbability(q.HallOfFameProbability),
		q.FullPlayerName,
		strconv.FormatFloat(q.YearsPlayed, 'g', -1, 64),
		q.FullPlayerName,
	)

	text := citations + instructions
	return text, TokenBudget(text)
}

// TokenBudget estimates tokens for text at 4 chars/token and reserves 1.6x
// headroom for the completion, capped at the provider limit.
func TokenBudget(text string) int {
	estimated := (len(text) + charsPerToken - 1) / charsPerToken
	budget := int(math.Round(float64(estimated) * completionHeadroom))
	if budget > maxTokensCap {
		budget = maxTokensCap
	}
	return budget
}

// formatProbability renders a 0..1 probability as a percentage with two
// decimal places, locale-independent.
func formatProbability(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 2, 64) + "%"
}

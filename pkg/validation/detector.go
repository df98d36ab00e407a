package validation

import (
	"context"
	"regexp"
	"strings"

	"github.com/docrelay/docrelay/pkg/provider"

	"golang.org/x/sync/errgroup"
)

// Problem tags a structural quality issue found on one page.
type Problem string

const (
	ProblemLowContentDensity   Problem = "low_content_density"
	ProblemMissingNumbers      Problem = "missing_numbers"
	ProblemRepeatedCharacters  Problem = "repeated_characters"
	ProblemLowWordCount        Problem = "low_word_count"
	ProblemExcessiveWhitespace Problem = "excessive_whitespace"
)

const (
	minContentLength = 100
	maxRepeatedRun   = 10
	minWordCount     = 20

	defaultDetectLimit = 5
)

// Check is a single page heuristic. Checks are pure functions of one page's
// content and independent of each other.
type Check struct {
	Problem Problem

	Fn func(content string) bool
}

// Detector runs a battery of quality checks over extracted pages.
type Detector struct {
	checks []Check

	limit int
}

type DetectorOption func(*Detector)

// WithCheck appends a custom heuristic to the default battery.
func WithCheck(check Check) DetectorOption {
	return func(d *Detector) {
		d.checks = append(d.checks, check)
	}
}

// WithDetectLimit caps how many pages are inspected concurrently.
func WithDetectLimit(limit int) DetectorOption {
	return func(d *Detector) {
		if limit > 0 {
			d.limit = limit
		}
	}
}

func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		checks: []Check{
			{ProblemLowContentDensity, lowContentDensity},
			{ProblemMissingNumbers, missingNumbers},
			{ProblemRepeatedCharacters, repeatedCharacters},
			{ProblemLowWordCount, lowWordCount},
			{ProblemExcessiveWhitespace, excessiveWhitespace},
		},

		limit: defaultDetectLimit,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Detect inspects every page concurrently and returns the problems found,
// keyed by page number. Pages without problems are absent from the result.
func (d *Detector) Detect(ctx context.Context, pages []provider.Page) map[int][]Problem {
	if len(pages) == 0 {
		return map[int][]Problem{}
	}

	found := make([][]Problem, len(pages))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)

	for i, page := range pages {
		g.Go(func() error {
			found[i] = d.inspect(page.Content)
			return nil
		})
	}

	g.Wait()

	problems := make(map[int][]Problem)

	for i, page := range pages {
		if len(found[i]) > 0 {
			problems[page.Number] = found[i]
		}
	}

	return problems
}

func (d *Detector) inspect(content string) []Problem {
	var problems []Problem

	for _, check := range d.checks {
		if check.Fn(content) {
			problems = append(problems, check.Problem)
		}
	}

	return problems
}

var (
	wordRegex     = regexp.MustCompile(`\w+`)
	digitRegex    = regexp.MustCompile(`\d`)
	spaceRunRegex = regexp.MustCompile(` {20,}`)
)

func lowContentDensity(content string) bool {
	return len(strings.TrimSpace(content)) < minContentLength
}

func missingNumbers(content string) bool {
	tableLike := strings.Contains(content, "|") || strings.Contains(strings.ToUpper(content), "TABLE")

	if !tableLike {
		return false
	}

	return !digitRegex.MatchString(content)
}

func repeatedCharacters(content string) bool {
	var last rune
	run := 0

	for _, r := range content {
		if r == last {
			run++

			if run > maxRepeatedRun {
				return true
			}

			continue
		}

		last = r
		run = 1
	}

	return false
}

func lowWordCount(content string) bool {
	return len(wordRegex.FindAllString(content, minWordCount)) < minWordCount
}

func excessiveWhitespace(content string) bool {
	if spaceRunRegex.MatchString(content) {
		return true
	}

	return strings.Count(content, "\n\n\n") > 5
}

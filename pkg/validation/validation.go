// Package validation cross-checks a primary extraction's quality: structural
// problem detection first, then similarity against a secondary extraction
// from a different strategy.
package validation

import (
	"context"
	"time"

	"github.com/docrelay/docrelay/pkg/logger"
	"github.com/docrelay/docrelay/pkg/provider"
)

// Reason records why a secondary result replaced the primary.
type Reason string

const (
	ReasonNone            Reason = "none"
	ReasonQualityProblems Reason = "quality_problems"
	ReasonLowSimilarity   Reason = "low_similarity"
)

// Report describes one validation run. UsedSecondary=true always carries a
// non-none Reason. SecondaryError is set when the secondary extraction itself
// failed and the primary was kept as-is.
type Report struct {
	UsedSecondary bool   `json:"used_secondary"`
	Reason        Reason `json:"reason"`

	Problems map[int][]Problem `json:"problems,omitempty"`

	Similarity *float64 `json:"similarity,omitempty"`
	Threshold  float64  `json:"threshold"`
	Method     Method   `json:"method"`

	SecondaryError string `json:"secondary_error,omitempty"`

	DurationMS int64 `json:"duration_ms"`
}

// Outcome is the validated extraction: either the primary input untouched or
// the secondary's content and pages.
type Outcome struct {
	Content string
	Pages   []provider.Page

	Report *Report
}

// Extractor produces the secondary extraction. Satisfied by strategy handlers.
type Extractor interface {
	Extract(ctx context.Context, path, query string) (string, []provider.Page, error)
}

const DefaultThreshold = 0.95

// Coordinator drives one validation decision per call: problems found short-
// circuit to the secondary result; otherwise similarity against the secondary
// decides which extraction to keep.
type Coordinator struct {
	detector *Detector

	secondary Extractor

	method    Method
	threshold float64
}

type CoordinatorOption func(*Coordinator)

func WithMethod(method Method) CoordinatorOption {
	return func(c *Coordinator) {
		c.method = method
	}
}

func WithThreshold(threshold float64) CoordinatorOption {
	return func(c *Coordinator) {
		if threshold > 0 {
			c.threshold = threshold
		}
	}
}

func WithDetector(detector *Detector) CoordinatorOption {
	return func(c *Coordinator) {
		c.detector = detector
	}
}

func NewCoordinator(secondary Extractor, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		detector: NewDetector(),

		secondary: secondary,

		method:    MethodNumberFrequency,
		threshold: DefaultThreshold,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Validate never fails: a secondary extraction error is downgraded to a
// report annotation and the primary result stands.
func (c *Coordinator) Validate(ctx context.Context, content string, pages []provider.Page, path, query string) *Outcome {
	start := time.Now()
	log := logger.FromContext(ctx)

	report := &Report{
		Reason: ReasonNone,

		Threshold: c.threshold,
		Method:    c.method,
	}

	problems := c.detector.Detect(ctx, pages)

	if len(problems) > 0 {
		log.Warn("quality problems detected, switching to secondary extraction",
			"pages_affected", len(problems))

		report.Problems = problems

		secondaryContent, secondaryPages, err := c.secondary.Extract(ctx, path, query)

		if err != nil {
			log.Error("secondary extraction failed, keeping primary result", "error", err)

			report.SecondaryError = err.Error()
			report.DurationMS = time.Since(start).Milliseconds()

			return &Outcome{Content: content, Pages: pages, Report: report}
		}

		report.UsedSecondary = true
		report.Reason = ReasonQualityProblems
		report.DurationMS = time.Since(start).Milliseconds()

		return &Outcome{Content: secondaryContent, Pages: secondaryPages, Report: report}
	}

	secondaryContent, secondaryPages, err := c.secondary.Extract(ctx, path, query)

	if err != nil {
		log.Error("secondary extraction failed, keeping primary result", "error", err)

		report.SecondaryError = err.Error()
		report.DurationMS = time.Since(start).Milliseconds()

		return &Outcome{Content: content, Pages: pages, Report: report}
	}

	score := Score(content, secondaryContent, c.method)
	report.Similarity = &score

	if score < c.threshold {
		log.Warn("similarity below threshold, switching to secondary extraction",
			"similarity", score,
			"threshold", c.threshold)

		report.UsedSecondary = true
		report.Reason = ReasonLowSimilarity
		report.DurationMS = time.Since(start).Milliseconds()

		return &Outcome{Content: secondaryContent, Pages: secondaryPages, Report: report}
	}

	log.Debug("validation passed, keeping primary result", "similarity", score)

	report.DurationMS = time.Since(start).Milliseconds()

	return &Outcome{Content: content, Pages: pages, Report: report}
}

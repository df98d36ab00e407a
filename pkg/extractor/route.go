package extractor

import (
	"strings"
)

type routingRule struct {
	strategy Strategy

	keywords []string
}

// Rules are evaluated in order, most specific first; the first keyword hit
// wins. Matching is unanchored substring containment ("ocrmore" matches
// "ocr"); callers depend on that, keep it.
var routingRules = []routingRule{
	{StrategyText, []string{
		"text extraction",
		"text only",
		"pdfplumber",
		"no ai",
		"raw text",
		"simple extraction",
		"plain text",
	}},
	{StrategyTables, []string{
		"azure di",
		"azure document intelligence",
		"document intelligence",
		"smart tables",
		"table extraction",
		"form",
		"invoice",
		"structured document",
		"layout",
	}},
	{StrategyVision, []string{
		"ocr",
		"images",
		"charts",
		"diagrams",
		"scanned",
		"scan",
		"handwritten",
		"visual content",
		"image extraction",
	}},
	{StrategyAlternate, []string{
		"gemini",
		"google",
		"high quality",
		"best quality",
		"maximum quality",
	}},
}

// Route maps a free-text query to a strategy. Pure and total: an empty or
// unmatched query falls back to StrategyDefault.
func Route(query string) Strategy {
	query = strings.ToLower(query)

	for _, rule := range routingRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(query, keyword) {
				return rule.strategy
			}
		}
	}

	return StrategyDefault
}

// Strategies lists every routable strategy in priority order, fallback last.
func Strategies() []Strategy {
	return []Strategy{
		StrategyText,
		StrategyTables,
		StrategyVision,
		StrategyAlternate,
		StrategyDefault,
	}
}

var descriptions = map[Strategy]string{
	StrategyText:      "Fast local text extraction without AI. Best for simple text-based PDFs.",
	StrategyDefault:   "General-purpose AI extraction. Good balance of speed, cost and quality.",
	StrategyTables:    "Document-intelligence extraction. Best for complex tables, forms and structured layouts.",
	StrategyVision:    "OCR extraction with vision models. Best for scanned documents, charts and diagrams.",
	StrategyAlternate: "High-quality extraction via the alternate AI provider.",
}

// Describe returns a human-readable summary of a strategy.
func Describe(strategy Strategy) string {
	if d, ok := descriptions[strategy]; ok {
		return d
	}

	return "Unknown strategy: " + string(strategy)
}

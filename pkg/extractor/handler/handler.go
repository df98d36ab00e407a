// Package handler implements the extraction strategies. Every handler
// composes a provider client with the resilience guard and, optionally, the
// validation coordinator.
package handler

import (
	"github.com/docrelay/docrelay/pkg/extractor"
	"github.com/docrelay/docrelay/pkg/validation"
)

type validator struct {
	coordinator *validation.Coordinator

	byDefault bool
}

func (v *validator) enabled(opts *extractor.Options) bool {
	if v.coordinator == nil {
		return false
	}

	if opts != nil && opts.Validate != nil {
		return *opts.Validate
	}

	return v.byDefault
}

func disabledValidation() *extractor.Options {
	off := false

	return &extractor.Options{
		Validate: &off,
	}
}

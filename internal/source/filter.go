package source

import (
	"fmt"
	"regexp"

	errs "github.com/quarry-search/quarry/internal/errors"
)

// Filter decides whether a candidate path participates in a source. A path
// is accepted only if it matches every include pattern (an empty include
// set accepts everything) and none of the exclude patterns.
type Filter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// NewFilter compiles include and exclude pattern sets. Invalid patterns
// fail construction with a pattern error.
func NewFilter(include, exclude []string) (*Filter, error) {
	compile := func(patterns []string, kind string) ([]*regexp.Regexp, error) {
		out := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, errs.PatternError(fmt.Sprintf("invalid %s pattern %q", kind, p), err)
			}
			out = append(out, re)
		}
		return out, nil
	}

	included, err := compile(include, "include")
	if err != nil {
		return nil, err
	}
	excluded, err := compile(exclude, "exclude")
	if err != nil {
		return nil, err
	}

	return &Filter{include: included, exclude: excluded}, nil
}

// Match reports whether path passes the filter. A nil filter accepts every
// path.
func (f *Filter) Match(path string) bool {
	if f == nil {
		return true
	}
	for _, re := range f.include {
		if !re.MatchString(path) {
			return false
		}
	}
	for _, re := range f.exclude {
		if re.MatchString(path) {
			return false
		}
	}
	return true
}

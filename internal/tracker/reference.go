package tracker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	defaultMinimumDigitsConstant      = 3
	defaultMaximumDigitsConstant      = 5
	anyPrefixPatternConstant          = `[A-Za-z]+`
	prefixAlternationSeparator        = "|"
	referencePatternTemplateConstant  = `(?i)(?P<reference>(?:%s)-\d{%d,%d})(?:\D|$)`
	referenceGroupNameConstant        = "reference"
	invalidDigitRangeTemplateConstant = "invalid ticket digit range %d..%d"
	blankPrefixesMessageConstant      = "ticket prefixes contain only blank values"
)

// ErrBlankPrefixes indicates every configured prefix was blank.
var ErrBlankPrefixes = errors.New(blankPrefixesMessageConstant)

// MatcherConfiguration describes which branch name fragments count as ticket references.
type MatcherConfiguration struct {
	Prefixes      []string
	MinimumDigits int
	MaximumDigits int
}

// ReferenceMatcher extracts ticket references from branch names.
type ReferenceMatcher struct {
	pattern *regexp.Regexp
}

// NewReferenceMatcher compiles a matcher; zero digit bounds fall back to 3..5 and empty prefixes accept any letters.
func NewReferenceMatcher(configuration MatcherConfiguration) (*ReferenceMatcher, error) {
	minimumDigits := configuration.MinimumDigits
	if minimumDigits <= 0 {
		minimumDigits = defaultMinimumDigitsConstant
	}
	maximumDigits := configuration.MaximumDigits
	if maximumDigits <= 0 {
		maximumDigits = defaultMaximumDigitsConstant
	}
	if maximumDigits < minimumDigits {
		return nil, fmt.Errorf(invalidDigitRangeTemplateConstant, minimumDigits, maximumDigits)
	}

	prefixPattern := anyPrefixPatternConstant
	if len(configuration.Prefixes) > 0 {
		quotedPrefixes := make([]string, 0, len(configuration.Prefixes))
		for _, prefix := range configuration.Prefixes {
			trimmedPrefix := strings.TrimSpace(prefix)
			if len(trimmedPrefix) == 0 {
				continue
			}
			quotedPrefixes = append(quotedPrefixes, regexp.QuoteMeta(trimmedPrefix))
		}
		if len(quotedPrefixes) == 0 {
			return nil, ErrBlankPrefixes
		}
		prefixPattern = strings.Join(quotedPrefixes, prefixAlternationSeparator)
	}

	pattern, compileError := regexp.Compile(fmt.Sprintf(referencePatternTemplateConstant, prefixPattern, minimumDigits, maximumDigits))
	if compileError != nil {
		return nil, compileError
	}
	return &ReferenceMatcher{pattern: pattern}, nil
}

// Extract returns the first uppercased ticket reference in branchName and whether one was found.
func (matcher *ReferenceMatcher) Extract(branchName string) (string, bool) {
	matches := matcher.pattern.FindStringSubmatch(branchName)
	if matches == nil {
		return "", false
	}
	return strings.ToUpper(matches[matcher.pattern.SubexpIndex(referenceGroupNameConstant)]), true
}

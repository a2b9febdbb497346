// Package phonenumbers extracts phone numbers from text using
// libphonenumber metadata.
package phonenumbers

import (
	"regexp"
	"slices"
	"strings"

	"github.com/fwojciec/sitecrawl"
	"github.com/nyaruka/phonenumbers"
)

// candidatePattern matches digit runs that may be phone numbers. Candidates
// never span lines.
var candidatePattern = regexp.MustCompile(`(?:\+|\()?\d[\d \t().\-/]{5,}\d`)

// digitGroup matches one digit group of a candidate with its leading plus
// or opening parenthesis.
var digitGroup = regexp.MustCompile(`[+(]?\d+`)

// maxGroups bounds how many digit groups a single number may span.
const maxGroups = 6

var _ sitecrawl.PhoneExtractor = (*Extractor)(nil)

// Extractor finds phone numbers in text and formats them as E.164.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPhoneNumbers implements sitecrawl.PhoneExtractor.
func (e *Extractor) ExtractPhoneNumbers(text, region string) (numbers []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			numbers = nil
			err = sitecrawl.Errorf(sitecrawl.EINTERNAL, "phone number extraction panicked: %v", r)
		}
	}()

	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = sitecrawl.DefaultPhoneRegion
	}

	set := make(map[string]bool)
	for _, candidate := range candidatePattern.FindAllString(text, -1) {
		for _, formatted := range split(candidate, region) {
			set[formatted] = true
		}
	}

	numbers = make([]string, 0, len(set))
	for n := range set {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)
	return numbers, nil
}

// split parses candidate as one number or, failing that, as numbers written
// next to each other. Runs of digit groups are tried longest first from
// left to right.
func split(candidate, region string) []string {
	if formatted, ok := parse(candidate, region); ok {
		return []string{formatted}
	}

	groups := digitGroup.FindAllStringIndex(candidate, -1)
	var found []string
	for i := 0; i < len(groups); {
		j := min(len(groups), i+maxGroups)
		for ; j > i; j-- {
			if formatted, ok := parse(candidate[groups[i][0]:groups[j-1][1]], region); ok {
				found = append(found, formatted)
				break
			}
		}
		if j > i {
			i = j
		} else {
			i++
		}
	}
	return found
}

func parse(candidate, region string) (string, bool) {
	num, err := phonenumbers.Parse(candidate, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

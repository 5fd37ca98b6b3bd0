package risk

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"ai-chatbot-be/pkg/textnorm"
)

// ValidationError marks a field value the user typed that cannot be parsed
// as the field's declared numeric type. It is retried in place by the
// dialogue, never treated as a missing field.
type ValidationError struct {
	Field string
	Raw   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: value %q is not a valid number", e.Field, e.Raw)
}

// ParseValue parses a raw user answer for the given field per its declared
// type. Persian digits are normalized first; float fields additionally
// accept a decimal comma. Integer fields reject fractional input so a typo
// like "2.5 pregnancies" is re-prompted instead of silently truncated.
func ParseValue(field *Field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Field: field.Name, Raw: raw}
	}

	if field.Kind == KindFloat {
		v, err := strconv.ParseFloat(textnorm.NormalizeDecimal(raw), 64)
		if err != nil {
			return 0, &ValidationError{Field: field.Name, Raw: raw}
		}
		return v, nil
	}

	n, err := strconv.Atoi(textnorm.NormalizeDigits(raw))
	if err != nil {
		return 0, &ValidationError{Field: field.Name, Raw: raw}
	}
	return float64(n), nil
}

// CastValue is the tolerant variant used for OCR-recovered evidence, where
// an integer field may well be printed as "95.0": it parses as float and
// truncates for integer fields.
func CastValue(field *Field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(textnorm.NormalizeDecimal(strings.TrimSpace(raw)), 64)
	if err != nil {
		return 0, &ValidationError{Field: field.Name, Raw: raw}
	}
	if field.Kind == KindInt {
		v = math.Trunc(v)
	}
	return v, nil
}

// FromFields builds a feature set from a field-by-field answer map. Absent
// or blank answers are reported in missing; the first unparseable answer
// aborts with a ValidationError.
func FromFields(answers map[string]string) (Features, []string, error) {
	features := make(Features, len(RequiredFields))
	var missing []string

	for i := range RequiredFields {
		field := &RequiredFields[i]
		raw, ok := answers[field.Name]
		if !ok || strings.TrimSpace(raw) == "" {
			missing = append(missing, field.Name)
			continue
		}
		v, err := ParseValue(field, raw)
		if err != nil {
			return nil, nil, err
		}
		features[field.Name] = v
	}

	return features, missing, nil
}

// aliasPatterns holds one compiled pattern per field alias: the alias,
// optional separators, then a numeral-like run.
var aliasPatterns = buildAliasPatterns()

func buildAliasPatterns() map[string][]*regexp.Regexp {
	patterns := make(map[string][]*regexp.Regexp, len(RequiredFields))
	for _, field := range RequiredFields {
		for _, alias := range field.Aliases {
			p := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(alias) + `[\s:\-]*([\d\.,]+)`)
			patterns[field.Name] = append(patterns[field.Name], p)
		}
	}
	return patterns
}

// FromEvidenceText scans text recovered from a lab-report image for field
// keywords and captures the numeral next to each. Extraction is independent
// per field, first alias wins; fields with no alias hit are simply absent
// from the result. Values stay raw strings so FromFields can apply the
// per-field typed parse afterwards.
func FromEvidenceText(text string) map[string]string {
	text = strings.ToLower(text)
	text = strings.NewReplacer("،", ",", ":", " ").Replace(text)
	text = textnorm.NormalizeDigits(text)

	extracted := make(map[string]string)
	for _, field := range RequiredFields {
		for _, p := range aliasPatterns[field.Name] {
			if m := p.FindStringSubmatch(text); m != nil {
				// List punctuation right after the number is part of the
				// sentence, not the value.
				raw := strings.TrimRight(strings.TrimSpace(m[1]), ".,")
				extracted[field.Name] = strings.ReplaceAll(raw, ",", ".")
				break
			}
		}
	}
	return extracted
}

// FromEvidence turns OCR text into a typed feature set using the tolerant
// cast. missing lists required fields whose keyword never appeared in the
// text, in RequiredFields order.
func FromEvidence(text string) (Features, []string, error) {
	extracted := FromEvidenceText(text)

	features := make(Features, len(extracted))
	var missing []string
	for i := range RequiredFields {
		field := &RequiredFields[i]
		raw, ok := extracted[field.Name]
		if !ok || raw == "" {
			missing = append(missing, field.Name)
			continue
		}
		v, err := CastValue(field, raw)
		if err != nil {
			return nil, nil, err
		}
		features[field.Name] = v
	}

	return features, missing, nil
}

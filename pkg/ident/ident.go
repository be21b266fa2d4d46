// Package ident decomposes gene identifiers into their structural
// sub-tokens (organism, scaffold and chromosome parts) so that other
// stages can count how often each part shows up across clusters.
package ident

import (
	"strconv"
	"strings"
)

// Separator between sub-fields of a gene identifier.
const Separator = "."

// ParseChromosome derives a normalized chromosome token from a single
// identifier field. Identifiers such as "MtrunA17_Chr4g0009691" carry the
// chromosome in the last underscore-delimited part; chromosome numbers are
// integers suffixed by 'G'. The second return is false when the field does
// not look like a chromosome.
func ParseChromosome(field string) (string, bool) {
	if idx := strings.LastIndex(field, "_"); idx >= 0 {
		field = strings.ToUpper(field[idx+1:])
		field = strings.TrimPrefix(field, "CHR")
	}
	gpos := strings.Index(field, "G")
	if gpos < 0 {
		return "", false
	}
	num, err := strconv.Atoi(field[:gpos])
	if err != nil {
		return "", false
	}
	return "Chr" + strconv.Itoa(num), true
}

// ParseSubIDs splits an identifier into its dot-separated fields, in
// order, followed by any chromosome tokens derived from those fields.
func ParseSubIDs(id string) []string {
	fields := strings.Split(id, Separator)
	subids := make([]string, 0, len(fields)+1)
	subids = append(subids, fields...)
	for _, field := range fields {
		if chromosome, ok := ParseChromosome(field); ok {
			subids = append(subids, chromosome)
		}
	}
	return subids
}

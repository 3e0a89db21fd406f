// Package tokens implements the system's single token-estimation rule:
// a coarse character-count heuristic used uniformly by the context
// assembler, summarizer, and memory flush (spec §4.1).
package tokens

// Estimate approximates the token count of s as floor(len(s)/4), matching
// the documented algorithm exactly (spec §4.1 "tokens(s) = floor(len(s)/4)").
// Deliberately coarse and deliberately byte-length, not rune-length: the
// budget invariant in spec §8 is defined against this exact function, and
// substituting a more accurate (e.g. rune-aware or real-tokenizer) estimate
// here would change what "fits in budget" means without changing the spec.
func Estimate(s string) int {
	return len(s) / 4
}

// EstimateAll sums Estimate over multiple strings.
func EstimateAll(strs ...string) int {
	total := 0
	for _, s := range strs {
		total += Estimate(s)
	}
	return total
}

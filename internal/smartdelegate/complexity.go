package smartdelegate

import (
	"fmt"
	"regexp"
	"strings"
)

// highComplexitySignals push the score up (spec §4.6 "complexity scorer").
var highComplexitySignals = compileAll([]string{
	`\barchitect(?:ure)?\b`,
	`\bdesign\s+(?:system|pattern|decision)`,
	`\brefactor(?:ing)?\b.*(?:large|entire|whole|major)`,
	`\bmigrat(?:e|ion)\b`,
	`\boptimiz(?:e|ation)\b.*(?:performance|algorithm|query)`,
	`\bsecurity\s+(?:audit|review|analysis)`,
	`\bscalability\b`,
	`\bconcurrency\b`,
	`\bdistributed\b`,
	`\bmicroservices?\b`,
	`\binfrastructure\b`,
	`\bkubernetes|k8s|terraform|ansible\b`,
	`\bdeep\s+(?:analysis|dive|review|investigation)\b`,
	`\bcomplex\b`,
	`\bcritical\b.*(?:bug|issue|problem|error)`,
	`\bproduction\b.*(?:issue|bug|incident|outage)`,
	`\bwrite\s+(?:a\s+)?(?:full|complete|comprehensive)\b`,
	`\bfrom\s+scratch\b`,
	`\bimplement\s+(?:a\s+)?(?:new|full|complete)\b`,
	`\bmulti-?step\b`,
	`\bplan\s+and\s+implement\b`,
	`\banalyze\s+(?:and|then)\s+`,
	`\bresearch\s+(?:and|then)\s+`,
	`\bcompare\s+(?:and\s+)?(?:contrast|evaluate|choose)\b`,
	`\btrade-?offs?\b`,
	`\bpros?\s+(?:and|&)\s+cons?\b`,
	`\bdeploy\s+to\s+production\b`,
	`\bzero\s+downtime\b`,
})

var midComplexitySignals = compileAll([]string{
	`\bexplain\s+(?:how|why|the)\b`,
	`\bdebug(?:ging)?\b`,
	`\bfix\s+(?:this|the|a)\b.*\b(?:bug|error|issue)\b`,
	`\bwrite\s+(?:a\s+)?(?:function|class|module|script|test)\b`,
	`\badd\s+(?:a\s+)?(?:feature|endpoint|handler)\b`,
	`\bintegrat(?:e|ion)\b`,
	`\bupdate\s+(?:the|this)\b`,
	`\bconfigure\b`,
	`\bsetup\b`,
	`\breview\b`,
	`\btest(?:ing)?\b`,
})

var lowComplexitySignals = compileAll([]string{
	`\bwhat\s+is\b`,
	`\bshow\s+me\b`,
	`\blist\b`,
	`\bhelp\b`,
	`\bstatus\b`,
	`\bweather\b`,
	`\btime\b`,
	`\bhello\b`,
	`\bhi\b`,
	`\bthanks?\b`,
	`\bremind\b`,
})

var actionVerbPattern = regexp.MustCompile(
	`\b(?:implement|add|write|create|build|deploy|configure|setup|test|fix|update|refactor|migrate|research|analyze)\b`)

var codeHintPattern = regexp.MustCompile(`(?:def |class |function |import )`)

var sentenceSplitPattern = regexp.MustCompile(`[.!?]+`)

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// ComplexityAssessment is the outcome of scoring a task (spec §4.6).
type ComplexityAssessment struct {
	Score         float64
	Tier          string
	Reasons       []string
	WordCount     int
	SignalMatches []string
}

// AssessComplexity scores task and recommends a model tier, following the
// original tool's heuristic: a baseline score adjusted by signal matches,
// length, sentence count, action-verb density, and code-block presence.
func AssessComplexity(task string) ComplexityAssessment {
	taskLower := strings.ToLower(task)
	wordCount := len(strings.Fields(task))

	highMatches := firstMatches(highComplexitySignals, taskLower)
	midMatches := firstMatches(midComplexitySignals, taskLower)
	lowMatches := firstMatches(lowComplexitySignals, taskLower)

	score := 0.3
	score += minF(float64(len(highMatches))*0.15, 0.45)
	score += minF(float64(len(midMatches))*0.08, 0.2)
	score -= minF(float64(len(lowMatches))*0.1, 0.3)

	switch {
	case wordCount > 100:
		score += 0.15
	case wordCount > 50:
		score += 0.1
	case wordCount > 25:
		score += 0.05
	case wordCount < 10:
		score -= 0.1
	}

	sentenceCount := len(sentenceSplitPattern.Split(strings.TrimSpace(task), -1))
	switch {
	case sentenceCount > 4:
		score += 0.1
	case sentenceCount > 2:
		score += 0.05
	}

	actionVerbs := actionVerbPattern.FindAllString(taskLower, -1)
	switch {
	case len(actionVerbs) >= 4:
		score += 0.2
	case len(actionVerbs) >= 3:
		score += 0.12
	case len(actionVerbs) >= 2:
		score += 0.05
	}

	if strings.Contains(task, "```") || codeHintPattern.MatchString(task) {
		score += 0.1
	}

	score = clamp01(score)

	var reasons []string
	allMatches := append(append([]string{}, highMatches...), midMatches...)

	var tier string
	switch {
	case score >= 0.75:
		tier = "xhigh"
		reasons = append(reasons, fmt.Sprintf("Very complex task (score %.2f)", score))
		if len(highMatches) > 0 {
			reasons = append(reasons, "Key signals: "+joinUpTo(highMatches, 3))
		}
		reasons = append(reasons, "Needs deep reasoning model for best results")
	case score >= 0.55:
		tier = "high"
		reasons = append(reasons, fmt.Sprintf("Complex task (score %.2f)", score))
		if len(highMatches) > 0 {
			reasons = append(reasons, "Complexity indicators: "+joinUpTo(highMatches, 3))
		}
		reasons = append(reasons, "Strong model recommended for accuracy")
	case score >= 0.35:
		tier = "mid"
		reasons = append(reasons, fmt.Sprintf("Moderate complexity (score %.2f)", score))
		if len(midMatches) > 0 {
			reasons = append(reasons, "Task involves: "+joinUpTo(midMatches, 3))
		}
	case score >= 0.2:
		tier = "low"
		reasons = append(reasons, fmt.Sprintf("Straightforward task (score %.2f)", score))
	default:
		tier = "fast"
		reasons = append(reasons, fmt.Sprintf("Simple task (score %.2f)", score))
		reasons = append(reasons, "Fast model is sufficient")
	}

	return ComplexityAssessment{
		Score:         score,
		Tier:          tier,
		Reasons:       reasons,
		WordCount:     wordCount,
		SignalMatches: allMatches,
	}
}

func firstMatches(patterns []*regexp.Regexp, text string) []string {
	var out []string
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func joinUpTo(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

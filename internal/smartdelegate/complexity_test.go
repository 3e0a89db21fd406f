package smartdelegate

import "testing"

func TestAssessComplexity_SimpleGreeting(t *testing.T) {
	c := AssessComplexity("hi, what is the weather today")
	if c.Tier != "fast" && c.Tier != "low" {
		t.Fatalf("expected a low-effort tier for a greeting, got %s (score %.2f)", c.Tier, c.Score)
	}
}

func TestAssessComplexity_ArchitectureTask(t *testing.T) {
	task := "Design the system architecture for a distributed microservices migration with zero downtime deploy to production, " +
		"analyze and then compare the trade-offs, implement a new service, research and evaluate scalability and concurrency concerns."
	c := AssessComplexity(task)
	if c.Tier != "xhigh" && c.Tier != "high" {
		t.Fatalf("expected a high-effort tier, got %s (score %.2f)", c.Tier, c.Score)
	}
	if len(c.SignalMatches) == 0 {
		t.Fatal("expected at least one signal match")
	}
}

func TestAssessComplexity_ClampedToUnitRange(t *testing.T) {
	c := AssessComplexity("hi")
	if c.Score < 0 || c.Score > 1 {
		t.Fatalf("score out of range: %f", c.Score)
	}
}

func TestSelectModel_PrefersTargetTier(t *testing.T) {
	available := []ModelInfo{{ID: "sonnet-4.5", Name: "Sonnet"}, {ID: "opus-4.6", Name: "Opus"}}
	complexity := ComplexityAssessment{Tier: "mid"}
	choice := SelectModel(complexity, available, "", "")
	if choice.ModelID != "sonnet-4.5" {
		t.Fatalf("expected sonnet-4.5 for mid tier, got %s", choice.ModelID)
	}
}

func TestSelectModel_FallsBackWhenTierUnavailable(t *testing.T) {
	available := []ModelInfo{{ID: "gemini-3-flash", Name: "Flash"}}
	complexity := ComplexityAssessment{Tier: "xhigh"}
	choice := SelectModel(complexity, available, "", "")
	if choice.ModelID != "gemini-3-flash" {
		t.Fatalf("expected fallback to the only available model, got %s", choice.ModelID)
	}
}

func TestSelectModel_ExcludesCurrentModel(t *testing.T) {
	available := []ModelInfo{{ID: "sonnet-4.5", Name: "Sonnet"}}
	complexity := ComplexityAssessment{Tier: "mid"}
	choice := SelectModel(complexity, available, "sonnet-4.5", "")
	if choice.ModelID != "auto" {
		t.Fatalf("expected fallback to auto when only candidate excluded, got %s", choice.ModelID)
	}
}

func TestSelectModel_UltimateFallbackIsAuto(t *testing.T) {
	complexity := ComplexityAssessment{Tier: "mid"}
	choice := SelectModel(complexity, nil, "", "")
	if choice.ModelID != "auto" {
		t.Fatalf("expected auto with no available models, got %s", choice.ModelID)
	}
}

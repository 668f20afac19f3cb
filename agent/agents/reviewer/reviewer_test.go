package reviewer

import (
	"context"
	"testing"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

func hasIssue(verdict contractx.Verdict, issue string) bool {
	for _, got := range verdict.Issues {
		if got == issue {
			return true
		}
	}
	return false
}

func TestReviewApprovesCompleteDraft(t *testing.T) {
	t.Parallel()

	r := New(Config{})
	verdict, err := r.Review(context.Background(), contractx.ReviewRequest{
		Query:    "I was charged twice",
		Category: contractx.CategoryBilling,
		Draft: "Hello, thank you for reaching out. I understand you were charged twice and that was " +
			"frustrating. We will refund the duplicate charge right away. If you need anything further, " +
			"let me know.",
	})
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if verdict.Decision != contractx.DecisionApprove {
		t.Fatalf("expected APPROVE, got %s with issues %v", verdict.Decision, verdict.Issues)
	}
	if verdict.Score != 100 {
		t.Fatalf("expected score 100, got %d", verdict.Score)
	}
}

func TestReviewBriefDraftScoresZero(t *testing.T) {
	t.Parallel()

	r := New(Config{})
	verdict, err := r.Review(context.Background(), contractx.ReviewRequest{
		Query:    "Why was my subscription charged twice and when will the refund arrive?",
		Category: contractx.CategoryBilling,
		Draft:    "ok",
	})
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if verdict.Decision != contractx.DecisionRevise {
		t.Fatalf("expected REVISE, got %s", verdict.Decision)
	}
	if verdict.Score != 0 {
		t.Fatalf("penalties must floor at zero, got %d", verdict.Score)
	}
	if !hasIssue(verdict, IssueTooBrief) {
		t.Fatalf("expected %q, got %v", IssueTooBrief, verdict.Issues)
	}
	if !hasIssue(verdict, IssueOpenQuestion) {
		t.Fatalf("expected %q, got %v", IssueOpenQuestion, verdict.Issues)
	}
}

func TestReviewScorePerIssue(t *testing.T) {
	t.Parallel()

	r := New(Config{})
	// Complete in every respect except empathy.
	verdict, err := r.Review(context.Background(), contractx.ReviewRequest{
		Query:    "I was charged twice",
		Category: contractx.CategoryBilling,
		Draft: "Hello, thank you for reaching out. You were charged twice and I was able to confirm " +
			"the duplicate. We will reverse it right away. If you need anything further, let me know.",
	})
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if !hasIssue(verdict, IssueNeedsEmpathy) {
		t.Fatalf("expected empathy issue, got %v", verdict.Issues)
	}
	if len(verdict.Issues) != 1 {
		t.Fatalf("expected exactly one issue, got %v", verdict.Issues)
	}
	if verdict.Score != 80 {
		t.Fatalf("one issue must score 80, got %d", verdict.Score)
	}
	if verdict.Decision != contractx.DecisionRevise {
		t.Fatalf("80 is below the default threshold, got %s", verdict.Decision)
	}
}

func TestReviewCustomThreshold(t *testing.T) {
	t.Parallel()

	r := New(Config{ApprovalThreshold: 80})
	verdict, err := r.Review(context.Background(), contractx.ReviewRequest{
		Query:    "I was charged twice",
		Category: contractx.CategoryBilling,
		Draft: "Hello, thank you for reaching out. You were charged twice and I was able to confirm " +
			"the duplicate. We will reverse it right away. If you need anything further, let me know.",
	})
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if verdict.Decision != contractx.DecisionApprove {
		t.Fatalf("score %d should pass a threshold of 80, got %s", verdict.Score, verdict.Decision)
	}
}

func TestReviewGeneralQueryWithoutProblemNeedsNoEmpathy(t *testing.T) {
	t.Parallel()

	r := New(Config{})
	verdict, err := r.Review(context.Background(), contractx.ReviewRequest{
		Query:    "what plans do you offer",
		Category: contractx.CategoryGeneral,
		Draft: "Hello, thank you for asking. We offer Basic, Premium, and Enterprise plans and you can " +
			"compare what each plan includes on our pricing page. Let me know if you want details.",
	})
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if hasIssue(verdict, IssueNeedsEmpathy) {
		t.Fatalf("general non-problem query must not demand empathy, got %v", verdict.Issues)
	}
	if verdict.Decision != contractx.DecisionApprove {
		t.Fatalf("expected APPROVE, got %s with %v", verdict.Decision, verdict.Issues)
	}
}

func TestReviewDeterministic(t *testing.T) {
	t.Parallel()

	r := New(Config{})
	req := contractx.ReviewRequest{
		Query:    "the system is broken",
		Category: contractx.CategoryTechnical,
		Draft:    "short",
	}

	first, err := r.Review(context.Background(), req)
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	second, err := r.Review(context.Background(), req)
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if first.Score != second.Score || first.Decision != second.Decision ||
		len(first.Issues) != len(second.Issues) {
		t.Fatalf("verdicts must be deterministic: %+v vs %+v", first, second)
	}
}

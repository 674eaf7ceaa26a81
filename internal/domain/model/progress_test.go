package model

import "testing"

func TestProgressSelfCorrection(t *testing.T) {
	p := &Progress{
		UserID:            "user-1",
		TopicID:           "topic-1",
		ProblemsSolved:    7,
		ProblemsAttempted: 5,
	}
	p.Normalize()
	if p.ProblemsAttempted != 7 {
		t.Errorf("ProblemsAttempted = %d, want raised to 7", p.ProblemsAttempted)
	}

	// Idempotent: re-saving the corrected record is a no-op.
	p.Normalize()
	if p.ProblemsAttempted != 7 {
		t.Errorf("second Normalize changed ProblemsAttempted to %d", p.ProblemsAttempted)
	}

	// The other direction is left alone.
	q := &Progress{UserID: "u", TopicID: "t", ProblemsSolved: 2, ProblemsAttempted: 9}
	q.Normalize()
	if q.ProblemsAttempted != 9 {
		t.Errorf("ProblemsAttempted = %d, want 9 untouched", q.ProblemsAttempted)
	}
}

func TestProgressValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Progress)
		wantErr bool
	}{
		{"valid", func(p *Progress) {}, false},
		{"missing user", func(p *Progress) { p.UserID = "" }, true},
		{"missing topic", func(p *Progress) { p.TopicID = "" }, true},
		{"negative solved", func(p *Progress) { p.ProblemsSolved = -1 }, true},
		{"negative score", func(p *Progress) { p.TotalScore = -1 }, true},
		{"completion above 100", func(p *Progress) { p.CompletionPercentage = 101 }, true},
		{"negative tier count", func(p *Progress) { p.DifficultyBreakdown.Hard.Total = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Progress{UserID: "user-1", TopicID: "topic-1", ProblemsSolved: 1, ProblemsAttempted: 2}
			tt.mutate(p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProgressSuccessRate(t *testing.T) {
	p := &Progress{ProblemsSolved: 3, ProblemsAttempted: 4}
	if got := p.SuccessRate(); got != 75 {
		t.Errorf("SuccessRate() = %v, want 75", got)
	}
	p = &Progress{}
	if got := p.SuccessRate(); got != 0 {
		t.Errorf("SuccessRate() with zero attempted = %v, want 0", got)
	}
}

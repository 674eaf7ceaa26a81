package service

import (
	"context"
	"errors"
	"testing"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/domain/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type submissionFixture struct {
	svc        *SubmissionService
	users      *fakeUserRepo
	progress   *fakeProgressRepo
	userID     string
	assignment *model.Assignment
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	users := newFakeUserRepo()
	assignments := newFakeAssignmentRepo()
	topics := newFakeTopicRepo()
	progress := newFakeProgressRepo()
	subs := &fakeSubmissionRepo{}

	user := &model.User{ID: uuid.NewString(), Name: "Asha Rao", Email: "asha@example.com", Password: "hash"}
	user.Normalize()
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	topic := &model.Topic{ID: uuid.NewString(), Name: "Arrays", TotalProblems: 4, IsActive: true}
	topic.Normalize()
	if err := topics.Create(context.Background(), topic); err != nil {
		t.Fatalf("seed topic: %v", err)
	}

	a := &model.Assignment{
		ID:               uuid.NewString(),
		Title:            "Two Sum",
		ProblemStatement: "Find two numbers that add up to the target.",
		ProblemType:      model.ProblemTypeCoding,
		Difficulty:       model.DifficultyEasy,
		CategoryID:       topic.ID,
		Score:            10,
		TimeLimit:        60,
		MaxAttempts:      2,
		TestCases:        []model.TestCase{{Input: "1 2", Output: "3"}},
	}
	a.Normalize()
	if err := assignments.Create(context.Background(), a); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	progressSvc := NewProgressService(progress, topics, zap.NewNop())
	svc := NewSubmissionService(subs, assignments, users, progressSvc, zap.NewNop())
	return &submissionFixture{svc: svc, users: users, progress: progress, userID: user.ID, assignment: a}
}

func passingRequest(f *submissionFixture) RecordSubmissionRequest {
	return RecordSubmissionRequest{
		UserID:          f.userID,
		AssignmentID:    f.assignment.ID,
		SubmittedCode:   "function twoSum() {}",
		LanguageUsed:    model.LangJavaScript,
		Result:          model.ResultPassed,
		ScoreEarned:     10,
		TestCasesPassed: 1,
		TotalTestCases:  1,
		ExecutionTime:   120,
		MemoryUsed:      16,
	}
}

func TestRecordNumbersAttemptsSequentially(t *testing.T) {
	f := newSubmissionFixture(t)
	req := passingRequest(f)
	req.Result = model.ResultFailed
	req.TestCasesPassed = 0
	req.ScoreEarned = 0

	first, err := f.svc.Record(context.Background(), req)
	if err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	second, err := f.svc.Record(context.Background(), req)
	if err != nil {
		t.Fatalf("second submission failed: %v", err)
	}
	if first.AttemptNumber != 1 || second.AttemptNumber != 2 {
		t.Errorf("attempts numbered %d then %d, want 1 then 2", first.AttemptNumber, second.AttemptNumber)
	}
}

func TestRecordEnforcesMaxAttempts(t *testing.T) {
	f := newSubmissionFixture(t)
	req := passingRequest(f)
	req.Result = model.ResultFailed
	req.TestCasesPassed = 0
	req.ScoreEarned = 0

	for i := 0; i < f.assignment.MaxAttempts; i++ {
		if _, err := f.svc.Record(context.Background(), req); err != nil {
			t.Fatalf("attempt %d failed: %v", i+1, err)
		}
	}
	if _, err := f.svc.Record(context.Background(), req); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("expected ErrForbidden past the attempt ceiling, got %v", err)
	}
}

func TestRecordRejectsDisallowedLanguage(t *testing.T) {
	f := newSubmissionFixture(t)
	req := passingRequest(f)
	req.LanguageUsed = model.LangCpp

	if _, err := f.svc.Record(context.Background(), req); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for disallowed language, got %v", err)
	}
}

func TestRecordPassedUpdatesProgressAndCounters(t *testing.T) {
	f := newSubmissionFixture(t)
	if _, err := f.svc.Record(context.Background(), passingRequest(f)); err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	p, err := f.progress.FindByUserAndTopic(context.Background(), f.userID, f.assignment.CategoryID)
	if err != nil {
		t.Fatalf("progress record missing: %v", err)
	}
	if p.ProblemsSolved != 1 || p.ProblemsAttempted != 1 {
		t.Errorf("solved/attempted = %d/%d, want 1/1", p.ProblemsSolved, p.ProblemsAttempted)
	}
	if p.TotalScore != f.assignment.Score {
		t.Errorf("total score %d, want %d", p.TotalScore, f.assignment.Score)
	}
	if p.DifficultyBreakdown.Easy.Solved != 1 {
		t.Errorf("easy tier solved %d, want 1", p.DifficultyBreakdown.Easy.Solved)
	}
	if p.CompletionPercentage != 25 {
		t.Errorf("completion %.1f, want 25 (1 of 4 problems)", p.CompletionPercentage)
	}
	if p.LastSolvedAt == nil {
		t.Error("last_solved_at not stamped")
	}

	user, _ := f.users.FindByID(context.Background(), f.userID)
	if user.TotalProblemsSolved != 1 || user.CurrentStreak != 1 || user.MaxStreak != 1 {
		t.Errorf("user counters = %d/%d/%d, want 1/1/1",
			user.TotalProblemsSolved, user.CurrentStreak, user.MaxStreak)
	}
}

func TestRecordFailedLeavesProgressUntouched(t *testing.T) {
	f := newSubmissionFixture(t)
	req := passingRequest(f)
	req.Result = model.ResultFailed
	req.TestCasesPassed = 0
	req.ScoreEarned = 0

	if _, err := f.svc.Record(context.Background(), req); err != nil {
		t.Fatalf("submission failed: %v", err)
	}
	if _, err := f.progress.FindByUserAndTopic(context.Background(), f.userID, f.assignment.CategoryID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("failed submissions must not create progress, got %v", err)
	}
	user, _ := f.users.FindByID(context.Background(), f.userID)
	if user.TotalProblemsSolved != 0 {
		t.Errorf("counters must not move on failure, got %d", user.TotalProblemsSolved)
	}
}

func TestRecordUnknownAssignmentRejected(t *testing.T) {
	f := newSubmissionFixture(t)
	req := passingRequest(f)
	req.AssignmentID = "missing"

	if _, err := f.svc.Record(context.Background(), req); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/domain/model"
	"codeprep_backend/internal/domain/repository"
)

// In-memory repository fakes backing the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate email: %w", common.ErrConflict)
		}
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByVerificationTokenHash(_ context.Context, hash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.VerificationTokenHash != "" && u.VerificationTokenHash == hash {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByResetTokenHash(_ context.Context, hash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetTokenHash != "" && u.ResetTokenHash == hash {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*model.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*model.Payment)}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.RazorpayOrderID == p.RazorpayOrderID {
			return fmt.Errorf("duplicate order: %w", common.ErrConflict)
		}
	}
	c := *p
	r.payments[p.ID] = &c
	return nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakePaymentRepo) FindByOrderID(_ context.Context, orderID string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.RazorpayOrderID == orderID {
			c := *p
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakePaymentRepo) ListByUser(_ context.Context, userID string) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.ID]; !ok {
		return common.ErrNotFound
	}
	c := *p
	r.payments[p.ID] = &c
	return nil
}

type fakeSubmissionRepo struct {
	mu   sync.Mutex
	subs []*model.Submission
}

func (r *fakeSubmissionRepo) Create(_ context.Context, s *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *s
	r.subs = append(r.subs, &c)
	return nil
}

func (r *fakeSubmissionRepo) FindByID(_ context.Context, id string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeSubmissionRepo) CountByUserAndAssignment(_ context.Context, userID, assignmentID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.subs {
		if s.UserID == userID && s.AssignmentID == assignmentID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubmissionRepo) ListByUser(_ context.Context, userID string, limit int64) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Submission
	for _, s := range r.subs {
		if s.UserID == userID {
			c := *s
			out = append(out, &c)
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListByAssignment(_ context.Context, assignmentID string, limit int64) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Submission
	for _, s := range r.subs {
		if s.AssignmentID == assignmentID {
			c := *s
			out = append(out, &c)
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]*model.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[string]*model.Assignment)}
}

func (r *fakeAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *a
	r.assignments[a.ID] = &c
	return nil
}

func (r *fakeAssignmentRepo) FindByID(_ context.Context, id string) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *fakeAssignmentRepo) FindBySlug(_ context.Context, slug string) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.Slug == slug {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeAssignmentRepo) List(_ context.Context, _ repository.AssignmentFilter) ([]*model.Assignment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Assignment
	for _, a := range r.assignments {
		c := *a
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[a.ID]; !ok {
		return common.ErrNotFound
	}
	c := *a
	r.assignments[a.ID] = &c
	return nil
}

type fakeProgressRepo struct {
	mu      sync.Mutex
	records map[string]*model.Progress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[string]*model.Progress)}
}

func progressKey(userID, topicID string) string {
	return userID + "/" + topicID
}

func (r *fakeProgressRepo) FindByUserAndTopic(_ context.Context, userID, topicID string) (*model.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[progressKey(userID, topicID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID string) ([]*model.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Progress
	for _, p := range r.records {
		if p.UserID == userID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) Save(_ context.Context, p *model.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *p
	r.records[progressKey(p.UserID, p.TopicID)] = &c
	return nil
}

type fakeTopicRepo struct {
	mu     sync.Mutex
	topics map[string]*model.Topic
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{topics: make(map[string]*model.Topic)}
}

func (r *fakeTopicRepo) Create(_ context.Context, topic *model.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *topic
	r.topics[topic.ID] = &c
	return nil
}

func (r *fakeTopicRepo) FindByID(_ context.Context, id string) (*model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeTopicRepo) FindBySlug(_ context.Context, slug string) (*model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.topics {
		if t.Slug == slug {
			c := *t
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeTopicRepo) List(_ context.Context, activeOnly bool) ([]*model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Topic
	for _, t := range r.topics {
		if activeOnly && !t.IsActive {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeTopicRepo) ListChildren(_ context.Context, parentID string) ([]*model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Topic
	for _, t := range r.topics {
		if t.ParentTopicID != nil && *t.ParentTopicID == parentID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeTopicRepo) Update(_ context.Context, topic *model.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[topic.ID]; !ok {
		return common.ErrNotFound
	}
	c := *topic
	r.topics[topic.ID] = &c
	return nil
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/survivalcast/survivalcast-go/internal/model"
	"github.com/survivalcast/survivalcast-go/internal/predictor"
	"github.com/survivalcast/survivalcast-go/internal/repository"
)

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID int64
	err    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.users[user.Email] = &stored
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeClassifier struct {
	result predictor.Result
	err    error
	calls  []predictor.Features
}

func (f *fakeClassifier) Classify(features predictor.Features) (predictor.Result, error) {
	f.calls = append(f.calls, features)
	return f.result, f.err
}

type fakeLedger struct {
	mu      sync.Mutex
	records []model.Prediction
	err     error
}

func (f *fakeLedger) Create(_ context.Context, p *model.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	p.ID = int64(len(f.records) + 1)
	p.CreatedAt = time.Date(2024, 4, 15, 12, 0, len(f.records), 0, time.UTC)
	f.records = append(f.records, *p)
	return nil
}

func (f *fakeLedger) ListByUser(_ context.Context, email string) ([]model.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Prediction
	for _, r := range f.records {
		if r.UserEmail == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLedger) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.records)), nil
}

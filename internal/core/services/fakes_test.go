package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

type fakePollRepo struct {
	polls map[uuid.UUID]*domain.Poll
}

func newFakePollRepo(polls ...*domain.Poll) *fakePollRepo {
	r := &fakePollRepo{polls: make(map[uuid.UUID]*domain.Poll)}
	for _, p := range polls {
		r.polls[p.ID] = p
	}
	return r
}

func (r *fakePollRepo) Save(_ context.Context, poll *domain.Poll) error {
	r.polls[poll.ID] = poll
	return nil
}

func (r *fakePollRepo) Update(_ context.Context, poll *domain.Poll, _ bool) error {
	if _, ok := r.polls[poll.ID]; !ok {
		return domain.ErrPollNotFound
	}
	r.polls[poll.ID] = poll
	return nil
}

func (r *fakePollRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Poll, error) {
	poll, ok := r.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return poll, nil
}

func (r *fakePollRepo) ListActive(_ context.Context) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for _, p := range r.polls {
		if p.IsActive {
			polls = append(polls, p)
		}
	}
	return polls, nil
}

func (r *fakePollRepo) List(_ context.Context, _ ports.PollFilter) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for _, p := range r.polls {
		polls = append(polls, p)
	}
	return polls, nil
}

func (r *fakePollRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	delete(r.polls, id)
	return nil
}

// fakeResponseRepo mimics the poll+identity uniqueness behavior of the
// postgres store, including injected creation conflicts for race tests.
type fakeResponseRepo struct {
	mu        sync.Mutex
	responses map[uuid.UUID]*domain.Response

	// conflictOnCreate simulates losing the creation race: the next create
	// fails with ErrDuplicateResponse after a competing response row appears.
	conflictOnCreate int
	// alwaysConflict makes every create fail without a competing row, for
	// exercising the second-conflict path.
	alwaysConflict bool

	saveCalls int
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{responses: make(map[uuid.UUID]*domain.Response)}
}

func (r *fakeResponseRepo) FindByPollAndUser(_ context.Context, pollID, userID uuid.UUID) (*domain.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if resp.PollID == pollID && resp.UserID != nil && *resp.UserID == userID {
			return resp, nil
		}
	}
	return nil, nil
}

func (r *fakeResponseRepo) FindByPollAndAnonymousToken(_ context.Context, pollID uuid.UUID, token string) (*domain.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if resp.PollID == pollID && resp.AnonymousID != nil && *resp.AnonymousID == token {
			return resp, nil
		}
	}
	return nil, nil
}

func (r *fakeResponseRepo) Save(_ context.Context, response *domain.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++

	if response.ID == uuid.Nil {
		if r.alwaysConflict {
			return fmt.Errorf("%w: simulated conflict", domain.ErrDuplicateResponse)
		}
		if r.conflictOnCreate > 0 {
			r.conflictOnCreate--
			// The competing request won the race and inserted its row.
			winner := &domain.Response{
				ID:          uuid.New(),
				PollID:      response.PollID,
				UserID:      response.UserID,
				AnonymousID: response.AnonymousID,
				IPAddress:   response.IPAddress,
			}
			r.responses[winner.ID] = winner
			return fmt.Errorf("%w: simulated conflict", domain.ErrDuplicateResponse)
		}
		for _, existing := range r.responses {
			if existing.PollID == response.PollID && sameIdentity(existing, response) {
				return fmt.Errorf("%w: duplicate key", domain.ErrDuplicateResponse)
			}
		}
		response.ID = uuid.New()
	}

	stored := *response
	stored.Answers = append([]domain.Answer(nil), response.Answers...)
	for i := range stored.Answers {
		stored.Answers[i].ResponseID = stored.ID
	}
	r.responses[stored.ID] = &stored
	return nil
}

func (r *fakeResponseRepo) ListByPoll(_ context.Context, pollID uuid.UUID) ([]*domain.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var responses []*domain.Response
	for _, resp := range r.responses {
		if resp.PollID == pollID {
			responses = append(responses, resp)
		}
	}
	return responses, nil
}

func (r *fakeResponseRepo) ExistsForIdentity(ctx context.Context, pollID uuid.UUID, identity domain.VoterIdentity) (bool, error) {
	if identity.IsAnonymous() {
		resp, err := r.FindByPollAndAnonymousToken(ctx, pollID, identity.AnonymousToken)
		return resp != nil, err
	}
	resp, err := r.FindByPollAndUser(ctx, pollID, identity.UserID)
	return resp != nil, err
}

func (r *fakeResponseRepo) CountByPoll(_ context.Context, pollID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, resp := range r.responses {
		if resp.PollID == pollID {
			count++
		}
	}
	return count, nil
}

func sameIdentity(a, b *domain.Response) bool {
	if a.UserID != nil && b.UserID != nil {
		return *a.UserID == *b.UserID
	}
	if a.AnonymousID != nil && b.AnonymousID != nil {
		return *a.AnonymousID == *b.AnonymousID
	}
	return false
}

type fakeOptionRepo struct {
	known map[uuid.UUID]bool
}

func newFakeOptionRepo(ids ...uuid.UUID) *fakeOptionRepo {
	r := &fakeOptionRepo{known: make(map[uuid.UUID]bool)}
	for _, id := range ids {
		r.known[id] = true
	}
	return r
}

func (r *fakeOptionRepo) Exist(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if r.known[id] {
			result[id] = true
		}
	}
	return result, nil
}

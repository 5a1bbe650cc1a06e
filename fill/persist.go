package fill

import (
	"context"
	"time"

	"github.com/escform/escform/log"
	"github.com/escform/escform/model"
)

// ResponseStore is the persistence collaborator of a fill session. Both
// operations must be idempotent with respect to retries given the same
// response id.
type ResponseStore interface {
	// CreateDraft persists a new partial response and returns it with the
	// store-assigned id.
	CreateDraft(ctx context.Context, rsp model.Response) (model.Response, error)
	// Update overwrites the data of an existing draft.
	Update(ctx context.Context, rsp model.Response) (model.Response, error)
	// Finalize marks the response COMPLETED. When rsp.ID is empty the
	// store must create-and-complete in one request.
	Finalize(ctx context.Context, rsp model.Response) (model.Response, error)
}

// persister sequences the response store calls of one fill-through: a single
// draft creation on the first meaningful advance, draft updates afterwards,
// one finalize at submit. Draft failures are non-fatal and retried lazily;
// finalize failures are fatal to the submit attempt.
type persister struct {
	store      ResponseStore
	formID     string
	responseID string
	startedAt  time.Time
	now        func() time.Time
}

func newPersister(store ResponseStore, formID string, now func() time.Time) *persister {
	return &persister{
		store:  store,
		formID: formID,
		now:    now,
	}
}

func (p *persister) reset() {
	p.responseID = ""
	p.startedAt = time.Time{}
}

// saveDraft creates or updates the draft for the current answers. Errors are
// swallowed: losing "resume later" never blocks in-session progress.
func (p *persister) saveDraft(ctx context.Context, userID *string, answers model.AnswerMap) {
	if p.store == nil || len(answers) == 0 {
		return
	}

	now := p.now()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	rsp := model.Response{
		ID:          p.responseID,
		FormID:      p.formID,
		UserID:      userID,
		Status:      model.StatusDraft,
		Data:        answers.Clone(),
		PartialSave: true,
		StartedAt:   p.startedAt,
		UpdatedAt:   now,
	}

	if p.responseID == "" {
		created, err := p.store.CreateDraft(ctx, rsp)
		if err != nil {
			log.Warnf("fill.draft.create: %s", err)
			return
		}
		p.responseID = created.ID
		return
	}

	if _, err := p.store.Update(ctx, rsp); err != nil {
		log.Warnf("fill.draft.update: %s", err)
	}
}

// finalize transitions the response to COMPLETED. Every finalize of a session
// that produced a draft carries that draft's id; without one the store
// creates-and-completes in a single request.
func (p *persister) finalize(ctx context.Context, userID *string, answers model.AnswerMap) (model.Response, error) {
	now := p.now()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	rsp := model.Response{
		ID:          p.responseID,
		FormID:      p.formID,
		UserID:      userID,
		Status:      model.StatusCompleted,
		Data:        answers.Clone(),
		PartialSave: false,
		StartedAt:   p.startedAt,
		UpdatedAt:   now,
	}

	completed, err := p.store.Finalize(ctx, rsp)
	if err != nil {
		return model.Response{}, &PersistenceError{Op: "finalize", Err: err}
	}
	p.responseID = completed.ID
	return completed, nil
}

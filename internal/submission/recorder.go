package submission

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Sink persists a record under its id.
type Sink interface {
	Save(ctx context.Context, id int64, r Record) error
}

// Notifier tells reviewers about a passing submission.
type Notifier interface {
	Notify(ctx context.Context, id int64, sender string) error
}

// Emitter receives completion events.
type Emitter interface {
	Emit(ctx context.Context, typ, key string, payload any) error
}

const EventRecorded = "SubmissionRecorded"

// Recorder runs the once-per-completion side effects in order: sinks,
// events, then the reviewer notification for passing scores. Nothing is
// retried; failures are logged and returned together.
type Recorder struct {
	ids      *IDs
	sinks    []Sink
	emitters []Emitter
	notifier Notifier
}

func NewRecorder(ids *IDs, sinks ...Sink) *Recorder {
	if ids == nil {
		ids = NewIDs()
	}
	return &Recorder{ids: ids, sinks: sinks}
}

func (r *Recorder) WithEmitters(e ...Emitter) *Recorder {
	r.emitters = append(r.emitters, e...)
	return r
}
func (r *Recorder) WithNotifier(n Notifier) *Recorder { r.notifier = n; return r }

// NextID reserves the id a completed session is stored under. Callers
// persist it with the session before calling Deliver.
func (r *Recorder) NextID() int64 { return r.ids.Next() }

// Record assigns an id and runs the side effects. The id is valid even when
// err is non-nil.
func (r *Recorder) Record(ctx context.Context, rec Record) (int64, error) {
	id := r.NextID()
	return id, r.Deliver(ctx, id, rec)
}

// Deliver runs the side effects for an already assigned id.
func (r *Recorder) Deliver(ctx context.Context, id int64, rec Record) error {
	var errs []error
	for _, s := range r.sinks {
		if err := s.Save(ctx, id, rec); err != nil {
			log.Printf("submission %d: save failed: %v", id, err)
			errs = append(errs, fmt.Errorf("save: %w", err))
		}
	}
	payload := map[string]any{
		"id":         id,
		"user_email": rec.UserEmail,
		"quiz_name":  rec.QuizName,
		"score":      rec.Score,
		"pass":       rec.Pass,
	}
	for _, e := range r.emitters {
		if err := e.Emit(ctx, EventRecorded, fmt.Sprint(id), payload); err != nil {
			log.Printf("submission %d: event failed: %v", id, err)
			errs = append(errs, fmt.Errorf("event: %w", err))
		}
	}
	if rec.Pass && r.notifier != nil {
		if err := r.notifier.Notify(ctx, id, rec.UserEmail); err != nil {
			log.Printf("submission %d: notify failed: %v", id, err)
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}
	return errors.Join(errs...)
}

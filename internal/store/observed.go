package store

import (
	"context"
	"time"

	"portfolio/pkg/models"
)

// Observe wraps st so that every successful write is reported to emit.
// The TCP change feed and the read cache hang off this hook.
func Observe(st Store, emit func(models.ChangeEvent)) Store {
	return &observed{Store: st, emit: emit}
}

type observed struct {
	Store
	emit func(models.ChangeEvent)
}

func (o *observed) report(op string, ref DocRef) {
	o.emit(models.ChangeEvent{
		Op:         op,
		Collection: ref.Collection,
		DocID:      ref.ID,
		Timestamp:  time.Now().Unix(),
	})
}

func (o *observed) Add(ctx context.Context, collection string, data map[string]any) (DocRef, error) {
	ref, err := o.Store.Add(ctx, collection, data)
	if err == nil {
		o.report("add", ref)
	}
	return ref, err
}

func (o *observed) Set(ctx context.Context, ref DocRef, data map[string]any, merge bool) error {
	err := o.Store.Set(ctx, ref, data, merge)
	if err == nil {
		o.report("set", ref)
	}
	return err
}

func (o *observed) Update(ctx context.Context, ref DocRef, data map[string]any) error {
	err := o.Store.Update(ctx, ref, data)
	if err == nil {
		o.report("update", ref)
	}
	return err
}

func (o *observed) Delete(ctx context.Context, ref DocRef) error {
	err := o.Store.Delete(ctx, ref)
	if err == nil {
		o.report("delete", ref)
	}
	return err
}

func (o *observed) Increment(ctx context.Context, ref DocRef, field string, delta int64) error {
	err := o.Store.Increment(ctx, ref, field, delta)
	if err == nil {
		o.report("increment", ref)
	}
	return err
}

package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the managed backend. Realtime listeners map onto Firestore snapshot
// streams, so writes made by other clients are observed too.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Close() error { return s.client.Close() }

func (s *FirestoreStore) doc(ref DocRef) *firestore.DocumentRef {
	return s.client.Collection(ref.Collection).Doc(ref.ID)
}

func (s *FirestoreStore) query(q Query) firestore.Query {
	fq := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, "==", f.Value)
	}
	if q.Order != nil {
		dir := firestore.Asc
		if q.Order.Dir == Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.Order.Field, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq
}

func (s *FirestoreStore) Get(ctx context.Context, ref DocRef) (Document, error) {
	snap, err := s.doc(ref).Get(ctx)
	if err != nil {
		return Document{}, mapFirestoreErr(err)
	}
	return fromSnapshot(ref.Collection, snap), nil
}

func (s *FirestoreStore) List(ctx context.Context, q Query) ([]Document, error) {
	snaps, err := s.query(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapFirestoreErr(err)
	}
	return fromSnapshots(q.Collection, snaps), nil
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, data map[string]any) (DocRef, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, toFirestore(data))
	if err != nil {
		return DocRef{}, mapFirestoreErr(err)
	}
	return DocRef{Collection: collection, ID: ref.ID}, nil
}

func (s *FirestoreStore) Set(ctx context.Context, ref DocRef, data map[string]any, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	_, err := s.doc(ref).Set(ctx, toFirestore(data), opts...)
	return mapFirestoreErr(err)
}

func (s *FirestoreStore) Update(ctx context.Context, ref DocRef, data map[string]any) error {
	conv := toFirestore(data)
	updates := make([]firestore.Update, 0, len(conv))
	for k, v := range conv {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	_, err := s.doc(ref).Update(ctx, updates)
	return mapFirestoreErr(err)
}

func (s *FirestoreStore) Delete(ctx context.Context, ref DocRef) error {
	_, err := s.doc(ref).Delete(ctx)
	return mapFirestoreErr(err)
}

func (s *FirestoreStore) Increment(ctx context.Context, ref DocRef, field string, delta int64) error {
	_, err := s.doc(ref).Set(ctx, map[string]any{field: firestore.Increment(delta)}, firestore.MergeAll)
	return mapFirestoreErr(err)
}

func (s *FirestoreStore) Listen(ctx context.Context, target Target) (Iterator, error) {
	switch t := target.(type) {
	case DocRef:
		return &firestoreDocIterator{collection: t.Collection, it: s.doc(t).Snapshots(ctx)}, nil
	case Query:
		return &firestoreQueryIterator{collection: t.Collection, it: s.query(t).Snapshots(ctx)}, nil
	}
	return nil, fmt.Errorf("unsupported target %T", target)
}

type firestoreDocIterator struct {
	collection string
	it         *firestore.DocumentSnapshotIterator
}

func (i *firestoreDocIterator) Next(context.Context) (Snapshot, error) {
	snap, err := i.it.Next()
	if err != nil {
		return Snapshot{}, mapFirestoreErr(err)
	}
	if !snap.Exists() {
		return Snapshot{}, nil
	}
	return Snapshot{Docs: []Document{fromSnapshot(i.collection, snap)}}, nil
}

func (i *firestoreDocIterator) Stop() { i.it.Stop() }

type firestoreQueryIterator struct {
	collection string
	it         *firestore.QuerySnapshotIterator
}

func (i *firestoreQueryIterator) Next(context.Context) (Snapshot, error) {
	qs, err := i.it.Next()
	if err != nil {
		return Snapshot{}, mapFirestoreErr(err)
	}
	snaps, err := qs.Documents.GetAll()
	if err != nil {
		return Snapshot{}, mapFirestoreErr(err)
	}
	return Snapshot{Docs: fromSnapshots(i.collection, snaps)}, nil
}

func (i *firestoreQueryIterator) Stop() { i.it.Stop() }

func fromSnapshot(collection string, snap *firestore.DocumentSnapshot) Document {
	return Document{ID: snap.Ref.ID, Collection: collection, Data: DecodeData(snap.Data())}
}

func fromSnapshots(collection string, snaps []*firestore.DocumentSnapshot) []Document {
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, fromSnapshot(collection, snap))
	}
	return docs
}

func toFirestore(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch x := v.(type) {
		case serverTimestamp:
			out[k] = firestore.ServerTimestamp
		case map[string]any:
			out[k] = toFirestore(x)
		default:
			out[k] = v
		}
	}
	return out
}

func mapFirestoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, iterator.Done) {
		return ErrStopped
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", ErrFailedPrecondition, err)
	case codes.Canceled:
		return context.Canceled
	}
	return err
}

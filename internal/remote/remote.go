// Package remote is a store.Store that talks to the content service over gRPC, so the
// client core runs unchanged against a server it does not share memory with.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	grpcapi "portfolio/internal/grpc"
	"portfolio/internal/rules"
	"portfolio/internal/store"
)

type Store struct {
	client *grpcapi.Client
	conn   *gogrpc.ClientConn
	token  func() string
}

// Dial connects to addr. token is read on every call; an empty token calls unauthenticated.
func Dial(addr string, token func() string) (*Store, error) {
	conn, err := gogrpc.NewClient(addr, gogrpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial content service %s: %w", addr, err)
	}
	s := New(conn, token)
	s.conn = conn
	return s, nil
}

func New(cc gogrpc.ClientConnInterface, token func() string) *Store {
	if token == nil {
		token = func() string { return "" }
	}
	return &Store{client: grpcapi.NewClient(cc), token: token}
}

func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Store) outgoing(ctx context.Context) context.Context {
	if t := s.token(); t != "" {
		return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+t)
	}
	return ctx
}

func (s *Store) Get(ctx context.Context, ref store.DocRef) (store.Document, error) {
	in, err := grpcapi.EncodeRef(ref)
	if err != nil {
		return store.Document{}, err
	}
	out, err := s.client.Get(s.outgoing(ctx), in)
	if err != nil {
		return store.Document{}, grpcapi.FromStatus(err)
	}
	return grpcapi.DecodeDocument(out), nil
}

func (s *Store) List(ctx context.Context, q store.Query) ([]store.Document, error) {
	in, err := grpcapi.EncodeQuery(q)
	if err != nil {
		return nil, err
	}
	out, err := s.client.List(s.outgoing(ctx), in)
	if err != nil {
		return nil, grpcapi.FromStatus(err)
	}
	return grpcapi.DecodeSnapshot(out).Docs, nil
}

func (s *Store) write(ctx context.Context, w grpcapi.WriteRequest) (store.DocRef, error) {
	in, err := w.Encode()
	if err != nil {
		return store.DocRef{}, err
	}
	out, err := s.client.Write(s.outgoing(ctx), in)
	if err != nil {
		return store.DocRef{}, grpcapi.FromStatus(err)
	}
	return grpcapi.DecodeRef(out)
}

func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (store.DocRef, error) {
	return s.write(ctx, grpcapi.WriteRequest{Op: rules.OpAdd, Collection: collection, Data: data})
}

func (s *Store) Set(ctx context.Context, ref store.DocRef, data map[string]any, merge bool) error {
	_, err := s.write(ctx, grpcapi.WriteRequest{Op: rules.OpSet, Collection: ref.Collection, ID: ref.ID, Data: data, Merge: merge})
	return err
}

func (s *Store) Update(ctx context.Context, ref store.DocRef, data map[string]any) error {
	_, err := s.write(ctx, grpcapi.WriteRequest{Op: rules.OpUpdate, Collection: ref.Collection, ID: ref.ID, Data: data})
	return err
}

func (s *Store) Delete(ctx context.Context, ref store.DocRef) error {
	_, err := s.write(ctx, grpcapi.WriteRequest{Op: rules.OpDelete, Collection: ref.Collection, ID: ref.ID})
	return err
}

func (s *Store) Increment(ctx context.Context, ref store.DocRef, field string, delta int64) error {
	_, err := s.write(ctx, grpcapi.WriteRequest{Op: rules.OpIncrement, Collection: ref.Collection, ID: ref.ID, Field: field, Delta: delta})
	return err
}

// Listen opens a Subscribe stream. The stream lives until ctx ends or Stop is called.
func (s *Store) Listen(ctx context.Context, target store.Target) (store.Iterator, error) {
	in, err := grpcapi.EncodeTarget(target)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(s.outgoing(ctx))
	stream, err := s.client.Subscribe(ctx, in)
	if err != nil {
		cancel()
		return nil, grpcapi.FromStatus(err)
	}
	return &iterator{stream: stream, cancel: cancel}, nil
}

type iterator struct {
	stream *grpcapi.SubscribeStream
	cancel context.CancelFunc
}

func (it *iterator) Next(ctx context.Context) (store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return store.Snapshot{}, err
	}
	msg, err := it.stream.Recv()
	if errors.Is(err, io.EOF) {
		return store.Snapshot{}, store.ErrStopped
	}
	if err != nil {
		err = grpcapi.FromStatus(err)
		if errors.Is(err, context.Canceled) {
			return store.Snapshot{}, store.ErrStopped
		}
		return store.Snapshot{}, err
	}
	return grpcapi.DecodeSnapshot(msg), nil
}

func (it *iterator) Stop() { it.cancel() }

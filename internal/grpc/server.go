package grpc

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"portfolio/internal/auth"
	"portfolio/internal/rules"
	"portfolio/internal/store"
)

// Server implements portfolio.ContentService on top of a store. Every call is checked
// against the same rules as the HTTP API.
type Server struct {
	store  store.Store
	rules  rules.Rules
	secret []byte
}

func NewServer(st store.Store, r rules.Rules, secret []byte) *Server {
	return &Server{store: st, rules: r, secret: secret}
}

// Register attaches the service to gs.
func (s *Server) Register(gs *gogrpc.Server) { gs.RegisterService(&ServiceDesc, s) }

// claims reads the bearer token from the "authorization" metadata. A missing token is an
// unauthenticated caller (nil claims); a bad one is rejected.
func (s *Server) claims(ctx context.Context) (*auth.Claims, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return nil, nil
	}
	tokenStr, ok := auth.BearerToken(vals[0])
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "malformed authorization metadata")
	}
	claims, err := auth.ParseJWT(s.secret, tokenStr)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "invalid token")
	}
	return claims, nil
}

func (s *Server) check(ctx context.Context, op rules.Op, collection string) error {
	claims, err := s.claims(ctx)
	if err != nil {
		return err
	}
	if err := s.rules.Check(claims, op, collection); err != nil {
		return status.Errorf(codes.PermissionDenied, "%v", err)
	}
	return nil
}

func (s *Server) Get(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ref, err := DecodeRef(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if err := s.check(ctx, rules.OpRead, ref.Collection); err != nil {
		return nil, err
	}
	d, err := s.store.Get(ctx, ref)
	if err != nil {
		return nil, toStatus(err, "get "+ref.Key())
	}
	return EncodeDocument(d)
}

func (s *Server) List(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := DecodeQuery(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if err := s.check(ctx, rules.OpRead, q.Collection); err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, q)
	if err != nil {
		return nil, toStatus(err, "list "+q.Collection)
	}
	return EncodeSnapshot(store.Snapshot{Docs: docs})
}

// Write applies one mutation. The reply carries the document id, which matters for add.
func (s *Server) Write(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	w, err := DecodeWrite(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if err := s.check(ctx, w.Op, w.Collection); err != nil {
		return nil, err
	}
	ref := store.Doc(w.Collection, w.ID)
	switch w.Op {
	case rules.OpAdd:
		ref, err = s.store.Add(ctx, w.Collection, w.Data)
	case rules.OpSet:
		err = s.store.Set(ctx, ref, w.Data, w.Merge)
	case rules.OpUpdate:
		err = s.store.Update(ctx, ref, w.Data)
	case rules.OpDelete:
		err = s.store.Delete(ctx, ref)
	case rules.OpIncrement:
		if w.Field == "" {
			return nil, status.Errorf(codes.InvalidArgument, "increment needs a field")
		}
		err = s.store.Increment(ctx, ref, w.Field, w.Delta)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown op %q", w.Op)
	}
	if err != nil {
		return nil, toStatus(err, fmt.Sprintf("%s %s", w.Op, w.Collection))
	}
	return EncodeRef(ref)
}

// Subscribe streams a full snapshot of the target on every change until the client goes away.
func (s *Server) Subscribe(req *structpb.Struct, stream gogrpc.ServerStream) error {
	ctx := stream.Context()
	target, err := DecodeTarget(req)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if err := s.check(ctx, rules.OpRead, target.CollectionPath()); err != nil {
		return err
	}
	it, err := s.store.Listen(ctx, target)
	if err != nil {
		return toStatus(err, "listen "+target.Key())
	}
	defer it.Stop()

	log.WithField("target", target.Key()).Debug("gRPC subscription opened")
	for {
		snap, err := it.Next(ctx)
		if err != nil {
			if errors.Is(err, store.ErrStopped) || ctx.Err() != nil {
				log.WithField("target", target.Key()).Debug("gRPC subscription closed")
				return nil
			}
			return toStatus(err, "listen "+target.Key())
		}
		msg, err := EncodeSnapshot(snap)
		if err != nil {
			return status.Errorf(codes.Internal, "encode snapshot: %v", err)
		}
		if err := stream.SendMsg(msg); err != nil {
			return err
		}
	}
}

func toStatus(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s: not found", what)
	case errors.Is(err, store.ErrPermissionDenied):
		return status.Errorf(codes.PermissionDenied, "%v", err)
	case errors.Is(err, store.ErrFailedPrecondition):
		return status.Errorf(codes.FailedPrecondition, "%v", err)
	case errors.Is(err, store.ErrUnsupportedValue):
		return status.Errorf(codes.InvalidArgument, "%v", err)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%v", err)
	}
	log.WithError(err).Errorf("Failed to %s", what)
	return status.Errorf(codes.Internal, "failed to %s", what)
}

// FromStatus maps a service error back onto the store's sentinels.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", store.ErrNotFound, st.Message())
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %s", store.ErrPermissionDenied, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", store.ErrFailedPrecondition, st.Message())
	case codes.Canceled:
		return context.Canceled
	}
	return err
}

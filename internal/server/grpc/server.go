// Package grpcserver exposes the access decision services over gRPC.
package grpcserver

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/and161185/fortune-gate/internal/convert"
	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/server/grpc/gatev1"
	"github.com/and161185/fortune-gate/internal/service"
)

// Server wires services into gRPC handlers.
type Server struct {
	gatev1.UnimplementedAccessGateServer
	access  service.AccessService
	windows service.EnrollmentRegistry
	log     *zap.Logger
}

var _ gatev1.AccessGateServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(access service.AccessService, windows service.EnrollmentRegistry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{access: access, windows: windows, log: log}
}

func (s *Server) fail(op string, err error) error {
	st := toStatus(op, err)
	if status.Code(st) == codes.Internal {
		s.log.Error(op, zap.Error(err))
	}
	return st
}

func subject(ctx context.Context) (uuid.UUID, error) {
	id, ok := SubjectFromCtx(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "no auth")
	}
	return id, nil
}

func (s *Server) requireAdmin(ctx context.Context) error {
	id, err := subject(ctx)
	if err != nil {
		return err
	}
	if err := s.access.RequireAdmin(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrForbidden) {
			return status.Error(codes.PermissionDenied, "administrator required")
		}
		return s.fail("require admin", err)
	}
	return nil
}

// isAdmin reports whether the caller is an active administrator. Anonymous
// calls and lookup failures count as not.
func (s *Server) isAdmin(ctx context.Context) bool {
	id, ok := SubjectFromCtx(ctx)
	return ok && s.access.RequireAdmin(ctx, id) == nil
}

// --- Decisions ---

// CheckAccess runs the access decision for the caller, ignoring quota.
func (s *Server) CheckAccess(ctx context.Context, _ *gatev1.CheckAccessRequest) (*gatev1.Decision, error) {
	id, err := subject(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.access.CheckAccess(ctx, id)
	if err != nil {
		return nil, s.fail("check access", err)
	}
	return convert.ToWireDecision(d), nil
}

// CheckFullAccess runs the access decision for the caller, quota included.
func (s *Server) CheckFullAccess(ctx context.Context, _ *gatev1.CheckAccessRequest) (*gatev1.Decision, error) {
	id, err := subject(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.access.CheckFullAccess(ctx, id)
	if err != nil {
		return nil, s.fail("check full access", err)
	}
	return convert.ToWireDecision(d), nil
}

// CheckQuota answers the daily-quota question for the caller.
func (s *Server) CheckQuota(ctx context.Context, req *gatev1.CheckQuotaRequest) (*gatev1.QuotaResponse, error) {
	id, err := subject(ctx)
	if err != nil {
		return nil, err
	}
	q, err := s.access.CheckQuota(ctx, id, req.Organization)
	if err != nil {
		return nil, s.fail("check quota", err)
	}
	return convert.ToWireQuota(q), nil
}

// RecordUsage consumes the caller's allotment for today.
func (s *Server) RecordUsage(ctx context.Context, _ *gatev1.RecordUsageRequest) (*gatev1.RecordUsageResponse, error) {
	id, err := subject(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := s.access.RecordUsage(ctx, id)
	if err != nil {
		return nil, s.fail("record usage", err)
	}
	return convert.ToWireUsage(ev), nil
}

// --- Deletion cooldown ---

// CheckDeletionCooldown is called by registration before creating an account.
// It needs no identity; the expiry is only disclosed to administrators.
func (s *Server) CheckDeletionCooldown(ctx context.Context, req *gatev1.CooldownRequest) (*gatev1.CooldownResponse, error) {
	st, err := s.access.CheckDeletionCooldown(ctx, req.Email)
	if err != nil {
		return nil, s.fail("check cooldown", err)
	}
	resp := convert.ToWireCooldown(st)
	if resp.ExpiresAt != nil && !s.isAdmin(ctx) {
		resp.ExpiresAt = nil
	}
	return resp, nil
}

// PlaceDeletionCooldown is called by the account deletion flow with an
// administrator credential. Missing client details fall back to the call's
// user-agent and peer address.
func (s *Server) PlaceDeletionCooldown(ctx context.Context, req *gatev1.PlaceCooldownRequest) (*gatev1.PlaceCooldownResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	ua := req.UserAgent
	if strings.TrimSpace(ua) == "" {
		ua = userAgent(ctx)
	}
	ip := req.IP
	if strings.TrimSpace(ip) == "" {
		ip = remoteIP(ctx)
	}
	exp, err := s.access.PlaceDeletionCooldown(ctx, req.Email, ua, ip)
	if err != nil {
		return nil, s.fail("place cooldown", err)
	}
	return &gatev1.PlaceCooldownResponse{ExpiresAt: exp.UTC()}, nil
}

// --- Enrollment windows (administrators) ---

// ListWindows returns every configured window.
func (s *Server) ListWindows(ctx context.Context, _ *gatev1.ListWindowsRequest) (*gatev1.ListWindowsResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	ws, err := s.windows.List(ctx)
	if err != nil {
		return nil, s.fail("list windows", err)
	}
	return &gatev1.ListWindowsResponse{Windows: convert.ToWireWindows(ws)}, nil
}

// PutWindow creates or replaces an organization's window.
func (s *Server) PutWindow(ctx context.Context, req *gatev1.PutWindowRequest) (*gatev1.PutWindowResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	w, err := convert.FromWireWindow(req.Window)
	if err != nil {
		return nil, s.fail("put window", err)
	}
	out, err := s.windows.Put(ctx, w)
	if err != nil {
		return nil, s.fail("put window", err)
	}
	return &gatev1.PutWindowResponse{Window: convert.ToWireWindow(&out)}, nil
}

// DeleteWindow removes an organization's window.
func (s *Server) DeleteWindow(ctx context.Context, req *gatev1.DeleteWindowRequest) (*gatev1.DeleteWindowResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.windows.Delete(ctx, req.Organization); err != nil {
		return nil, s.fail("delete window", err)
	}
	return &gatev1.DeleteWindowResponse{}, nil
}

// --- peer helpers ---

func remoteAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return ""
}

// remoteIP is the peer host without port.
func remoteIP(ctx context.Context) string {
	addr := remoteAddr(ctx)
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func userAgent(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get("user-agent"); len(v) > 0 {
		return v[0]
	}
	return ""
}

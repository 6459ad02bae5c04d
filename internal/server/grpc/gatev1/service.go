package gatev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "fortunegate.v1.AccessGate"

// AccessGateServer is the server API for the AccessGate service.
type AccessGateServer interface {
	CheckAccess(context.Context, *CheckAccessRequest) (*Decision, error)
	CheckQuota(context.Context, *CheckQuotaRequest) (*QuotaResponse, error)
	CheckFullAccess(context.Context, *CheckAccessRequest) (*Decision, error)
	RecordUsage(context.Context, *RecordUsageRequest) (*RecordUsageResponse, error)
	CheckDeletionCooldown(context.Context, *CooldownRequest) (*CooldownResponse, error)
	PlaceDeletionCooldown(context.Context, *PlaceCooldownRequest) (*PlaceCooldownResponse, error)
	ListWindows(context.Context, *ListWindowsRequest) (*ListWindowsResponse, error)
	PutWindow(context.Context, *PutWindowRequest) (*PutWindowResponse, error)
	DeleteWindow(context.Context, *DeleteWindowRequest) (*DeleteWindowResponse, error)
}

// UnimplementedAccessGateServer can be embedded for forward compatibility.
type UnimplementedAccessGateServer struct{}

func unimplemented(m string) error { return status.Errorf(codes.Unimplemented, "method %s not implemented", m) }

func (UnimplementedAccessGateServer) CheckAccess(context.Context, *CheckAccessRequest) (*Decision, error) {
	return nil, unimplemented("CheckAccess")
}
func (UnimplementedAccessGateServer) CheckQuota(context.Context, *CheckQuotaRequest) (*QuotaResponse, error) {
	return nil, unimplemented("CheckQuota")
}
func (UnimplementedAccessGateServer) CheckFullAccess(context.Context, *CheckAccessRequest) (*Decision, error) {
	return nil, unimplemented("CheckFullAccess")
}
func (UnimplementedAccessGateServer) RecordUsage(context.Context, *RecordUsageRequest) (*RecordUsageResponse, error) {
	return nil, unimplemented("RecordUsage")
}
func (UnimplementedAccessGateServer) CheckDeletionCooldown(context.Context, *CooldownRequest) (*CooldownResponse, error) {
	return nil, unimplemented("CheckDeletionCooldown")
}
func (UnimplementedAccessGateServer) PlaceDeletionCooldown(context.Context, *PlaceCooldownRequest) (*PlaceCooldownResponse, error) {
	return nil, unimplemented("PlaceDeletionCooldown")
}
func (UnimplementedAccessGateServer) ListWindows(context.Context, *ListWindowsRequest) (*ListWindowsResponse, error) {
	return nil, unimplemented("ListWindows")
}
func (UnimplementedAccessGateServer) PutWindow(context.Context, *PutWindowRequest) (*PutWindowResponse, error) {
	return nil, unimplemented("PutWindow")
}
func (UnimplementedAccessGateServer) DeleteWindow(context.Context, *DeleteWindowRequest) (*DeleteWindowResponse, error) {
	return nil, unimplemented("DeleteWindow")
}

// FullMethod returns "/fortunegate.v1.AccessGate/<method>".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

func unary[Req, Resp any](name string, call func(AccessGateServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if ic == nil {
				return call(srv.(AccessGateServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return ic(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(AccessGateServer), ctx, req.(*Req))
			})
		},
	}
}

// AccessGate_ServiceDesc is the grpc.ServiceDesc for the AccessGate service.
var AccessGate_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccessGateServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CheckAccess", AccessGateServer.CheckAccess),
		unary("CheckQuota", AccessGateServer.CheckQuota),
		unary("CheckFullAccess", AccessGateServer.CheckFullAccess),
		unary("RecordUsage", AccessGateServer.RecordUsage),
		unary("CheckDeletionCooldown", AccessGateServer.CheckDeletionCooldown),
		unary("PlaceDeletionCooldown", AccessGateServer.PlaceDeletionCooldown),
		unary("ListWindows", AccessGateServer.ListWindows),
		unary("PutWindow", AccessGateServer.PutWindow),
		unary("DeleteWindow", AccessGateServer.DeleteWindow),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fortunegate/v1/gate",
}

// RegisterAccessGateServer registers srv on s.
func RegisterAccessGateServer(s grpc.ServiceRegistrar, srv AccessGateServer) {
	s.RegisterService(&AccessGate_ServiceDesc, srv)
}

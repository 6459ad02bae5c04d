package gatev1

import (
	"context"

	"google.golang.org/grpc"
)

// AccessGateClient is the client API for the AccessGate service.
type AccessGateClient interface {
	CheckAccess(ctx context.Context, in *CheckAccessRequest, opts ...grpc.CallOption) (*Decision, error)
	CheckQuota(ctx context.Context, in *CheckQuotaRequest, opts ...grpc.CallOption) (*QuotaResponse, error)
	CheckFullAccess(ctx context.Context, in *CheckAccessRequest, opts ...grpc.CallOption) (*Decision, error)
	RecordUsage(ctx context.Context, in *RecordUsageRequest, opts ...grpc.CallOption) (*RecordUsageResponse, error)
	CheckDeletionCooldown(ctx context.Context, in *CooldownRequest, opts ...grpc.CallOption) (*CooldownResponse, error)
	PlaceDeletionCooldown(ctx context.Context, in *PlaceCooldownRequest, opts ...grpc.CallOption) (*PlaceCooldownResponse, error)
	ListWindows(ctx context.Context, in *ListWindowsRequest, opts ...grpc.CallOption) (*ListWindowsResponse, error)
	PutWindow(ctx context.Context, in *PutWindowRequest, opts ...grpc.CallOption) (*PutWindowResponse, error)
	DeleteWindow(ctx context.Context, in *DeleteWindowRequest, opts ...grpc.CallOption) (*DeleteWindowResponse, error)
}

type accessGateClient struct {
	cc grpc.ClientConnInterface
}

// NewAccessGateClient returns a client that always selects the JSON codec.
func NewAccessGateClient(cc grpc.ClientConnInterface) AccessGateClient {
	return &accessGateClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *accessGateClient) CheckAccess(ctx context.Context, in *CheckAccessRequest, opts ...grpc.CallOption) (*Decision, error) {
	return invoke[Decision](ctx, c.cc, "CheckAccess", in, opts)
}

func (c *accessGateClient) CheckQuota(ctx context.Context, in *CheckQuotaRequest, opts ...grpc.CallOption) (*QuotaResponse, error) {
	return invoke[QuotaResponse](ctx, c.cc, "CheckQuota", in, opts)
}

func (c *accessGateClient) CheckFullAccess(ctx context.Context, in *CheckAccessRequest, opts ...grpc.CallOption) (*Decision, error) {
	return invoke[Decision](ctx, c.cc, "CheckFullAccess", in, opts)
}

func (c *accessGateClient) RecordUsage(ctx context.Context, in *RecordUsageRequest, opts ...grpc.CallOption) (*RecordUsageResponse, error) {
	return invoke[RecordUsageResponse](ctx, c.cc, "RecordUsage", in, opts)
}

func (c *accessGateClient) CheckDeletionCooldown(ctx context.Context, in *CooldownRequest, opts ...grpc.CallOption) (*CooldownResponse, error) {
	return invoke[CooldownResponse](ctx, c.cc, "CheckDeletionCooldown", in, opts)
}

func (c *accessGateClient) PlaceDeletionCooldown(ctx context.Context, in *PlaceCooldownRequest, opts ...grpc.CallOption) (*PlaceCooldownResponse, error) {
	return invoke[PlaceCooldownResponse](ctx, c.cc, "PlaceDeletionCooldown", in, opts)
}

func (c *accessGateClient) ListWindows(ctx context.Context, in *ListWindowsRequest, opts ...grpc.CallOption) (*ListWindowsResponse, error) {
	return invoke[ListWindowsResponse](ctx, c.cc, "ListWindows", in, opts)
}

func (c *accessGateClient) PutWindow(ctx context.Context, in *PutWindowRequest, opts ...grpc.CallOption) (*PutWindowResponse, error) {
	return invoke[PutWindowResponse](ctx, c.cc, "PutWindow", in, opts)
}

func (c *accessGateClient) DeleteWindow(ctx context.Context, in *DeleteWindowRequest, opts ...grpc.CallOption) (*DeleteWindowResponse, error) {
	return invoke[DeleteWindowResponse](ctx, c.cc, "DeleteWindow", in, opts)
}

package gatev1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestCodec_Registered(t *testing.T) {
	require.NotNil(t, encoding.GetCodec(CodecName))
	require.Equal(t, "json", Codec{}.Name())
}

func TestCodec_PlainStruct(t *testing.T) {
	at := time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)
	in := &Decision{CanAccess: false, Outcome: "denied", Reason: "quota_exhausted", NextAvailableAt: &at}

	b, err := Codec{}.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"can_access":false,"outcome":"denied","reason":"quota_exhausted","next_available_at":"2025-05-11T00:00:00Z"}`, string(b))

	var out Decision
	require.NoError(t, Codec{}.Unmarshal(b, &out))
	require.Equal(t, "quota_exhausted", out.Reason)
	require.True(t, at.Equal(*out.NextAvailableAt))
}

func TestCodec_EmptyBody(t *testing.T) {
	var req CheckAccessRequest
	require.NoError(t, Codec{}.Unmarshal(nil, &req))
}

func TestCodec_ProtoMessage(t *testing.T) {
	in := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}

	b, err := Codec{}.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(b), "SERVING")

	out := &healthpb.HealthCheckResponse{}
	require.NoError(t, Codec{}.Unmarshal(b, out))
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, out.GetStatus())
}

func TestCodec_BadJSON(t *testing.T) {
	var out Decision
	require.Error(t, Codec{}.Unmarshal([]byte("{"), &out))
}

func TestFullMethod(t *testing.T) {
	require.Equal(t, "/fortunegate.v1.AccessGate/CheckAccess", FullMethod("CheckAccess"))
	require.Len(t, AccessGate_ServiceDesc.Methods, 9)
}

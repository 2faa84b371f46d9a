package grpc

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New(logging.Options{Level: "debug", JSON: true, Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	s := NewGRPCServer(":0", l, &fakePinger{}, time.Hour)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	h := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.Unavailable, "down")
	}

	_, err = s.loggingInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("handler error not passed through: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"method":"/grpc.health.v1.Health/Check"`, `"code":"Unavailable"`, `"module":"grpc_server"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log %q does not contain %s", out, want)
		}
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	gs "github.com/dmitrijs2005/linkkeeper/internal/server/grpc"
)

// Exit codes: 0 serving, 1 not serving or unreachable, 2 bad invocation.
func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC health endpoint")
	timeout := flag.Duration("timeout", 3*time.Second, "check timeout")
	flag.Parse()

	os.Exit(run(*addr, *timeout))
}

func run(addr string, timeout time.Duration) int {
	conn, err := gs.Dial(addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	status, err := gs.CheckHealth(ctx, conn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Println(status.String())
	if status != healthpb.HealthCheckResponse_SERVING {
		return 1
	}
	return 0
}

package arith_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pior/arith"
)

func Example() {
	ctx := context.Background()

	server, err := arith.NewServer(arith.ServerConfig{Addr: "127.0.0.1:1234"})
	if err != nil {
		log.Fatal(err)
	}
	go server.ListenAndServe(ctx)
	defer server.Close()

	client, err := arith.Dial(ctx, "127.0.0.1:1234", arith.ClientConfig{DialTimeout: time.Second})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	sum, err := client.Call(ctx, "ADD", 2, 3, 5)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sum)

	_, err = client.Call(ctx, "DIV", 10, 0)
	var respErr *arith.ResponseError
	if errors.As(err, &respErr) {
		fmt.Println(respErr.Response.Text)
	}

	client.Stop(ctx)
}

func ExampleNewCircuitBreakerConfig() {
	client, err := arith.NewClient("localhost:1234", arith.ClientConfig{
		DialTimeout:       time.Second,
		NewCircuitBreaker: arith.NewCircuitBreakerConfig(3, time.Minute, 10*time.Second),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	if _, err := client.Call(context.Background(), "SQRT", 81); err != nil {
		log.Printf("call failed: %v (breaker %s)", err, client.CircuitBreakerState())
	}
}

func ExampleServer_Stats() {
	server, err := arith.NewServer(arith.ServerConfig{MaxSessions: 16})
	if err != nil {
		log.Fatal(err)
	}
	defer server.Close()

	stats := server.Stats()
	fmt.Printf("sessions: %d/%d\n", stats.ActiveSessions, stats.MaxSessions)
}

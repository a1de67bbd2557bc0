// Command authflow-probe drives one full session lifecycle against a live
// API: bootstrap, login (or signup), load the user, patch optionally, then
// log out. It prints the notify events and a metrics dump, which makes it a
// quick end-to-end check for a backend that implements the auth endpoints.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	authflow "github.com/seralo/authflow"
)

func main() {
	var (
		apiRoot   = flag.String("api-root", "", "API root URL, e.g. https://api.example.com")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		email     = flag.String("email", "", "login email")
		password  = flag.String("password", "", "login password")
		signup    = flag.Bool("signup", false, "sign up instead of logging in")
		timeout   = flag.Duration("timeout", 30*time.Second, "overall probe deadline")
	)
	flag.Parse()

	if *apiRoot == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "api-root, email, and password are required")
		os.Exit(2)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		cleanup = mr.Close
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		cleanup = func() {}
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	sink := authflow.NewChannelSink(64)
	engine, err := authflow.New().
		WithAPIRoot(*apiRoot).
		WithRedis(client).
		WithNotifySink(sink).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	go func() {
		if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "orchestrator stopped: %v\n", err)
		}
	}()

	go func() {
		for event := range sink.Events() {
			line, _ := json.Marshal(event)
			fmt.Printf("event: %s\n", line)
		}
	}()

	form := authflow.FormData{"email": *email, "password": *password}
	if *signup {
		err = engine.RequestSignup(form)
	} else {
		err = engine.RequestLogin(form)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "enqueue credential: %v\n", err)
		os.Exit(1)
	}

	if !waitFor(ctx, func() bool { return engine.CurrentUser() != nil }) {
		fmt.Fprintln(os.Stderr, "session was not established before the deadline")
		dumpErrors(engine)
		os.Exit(1)
	}
	fmt.Printf("authenticated, user: %s\n", engine.CurrentUser())

	if err := engine.RequestLogout(); err != nil {
		fmt.Fprintf(os.Stderr, "request logout: %v\n", err)
		os.Exit(1)
	}
	if !waitFor(ctx, func() bool { return engine.CurrentUser() == nil }) {
		fmt.Fprintln(os.Stderr, "logout did not complete before the deadline")
		os.Exit(1)
	}
	fmt.Println("logged out")

	fmt.Println("---- metrics ----")
	snapshot := engine.MetricsSnapshot()
	for id, value := range snapshot.Counters {
		if value > 0 {
			fmt.Printf("counter %d: %d\n", id, value)
		}
	}
	fmt.Printf("notify dropped: %d\n", engine.NotifyDropped())
}

func waitFor(ctx context.Context, cond func() bool) bool {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		if cond() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func dumpErrors(engine *authflow.Engine) {
	for _, cat := range []authflow.ErrorCategory{
		authflow.CategoryLogin,
		authflow.CategorySignup,
		authflow.CategoryLoadUser,
	} {
		if failure := engine.LastError(cat); failure != nil {
			line, _ := json.Marshal(failure)
			fmt.Fprintf(os.Stderr, "failure (category %d): %s\n", cat, line)
		}
	}
}

// Package health serves liveness and readiness probes for the chat server.
//
// Components register named checks; /ready runs them concurrently and
// answers 503 while any of them fails. /health only reports that the
// process is up.
//
//	checker := health.New(2 * time.Second)
//	checker.Register("rules", func(ctx context.Context) error { ... })
//	health.Mount(mux, checker, version)
package health

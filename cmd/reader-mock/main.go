// Standalone mock reader backend for exercising readerctl end to end.
// Run with: go run ./cmd/reader-mock
// Then point readerctl at it: server baseUrl http://localhost:8123.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codereader/readerctl/internal/apitest"
)

func main() {
	port := flag.Int("port", 8123, "port to listen on")
	flag.Parse()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: apitest.NewServer().Handler(),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Printf("Mock reader backend on http://localhost:%d\n", *port)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}
}

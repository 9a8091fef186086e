// Package dbtest starts throwaway database containers for tests that need a
// real server, such as the Neo4j exporter's tests.
//
// Containers are started through testcontainers-go and removed when the test
// ends. To look at the database of a failed test, run it with
//
//	go test -dbtest.keep
//
// and press Ctrl+C once done. Never import this package outside tests.
package dbtest

import (
	"flag"
	"os"
	"os/signal"
)

// Keep leaves the container of a failed test running until the test binary
// receives an interrupt.
var Keep = flag.Bool("dbtest.keep", false, "keep the container of a failed test running until interrupted")

func awaitInterrupt() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)
	<-c
}

package dbtest

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/log"
	neo4jtest "github.com/testcontainers/testcontainers-go/modules/neo4j"
)

// Neo4jImage is the image of the Neo4j containers. The enterprise edition is
// required to create databases other than the default one.
const Neo4jImage = "docker.io/neo4j:5-enterprise"

// browserPort serves the Neo4j browser.
const browserPort = nat.Port("7474/tcp")

// SetupNeo4j starts a Neo4j container for t and returns a driver connected to
// it. It skips t in short mode and marks it parallel. The container and the
// driver are released when t completes.
func SetupNeo4j(t *testing.T) neo4j.DriverWithContext {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping Neo4j container test in short mode")
	}
	t.Parallel()

	ctx := context.Background()
	container, err := neo4jtest.Run(ctx, Neo4jImage,
		testcontainers.WithLogger(log.TestLogger(t)),
		neo4jtest.WithoutAuthentication(),
		neo4jtest.WithAcceptCommercialLicenseAgreement(),
	)
	if err != nil {
		t.Fatal("Failed to start neo4j container:", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Error("Failed to terminate neo4j container:", err)
		}
	})

	boltURL, err := container.BoltUrl(ctx)
	if err != nil {
		t.Fatal("Failed to get bolt url:", err)
	}
	browser, err := container.PortEndpoint(ctx, browserPort, "http")
	if err != nil {
		t.Fatal("Failed to get browser endpoint:", err)
	}

	driver, err := neo4j.NewDriverWithContext(boltURL, neo4j.NoAuth())
	if err != nil {
		t.Fatal("Failed to create neo4j driver:", err)
	}
	t.Cleanup(func() {
		if err := driver.Close(ctx); err != nil {
			t.Error("Failed to close neo4j driver:", err)
		}
	})
	if err := awaitConnectivity(ctx, t, driver); err != nil {
		t.Fatal("Neo4j never became reachable:", err)
	}

	// Registered last so it runs first, while the container is still up.
	t.Cleanup(func() {
		if !t.Failed() || !*Keep {
			return
		}
		t.Logf("Keeping container %v; press Ctrl+C to remove it", container.GetContainerID())
		t.Logf("Browser: %s/browser?preselectAuthMethod=%s&dbms=%s", browser, url.QueryEscape("[NO_AUTH]"), url.QueryEscape(boltURL))
		awaitInterrupt()
	})
	return driver
}

// awaitConnectivity retries the connectivity check a few times, since the
// container may report ready slightly before Bolt accepts connections.
func awaitConnectivity(ctx context.Context, t *testing.T, driver neo4j.DriverWithContext) error {
	t.Helper()
	const attempts = 6
	var err error
	for i := range attempts {
		if err = driver.VerifyConnectivity(ctx); err == nil {
			return nil
		}
		t.Logf("Connectivity check %d/%d failed: %v", i+1, attempts, err)
		select {
		case <-time.After(time.Duration(i+1) * 100 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

package fmserver

import (
	"context"
	"os"
	"testing"

	"lariat/lib/telemetry"

	"github.com/stretchr/testify/require"
)

// Exercises a real FileMaker Server. Set TEST_FMSERVER_URL (and optionally
// TEST_FMSERVER_USERNAME/TEST_FMSERVER_PASSWORD) to run it.
func TestIntegrationServer(t *testing.T) {
	url := os.Getenv("TEST_FMSERVER_URL")
	if url == "" {
		t.Skip("TEST_FMSERVER_URL is not set")
	}

	cleanup := telemetry.SetupForTesting(t, "test:fmserver")
	defer cleanup()

	client, err := NewClient(ClientOptions{
		Url:      url,
		Username: os.Getenv("TEST_FMSERVER_USERNAME"),
		Password: os.Getenv("TEST_FMSERVER_PASSWORD"),
	})
	require.NoError(t, err)

	ctx := context.Background()

	databases, err := client.DatabaseNames(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, databases)
	t.Log("databases", databases)

	layouts, err := client.LayoutNames(ctx, databases[0])
	require.NoError(t, err)
	t.Log("layouts", layouts)

	if len(layouts) > 0 {
		metadata, err := client.LayoutMetadata(ctx, databases[0], layouts[0])
		require.NoError(t, err)
		require.NotEmpty(t, metadata.Fields)
	}
}

package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/dispatcher"
	"github.com/squareup/connectoragent/sources/memory"
	memwriter "github.com/squareup/connectoragent/writers/memory"
	"github.com/stretchr/testify/require"
)

func TestServeDispatchMetrics(t *testing.T) {
	server := NewServer("localhost:0")
	require.NoError(t, server.Start())
	defer func() {
		require.NoError(t, server.Stop())
	}()

	catalog := memory.NewCatalog()
	require.NoError(t, catalog.Register("q", 1, []interface{}{int64(1)}, []interface{}{int64(2)}))
	_, err := dispatcher.NewDispatcher(memory.NewSourceBuilder(catalog), memwriter.NewWriter(),
		common.Schema{common.TypeInt64}, []string{"q"}).RunChecked(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(fmt.Sprintf("http://%s%s", server.Addr(), MetricsPath))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "connector_agent_rows_transferred_total")
	require.Contains(t, string(body), `connector_agent_dispatches_total{outcome="succeeded"}`)
}

func TestStartStop(t *testing.T) {
	server := NewServer("localhost:0")
	require.Nil(t, server.Addr())
	require.Error(t, server.Stop())
	require.NoError(t, server.Start())
	require.Error(t, server.Start())
	require.NotNil(t, server.Addr())
	require.NoError(t, server.Stop())
	require.Error(t, server.Stop())
}

func TestStartBadAddress(t *testing.T) {
	server := NewServer("not-an-address")
	require.Error(t, server.Start())
}

func TestStateEndpoints(t *testing.T) {
	server := NewServer("localhost:0")
	require.NoError(t, server.Start())
	defer func() {
		require.NoError(t, server.Stop())
	}()
	status := func(path string) int {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", server.Addr(), path))
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		return resp.StatusCode
	}
	require.Equal(t, http.StatusOK, status(LivePath))
	require.Equal(t, http.StatusServiceUnavailable, status(ReadyPath))
	server.SetReady(true)
	require.Equal(t, http.StatusOK, status(ReadyPath))
	server.SetReady(false)
	require.Equal(t, http.StatusServiceUnavailable, status(ReadyPath))
}

package managementService

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/internal/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusBody = `{
  "Payload": {
    "Guardians": {
      "bbbb000000000000000000000000000000000002": {
        "EthAddress": "BBBB000000000000000000000000000000000002",
        "Name": "Beta",
        "Website": "https://beta.example",
        "Ip": "10.0.0.2",
        "EffectiveStake": 200,
        "DelegatedStake": 250
      },
      "aaaa000000000000000000000000000000000001": {
        "EthAddress": "aaaa000000000000000000000000000000000001",
        "Name": "Alpha",
        "Website": "https://alpha.example",
        "EffectiveStake": 100,
        "DelegatedStake": 100
      }
    },
    "CurrentCommittee": [{"EthAddress": "aaaa000000000000000000000000000000000001"}],
    "CurrentCandidates": [{"EthAddress": "bbbb000000000000000000000000000000000002"}, {"EthAddress": "cccc000000000000000000000000000000000003"}],
    "CommitteeEvents": [
      {"RefTime": 1000, "RefBlock": 10, "Committee": [{"EthAddress": "aaaa000000000000000000000000000000000001", "EffectiveStake": 100, "Weight": 1}]},
      {"RefTime": 2000, "RefBlock": 20, "Committee": [{"EthAddress": "bbbb000000000000000000000000000000000002", "EffectiveStake": 200, "Weight": 2}]}
    ]
  }
}`

func newTestClient() *Client {
	c := NewClient(&ClientConfig{Timeout: time.Second, Retries: 3, RetryDelay: time.Millisecond}, tests.GetLogger())
	c.SetHttpClient(&http.Client{Transport: httpmock.DefaultTransport})
	return c
}

func jsonResponder(status int, body string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(status, body)
		resp.Header.Set("Content-Type", "application/json; charset=utf-8")
		return resp, nil
	}
}

func Test_FetchStatus(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	t.Run("Should parse guardians published as a map", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://node-a/status", jsonResponder(200, statusBody))

		status, err := newTestClient().FetchStatus(context.Background(), "https://node-a/status")
		require.Nil(t, err)
		require.Len(t, status.Payload.Guardians, 2)
		assert.Equal(t, "Alpha", status.Payload.Guardians[0].Name)
	})

	t.Run("Should retry before giving up on a node", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://node-a/status", httpmock.NewStringResponder(502, "bad gateway"))

		_, err := newTestClient().FetchStatus(context.Background(), "https://node-a/status")
		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "Status Code: 502")
		assert.Equal(t, 3, httpmock.GetTotalCallCount())
	})

	t.Run("Should reject a response that is not json", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://node-a/status", httpmock.NewStringResponder(200, statusBody))

		_, err := newTestClient().FetchStatus(context.Background(), "https://node-a/status")
		assert.NotNil(t, err)
	})

	t.Run("Should reject a response carrying an error", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://node-a/status", jsonResponder(200, `{"error": "syncing"}`))

		_, err := newTestClient().FetchStatus(context.Background(), "https://node-a/status")
		assert.NotNil(t, err)
	})

	t.Run("Should fall back to the next node", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://node-a/status", httpmock.NewStringResponder(500, "down"))
		httpmock.RegisterResponder("GET", "https://node-b/status", jsonResponder(200, statusBody))

		status, err := newTestClient().FetchFirstStatus(context.Background(), []string{"https://node-a/status", "https://node-b/status"}, "list of Guardians")
		require.Nil(t, err)
		assert.Len(t, status.Payload.Guardians, 2)
	})

	t.Run("Should aggregate the failure of every node", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://node-a/status", httpmock.NewStringResponder(500, "down"))
		httpmock.RegisterResponder("GET", "https://node-b/status", httpmock.NewStringResponder(500, "down"))

		_, err := newTestClient().FetchFirstStatus(context.Background(), []string{"https://node-a/status", "https://node-b/status"}, "PoS Overview")
		require.NotNil(t, err)
		msg := err.Error()
		assert.True(t, strings.HasPrefix(msg, "Error while creating PoS Overview, all Network Node URL failed to respond."))
		assert.Contains(t, msg, "Warning: access to URL https://node-a/status failed, trying another. Error:")
		assert.Contains(t, msg, "Warning: access to URL https://node-b/status failed, trying another. Error:")
	})
}

func Test_GuardiansFromStatus(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", "https://node-a/status", jsonResponder(200, statusBody))

	status, err := newTestClient().FetchStatus(context.Background(), "https://node-a/status")
	require.Nil(t, err)

	guardians := GuardiansFromStatus(status)
	require.Len(t, guardians, 2)
	assert.Equal(t, "0xaaaa000000000000000000000000000000000001", guardians[0].Address)
	assert.Equal(t, "", guardians[0].Ip)
	assert.Equal(t, "0xbbbb000000000000000000000000000000000002", guardians[1].Address)
	assert.Equal(t, "10.0.0.2", guardians[1].Ip)
	assert.Equal(t, 200.0, guardians[1].EffectiveStake)

	overview := OverviewFromStatus(status, config.BlockRef{Number: 500, Time: 5000})
	assert.Equal(t, uint64(500), overview.BlockNumber)
	assert.Equal(t, 350.0, overview.TotalStake)
	assert.Equal(t, 2, overview.NGuardians)
	assert.Equal(t, 1, overview.NCommittee)
	assert.Equal(t, 2, overview.NCandidates)
	assert.Equal(t, float64(OverviewApy), overview.Apy)
	require.Len(t, overview.Slices, 2)
	assert.Equal(t, int64(2000), overview.Slices[0].BlockTime)
	assert.Equal(t, "Beta", overview.Slices[0].Data[0].Name)
	assert.Equal(t, 2.0, overview.Slices[0].Data[0].Weight)
}

func Test_GuardiansAsList(t *testing.T) {
	var g Guardians
	require.Nil(t, g.UnmarshalJSON([]byte(`[{"EthAddress": "0xAB", "Name": "x"}]`)))
	require.Len(t, g, 1)
	assert.Equal(t, "0xab", GuardiansFromStatus(&Status{Payload: Payload{Guardians: g}})[0].Address)
}

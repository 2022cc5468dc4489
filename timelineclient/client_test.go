package timelineclient

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/meikuraledutech/timeline"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://timeline.test:8188"

func setupClient(t *testing.T, retries int) *Client {
	t.Helper()
	c := New(Config{BaseURL: baseURL + "/", Timeout: time.Second, RetryCount: retries, RetryWait: time.Millisecond})
	httpmock.ActivateNonDefault(c.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestQueryValues(t *testing.T) {
	require.Empty(t, Query{}.Values())

	v := Query{
		PrimaryFilter:   "TEZ_DAG_ID:dag_1",
		SecondaryFilter: "status:SUCCEEDED",
		Limit:           50,
		FromID:          "vertex_1_00",
		WindowStart:     10,
		WindowEnd:       20,
		Fields:          []string{"primaryfilters", "otherinfo"},
	}.Values()
	require.Equal(t, "TEZ_DAG_ID:dag_1", v.Get("primaryFilter"))
	require.Equal(t, "status:SUCCEEDED", v.Get("secondaryFilter"))
	require.Equal(t, "50", v.Get("limit"))
	require.Equal(t, "vertex_1_00", v.Get("fromId"))
	require.Equal(t, "10", v.Get("windowStart"))
	require.Equal(t, "20", v.Get("windowEnd"))
	require.Equal(t, "primaryfilters,otherinfo", v.Get("fields"))
}

func TestGet(t *testing.T) {
	c := setupClient(t, 0)
	httpmock.RegisterResponder("GET", baseURL+"/ws/v1/timeline/TEZ_DAG_ID/dag_1",
		httpmock.NewStringResponder(200, `{"entity": "dag_1"}`))
	httpmock.RegisterResponder("GET", baseURL+"/ws/v1/applicationhistory/apps/application_1_1",
		httpmock.NewStringResponder(200, `{"appId": "application_1_1"}`))

	body, err := c.Get(context.Background(), timeline.KindDag, "dag_1")
	require.NoError(t, err)
	require.JSONEq(t, `{"entity": "dag_1"}`, string(body))

	body, err = c.Get(context.Background(), timeline.KindApplicationDetail, "application_1_1")
	require.NoError(t, err)
	require.JSONEq(t, `{"appId": "application_1_1"}`, string(body))
}

func TestList(t *testing.T) {
	c := setupClient(t, 0)
	httpmock.RegisterResponderWithQuery("GET", baseURL+"/ws/v1/timeline/TEZ_VERTEX_ID",
		map[string]string{"primaryFilter": "TEZ_DAG_ID:dag_1", "limit": "2"},
		httpmock.NewStringResponder(200, `{"entities": []}`))

	body, err := c.List(context.Background(), timeline.KindVertex, Query{PrimaryFilter: "TEZ_DAG_ID:dag_1", Limit: 2})
	require.NoError(t, err)
	require.JSONEq(t, `{"entities": []}`, string(body))
	require.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestErrors(t *testing.T) {
	c := setupClient(t, 0)
	ctx := context.Background()
	httpmock.RegisterResponder("GET", `=~^`+baseURL+`/ws/v1/timeline/TEZ_TASK_ID/(.+)`,
		func(req *http.Request) (*http.Response, error) {
			id, err := httpmock.GetSubmatch(req, 1)
			if err != nil {
				return nil, err
			}
			switch id {
			case "missing":
				return httpmock.NewStringResponse(404, `{"exception": "NotFoundException"}`), nil
			case "forbidden":
				return httpmock.NewStringResponse(403, ""), nil
			}
			return nil, errors.New("connection reset")
		})

	_, err := c.Get(ctx, timeline.KindTask, "missing")
	require.True(t, timeline.ErrUpstreamNotFound.Equal(err), "unexpected error %v", err)

	_, err = c.Get(ctx, timeline.KindTask, "forbidden")
	require.True(t, timeline.ErrUpstreamStatus.Equal(err), "unexpected error %v", err)
	require.ErrorContains(t, err, "403")

	_, err = c.Get(ctx, timeline.KindTask, "broken")
	require.True(t, timeline.ErrUpstreamRequest.Equal(err), "unexpected error %v", err)

	_, err = c.Get(ctx, timeline.KindCounter, "x")
	require.True(t, timeline.ErrUnknownKind.Equal(err), "unexpected error %v", err)

	_, err = c.List(ctx, timeline.KindApplicationDetail, Query{})
	require.True(t, timeline.ErrUnsupportedQuery.Equal(err), "unexpected error %v", err)

	_, err = c.List(ctx, timeline.KindConfig, Query{})
	require.True(t, timeline.ErrUnknownKind.Equal(err), "unexpected error %v", err)
}

func TestRetriesServerErrors(t *testing.T) {
	c := setupClient(t, 2)
	calls := 0
	httpmock.RegisterResponder("GET", baseURL+"/ws/v1/timeline/TEZ_APPLICATION/tez_application_1_1",
		func(*http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(503, ""), nil
			}
			return httpmock.NewStringResponse(200, `{"entity": "tez_application_1_1"}`), nil
		})

	body, err := c.Get(context.Background(), timeline.KindApplication, "tez_application_1_1")
	require.NoError(t, err)
	require.Contains(t, string(body), "tez_application_1_1")
	require.Equal(t, 3, calls)
}

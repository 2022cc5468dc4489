// Package timelineclient fetches raw entities from a Tez timeline server and
// the YARN application history service. Responses are returned untouched;
// turning them into records is the job of package normalize.
package timelineclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/meikuraledutech/timeline"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

const (
	timelinePath    = "/ws/v1/timeline/{type}"
	timelineEntity  = "/ws/v1/timeline/{type}/{id}"
	appHistoryEntry = "/ws/v1/applicationhistory/apps/{id}"
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	// RetryWait is the initial backoff between retries.
	RetryWait time.Duration
}

// Query narrows a timeline list request. Zero fields are not sent.
type Query struct {
	// PrimaryFilter and SecondaryFilter are "name:value" pairs.
	PrimaryFilter   string
	SecondaryFilter string
	Limit           int
	FromID          string
	WindowStart     int64
	WindowEnd       int64
	Fields          []string
}

// Values encodes q as timeline query parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.PrimaryFilter != "" {
		v.Set("primaryFilter", q.PrimaryFilter)
	}
	if q.SecondaryFilter != "" {
		v.Set("secondaryFilter", q.SecondaryFilter)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.FromID != "" {
		v.Set("fromId", q.FromID)
	}
	if q.WindowStart > 0 {
		v.Set("windowStart", strconv.FormatInt(q.WindowStart, 10))
	}
	if q.WindowEnd > 0 {
		v.Set("windowEnd", strconv.FormatInt(q.WindowEnd, 10))
	}
	if len(q.Fields) > 0 {
		v.Set("fields", strings.Join(q.Fields, ","))
	}
	return v
}

// Client talks to the timeline server. It is safe for concurrent use.
type Client struct {
	rc *resty.Client
}

// New creates a client for cfg. Server errors (5xx) are retried RetryCount
// times on top of transport errors.
func New(cfg Config) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r != nil && r.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.RetryWait > 0 {
		rc.SetRetryWaitTime(cfg.RetryWait)
	}
	return &Client{rc: rc}
}

// Get fetches the single entity id of kind.
func (c *Client) Get(ctx context.Context, kind timeline.Kind, id string) ([]byte, error) {
	req := c.rc.R().SetContext(ctx).SetPathParam("id", id)

	path := appHistoryEntry
	if kind != timeline.KindApplicationDetail {
		if kind.TimelineEntityType() == "" {
			return nil, timeline.ErrUnknownKind.GenWithStackByArgs(kind.String())
		}
		path = timelineEntity
		req.SetPathParam("type", kind.TimelineEntityType())
	}

	return c.do(req, path, kind.String()+" "+id)
}

// List fetches the entities of kind matching q.
func (c *Client) List(ctx context.Context, kind timeline.Kind, q Query) ([]byte, error) {
	if kind == timeline.KindApplicationDetail {
		return nil, timeline.ErrUnsupportedQuery.GenWithStackByArgs(kind)
	}
	if kind.TimelineEntityType() == "" {
		return nil, timeline.ErrUnknownKind.GenWithStackByArgs(kind.String())
	}

	req := c.rc.R().
		SetContext(ctx).
		SetPathParam("type", kind.TimelineEntityType()).
		SetQueryParamsFromValues(q.Values())
	return c.do(req, timelinePath, kind.Plural())
}

func (c *Client) do(req *resty.Request, path, what string) ([]byte, error) {
	start := time.Now()
	resp, err := req.Get(path)
	if err != nil {
		return nil, timeline.ErrUpstreamRequest.GenWithStackByArgs(what, err.Error())
	}

	log.Debug("timeline request",
		zap.String("url", resp.Request.URL),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)))

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, timeline.ErrUpstreamNotFound.GenWithStackByArgs(what)
	case !resp.IsSuccess():
		return nil, timeline.ErrUpstreamStatus.GenWithStackByArgs(what, resp.StatusCode())
	}
	return resp.Body(), nil
}

// HTTPClient exposes the underlying http.Client, mainly for transports and
// test doubles.
func (c *Client) HTTPClient() *http.Client {
	return c.rc.GetClient()
}

// Close releases idle connections.
func (c *Client) Close() {
	c.rc.GetClient().CloseIdleConnections()
}

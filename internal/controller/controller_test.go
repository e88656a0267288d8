package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/nlq/internal/api"
	apierrors "github.com/diogo/nlq/internal/errors"
	"github.com/diogo/nlq/internal/models"
)

func validRequest(question string) models.QueryRequest {
	return models.QueryRequest{
		Locator:   "sample.db",
		Question:  question,
		Dialect:   models.DialectSQLite,
		MaxTokens: 512,
	}
}

func responseFor(sql string) *models.QueryResponse {
	return &models.QueryResponse{
		GeneratedQuery: sql,
		Columns:        []string{"a"},
		Rows:           []models.Row{{"a": models.NumberValue("1")}},
	}
}

func TestController_InitialState(t *testing.T) {
	c := New(&api.MockServiceClient{})

	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, uint64(0), snap.Seq)
	assert.Nil(t, snap.Response)
	assert.Nil(t, snap.Err)
}

func TestController_SubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   models.QueryRequest
		field string
	}{
		{"blank question", models.QueryRequest{Locator: "a.db", Question: "  ", Dialect: models.DialectSQLite, MaxTokens: 1}, "question"},
		{"blank locator", models.QueryRequest{Locator: "\t", Question: "q", Dialect: models.DialectSQLite, MaxTokens: 1}, "db_path"},
		{"unknown dialect", models.QueryRequest{Locator: "a.db", Question: "q", Dialect: "oracle", MaxTokens: 1}, "dialect"},
		{"zero max tokens", models.QueryRequest{Locator: "a.db", Question: "q", Dialect: models.DialectSQLite, MaxTokens: 0}, "max_tokens"},
		{"negative max tokens", models.QueryRequest{Locator: "a.db", Question: "q", Dialect: models.DialectSQLite, MaxTokens: -5}, "max_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &api.MockServiceClient{}
			c := New(client)

			_, err := c.Submit(tt.req)
			require.Error(t, err)
			assert.True(t, apierrors.IsValidation(err))
			assert.Equal(t, tt.field, apierrors.GetField(err))

			snap := c.Snapshot()
			assert.Equal(t, StateError, snap.State)
			assert.Equal(t, err, snap.Err)
			assert.Empty(t, client.QueryCalls(), "validation failure must not reach the network")
		})
	}
}

func TestController_SubmitIsSynchronouslyPending(t *testing.T) {
	c := New(&api.MockServiceClient{})

	ticket, err := c.Submit(validRequest(" how many customers? "))
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, StatePending, snap.State)
	assert.Equal(t, uint64(1), ticket.Seq)
	assert.Equal(t, "how many customers?", ticket.Request.Question)
	require.NotNil(t, snap.Request)
	assert.Equal(t, ticket.Request, *snap.Request)
}

func TestController_SuccessLifecycle(t *testing.T) {
	client := &api.MockServiceClient{QueryVal: responseFor("SELECT 1")}
	c := New(client)

	var states []State
	cancel := c.Subscribe(func(s Snapshot) { states = append(states, s.State) })
	defer cancel()

	ticket, err := c.Submit(validRequest("q"))
	require.NoError(t, err)

	out := c.Issue(context.Background(), ticket)
	assert.Equal(t, ticket.Seq, out.Seq)
	assert.True(t, c.Settle(out))

	snap := c.Snapshot()
	assert.Equal(t, StateSuccess, snap.State)
	assert.Equal(t, "SELECT 1", snap.Response.GeneratedQuery)
	assert.Nil(t, snap.Err)
	assert.Equal(t, []State{StatePending, StateSuccess}, states)
	assert.Len(t, client.QueryCalls(), 1)
}

func TestController_ErrorLifecycle(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apierrors.Kind
	}{
		{"request failed", apierrors.NewRequestFailedError(400, "/nl-query", "db not found"), apierrors.KindRequestFailed},
		{"network", apierrors.NewNetworkError("/nl-query", errors.New("refused")), apierrors.KindNetwork},
		{"invalid response", apierrors.NewInvalidResponseError("columns", "missing"), apierrors.KindInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&api.MockServiceClient{QueryErr: tt.err})

			ticket, err := c.Submit(validRequest("q"))
			require.NoError(t, err)
			require.True(t, c.Settle(c.Issue(context.Background(), ticket)))

			snap := c.Snapshot()
			assert.Equal(t, StateError, snap.State)
			assert.Nil(t, snap.Response)
			assert.Equal(t, tt.kind, apierrors.KindOf(snap.Err))
		})
	}
}

func TestController_RequestFailedMessageVerbatim(t *testing.T) {
	c := New(&api.MockServiceClient{QueryErr: apierrors.NewRequestFailedError(404, "/nl-query", "db not found")})

	ticket, err := c.Submit(validRequest("q"))
	require.NoError(t, err)
	c.Settle(c.Issue(context.Background(), ticket))

	assert.Equal(t, "db not found", c.Snapshot().Err.Error())
}

func TestController_OverlappingSubmissions(t *testing.T) {
	orders := map[string][]int{
		"older settles first": {0, 1},
		"newer settles first": {1, 0},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			client := &api.MockServiceClient{
				QueryFunc: func(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
					return responseFor("SELECT '" + req.Question + "'"), nil
				},
			}
			c := New(client)

			first, err := c.Submit(validRequest("first"))
			require.NoError(t, err)
			second, err := c.Submit(validRequest("second"))
			require.NoError(t, err)
			require.Greater(t, second.Seq, first.Seq)

			outcomes := []Outcome{
				c.Issue(context.Background(), first),
				c.Issue(context.Background(), second),
			}

			applied := 0
			for _, idx := range order {
				if c.Settle(outcomes[idx]) {
					applied++
				}
			}

			assert.Equal(t, 1, applied)
			assert.Equal(t, 1, c.Discarded())
			snap := c.Snapshot()
			assert.Equal(t, StateSuccess, snap.State)
			assert.Equal(t, "SELECT 'second'", snap.Response.GeneratedQuery)
		})
	}
}

func TestController_StaleErrorSuppressed(t *testing.T) {
	c := New(&api.MockServiceClient{})

	first, _ := c.Submit(validRequest("first"))
	second, _ := c.Submit(validRequest("second"))

	require.True(t, c.Settle(Outcome{Seq: second.Seq, Response: responseFor("SELECT 2")}))
	assert.False(t, c.Settle(Outcome{Seq: first.Seq, Err: apierrors.NewNetworkError("/nl-query", errors.New("late"))}))

	snap := c.Snapshot()
	assert.Equal(t, StateSuccess, snap.State)
	assert.Nil(t, snap.Err)
	assert.Equal(t, "SELECT 2", snap.Response.GeneratedQuery)
}

func TestController_StaleInvalidResponseLeavesDisplayUntouched(t *testing.T) {
	c := New(&api.MockServiceClient{})

	first, _ := c.Submit(validRequest("first"))
	second, _ := c.Submit(validRequest("second"))
	require.True(t, c.Settle(Outcome{Seq: second.Seq, Response: responseFor("SELECT 2")}))
	before := c.Snapshot()

	_, parseErr := api.ParseQueryResponse([]byte(`{"sql":"SELECT 1","rows":[]}`))
	require.Error(t, parseErr)
	assert.False(t, c.Settle(Outcome{Seq: first.Seq, Err: parseErr}))

	assert.Equal(t, before, c.Snapshot())
}

func TestController_DuplicateSettleIgnored(t *testing.T) {
	c := New(&api.MockServiceClient{})

	ticket, _ := c.Submit(validRequest("q"))
	assert.True(t, c.Settle(Outcome{Seq: ticket.Seq, Response: responseFor("SELECT 1")}))
	assert.False(t, c.Settle(Outcome{Seq: ticket.Seq, Err: errors.New("again")}))
	assert.Equal(t, StateSuccess, c.State())
}

func TestController_LaterOutcomeClearsPrior(t *testing.T) {
	c := New(&api.MockServiceClient{})

	t1, _ := c.Submit(validRequest("q1"))
	c.Settle(Outcome{Seq: t1.Seq, Err: errors.New("boom")})
	require.Equal(t, StateError, c.State())

	t2, _ := c.Submit(validRequest("q2"))
	assert.Nil(t, c.Snapshot().Err, "submit clears the prior error")
	c.Settle(Outcome{Seq: t2.Seq, Response: responseFor("SELECT 2")})
	assert.Nil(t, c.Snapshot().Err)

	t3, _ := c.Submit(validRequest("q3"))
	assert.Nil(t, c.Snapshot().Response, "submit clears the prior response")
	c.Settle(Outcome{Seq: t3.Seq, Err: errors.New("boom")})
	assert.Nil(t, c.Snapshot().Response)
	assert.Equal(t, StateError, c.State())
}

func TestController_ValidationSupersedesInFlight(t *testing.T) {
	c := New(&api.MockServiceClient{})

	inflight, err := c.Submit(validRequest("q"))
	require.NoError(t, err)

	_, err = c.Submit(validRequest(""))
	require.Error(t, err)

	assert.False(t, c.Settle(Outcome{Seq: inflight.Seq, Response: responseFor("SELECT 1")}))
	assert.Equal(t, StateError, c.State())
	assert.True(t, apierrors.IsValidation(c.Snapshot().Err))
}

func TestController_Reset(t *testing.T) {
	c := New(&api.MockServiceClient{})

	ticket, _ := c.Submit(validRequest("q"))
	c.Reset()

	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.Settle(Outcome{Seq: ticket.Seq, Response: responseFor("SELECT 1")}))
	assert.Equal(t, StateIdle, c.State())
	assert.Greater(t, c.Latest(), ticket.Seq)
}

func TestController_SequenceIsStrictlyIncreasing(t *testing.T) {
	c := New(&api.MockServiceClient{})

	var last uint64
	for i := 0; i < 10; i++ {
		req := validRequest("q")
		if i%3 == 0 {
			req.Question = ""
		}
		ticket, err := c.Submit(req)
		seq := c.Latest()
		if err == nil {
			assert.Equal(t, seq, ticket.Seq)
		}
		assert.Greater(t, seq, last)
		last = seq
	}
}

func TestController_IssueNeverLeavesPending(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
		wantKind apierrors.Kind
	}{
		{"nil response without error", func(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
			return nil, nil
		}, apierrors.KindInvalidResponse},
		{"panicking client", func(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
			panic("boom")
		}, apierrors.KindNetwork},
		{"cancelled context", func(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
			<-ctx.Done()
			return nil, apierrors.NewNetworkError("/nl-query", ctx.Err())
		}, apierrors.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&api.MockServiceClient{QueryFunc: tt.fn})
			ticket, err := c.Submit(validRequest("q"))
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			require.True(t, c.Settle(c.Issue(ctx, ticket)))
			assert.Equal(t, StateError, c.State())
			require.Error(t, c.Snapshot().Err)
			assert.Equal(t, tt.wantKind, apierrors.KindOf(c.Snapshot().Err))
		})
	}
}

func TestController_ConcurrentIssueSingleMutator(t *testing.T) {
	release := make(chan struct{})
	client := &api.MockServiceClient{
		QueryFunc: func(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
			<-release
			return responseFor(req.Question), nil
		},
	}
	c := New(client)

	const n = 8
	results := make(chan Outcome, n)
	for i := 0; i < n; i++ {
		ticket, err := c.Submit(validRequest(string(rune('a' + i))))
		require.NoError(t, err)
		go func(t Ticket) {
			results <- c.Issue(context.Background(), t)
		}(ticket)
	}
	close(release)

	applied := 0
	for i := 0; i < n; i++ {
		if c.Settle(<-results) {
			applied++
		}
	}

	assert.Equal(t, 1, applied)
	assert.Equal(t, n-1, c.Discarded())
	assert.Equal(t, string(rune('a'+n-1)), c.Snapshot().Response.GeneratedQuery)
}

func TestController_Unsubscribe(t *testing.T) {
	c := New(&api.MockServiceClient{})

	calls := 0
	cancel := c.Subscribe(func(Snapshot) { calls++ })
	c.Reset()
	cancel()
	c.Reset()

	assert.Equal(t, 1, calls)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.True(t, StateError.Terminal())
	assert.False(t, StatePending.Terminal())
	assert.Equal(t, "unknown", State(9).String())
}

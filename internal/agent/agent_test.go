package agent_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"linear-solver/internal/agent"
	"linear-solver/internal/db"
	"linear-solver/internal/grpc"
	"linear-solver/internal/logger"
	"linear-solver/internal/orchestrator"
	"linear-solver/internal/task"
)

// mockTaskClient реализует интерфейс TaskClient для тестирования
type mockTaskClient struct {
	fetchTaskFunc      func() ([]byte, error)
	submitResultFunc   func(body []byte) error
	fetchTaskCalled    int
	submitResultCalled int
	lastBody           []byte
}

func (m *mockTaskClient) FetchTask(ctx context.Context) ([]byte, error) {
	m.fetchTaskCalled++
	return m.fetchTaskFunc()
}

func (m *mockTaskClient) SubmitResult(ctx context.Context, body []byte) error {
	m.submitResultCalled++
	m.lastBody = body
	if m.submitResultFunc == nil {
		return nil
	}
	return m.submitResultFunc(body)
}

func (m *mockTaskClient) Close() error {
	return nil
}

func staticTask(body string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(body), nil }
}

// taskServer - источник задач на httptest, запоминающий полученные запросы
type taskServer struct {
	mu       sync.Mutex
	getBody  string
	getCode  int
	postCode int
	gets     []*http.Request
	posts    [][]byte
	postReqs []*http.Request
}

func (s *taskServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		s.gets = append(s.gets, r)
		w.WriteHeader(s.getCode)
		io.WriteString(w, s.getBody)
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		s.posts = append(s.posts, body)
		s.postReqs = append(s.postReqs, r)
		w.WriteHeader(s.postCode)
		io.WriteString(w, "ignored")
	}
}

func newTaskServer(t *testing.T, body string) (*taskServer, *httptest.Server) {
	t.Helper()
	logger.Discard()

	ts := &taskServer{getBody: body, getCode: http.StatusOK, postCode: http.StatusOK}
	server := httptest.NewServer(ts)
	t.Cleanup(server.Close)
	return ts, server
}

// TestRunOnceDiagonal проверяет сценарий a = 2I, b = [4, 6]
func TestRunOnceDiagonal(t *testing.T) {
	logger.Discard()
	client := &mockTaskClient{
		fetchTaskFunc: staticTask(`{"identifier": 1, "a": [[2, 0], [0, 2]], "b": [4, 6]}`),
	}

	report, err := agent.NewWorker(client).RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.Identifier)
	assert.InDelta(t, 0, report.Residual, 1e-12)
	assert.False(t, report.Singular)
	assert.Equal(t, 1, client.submitResultCalled)

	var got struct {
		Identifier int64     `json:"identifier"`
		X          []float64 `json:"x"`
		Time       float64   `json:"time"`
	}
	require.NoError(t, json.Unmarshal(client.lastBody, &got))
	assert.Equal(t, int64(1), got.Identifier)
	require.Len(t, got.X, 2)
	assert.InDelta(t, 2, got.X[0], 1e-12)
	assert.InDelta(t, 3, got.X[1], 1e-12)
	assert.GreaterOrEqual(t, got.Time, 0.0)
	assert.Equal(t, report.Timings.Solve.Seconds(), got.Time)
}

func TestRunOnceOverHTTP(t *testing.T) {
	body := `{"identifier": 42, "size": 3, "note": "keep", "a": [[4, 1, 0], [1, 3, 1], [0, 1, 2]], "b": [1, 2, 3], "x": [0, 0, 0], "time": 0}`
	ts, server := newTaskServer(t, body)

	worker := agent.NewWorker(agent.NewHTTPClient(server.URL, 5*time.Second))
	report, err := worker.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), report.Identifier)
	assert.Equal(t, 3, report.Size)
	assert.Less(t, report.Residual, 1e-12)

	require.Len(t, ts.gets, 1)
	require.Len(t, ts.posts, 1)
	assert.Equal(t, "application/json", ts.gets[0].Header.Get("Accept"))
	assert.Equal(t, "application/json", ts.postReqs[0].Header.Get("Content-Type"))

	payload, err := task.Decode(ts.posts[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"identifier", "size", "note", "a", "b", "x", "time"}, payload.Keys())

	size, _ := payload.Raw("size")
	assert.JSONEq(t, `3`, string(size))
	note, _ := payload.Raw("note")
	assert.JSONEq(t, `"keep"`, string(note))

	x, err := payload.Vector("x")
	require.NoError(t, err)
	assert.Len(t, x, 3)
}

func TestRunOnceErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		getCode   int
		postCode  int
		wantPosts int
		check     func(t *testing.T, err error)
	}{
		{
			name:      "GET returns 500",
			body:      "internal failure",
			getCode:   http.StatusInternalServerError,
			postCode:  http.StatusOK,
			wantPosts: 0,
			check: func(t *testing.T, err error) {
				var statusErr *agent.HTTPStatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.MethodGet, statusErr.Op)
				assert.Equal(t, 500, statusErr.StatusCode)
				assert.Equal(t, "internal failure", statusErr.Body)
				assert.Equal(t, "GET status: 500: internal failure", err.Error())
			},
		},
		{
			name:      "Payload missing b",
			body:      `{"identifier": 1, "a": [[1]]}`,
			getCode:   http.StatusOK,
			postCode:  http.StatusOK,
			wantPosts: 0,
			check: func(t *testing.T, err error) {
				var decodeErr *task.DecodeError
				require.ErrorAs(t, err, &decodeErr)
				assert.Equal(t, "b", decodeErr.Field)
				assert.ErrorIs(t, err, task.ErrMissingField)
			},
		},
		{
			name:      "Ragged matrix",
			body:      `{"identifier": 1, "a": [[1, 2], [3]], "b": [1, 2]}`,
			getCode:   http.StatusOK,
			postCode:  http.StatusOK,
			wantPosts: 0,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, task.ErrRaggedRows)
			},
		},
		{
			name:      "POST returns 503",
			body:      `{"identifier": 1, "a": [[1]], "b": [1]}`,
			getCode:   http.StatusOK,
			postCode:  http.StatusServiceUnavailable,
			wantPosts: 1,
			check: func(t *testing.T, err error) {
				var statusErr *agent.HTTPStatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.MethodPost, statusErr.Op)
				assert.Equal(t, 503, statusErr.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, server := newTaskServer(t, tt.body)
			ts.getCode = tt.getCode
			ts.postCode = tt.postCode

			_, err := agent.NewWorker(agent.NewHTTPClient(server.URL, 5*time.Second)).RunOnce(context.Background())
			require.Error(t, err)
			tt.check(t, err)
			assert.Len(t, ts.posts, tt.wantPosts)
		})
	}
}

// TestRunOnceSingular проверяет, что вырожденная матрица не прерывает итерацию
func TestRunOnceSingular(t *testing.T) {
	logger.Discard()
	client := &mockTaskClient{
		fetchTaskFunc: staticTask(`{"identifier": 3, "a": [[1, 1], [1, 1]], "b": [1, 2]}`),
	}

	report, err := agent.NewWorker(client).RunOnce(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Singular)
	assert.False(t, report.Residual < 1e-6, "residual should not be small, got %g", report.Residual)
	assert.Equal(t, 1, client.submitResultCalled)

	payload, err := task.Decode(client.lastBody)
	require.NoError(t, err)
	x, err := payload.Vector("x")
	require.NoError(t, err)
	assert.Len(t, x, 2)
}

func TestHTTPClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := agent.NewHTTPClient(url, time.Second).FetchTask(context.Background())

	var transportErr *agent.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodGet, transportErr.Op)
	assert.Contains(t, err.Error(), "GET error: ")
}

func TestHTTPClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	err := agent.NewHTTPClient(server.URL, 50*time.Millisecond).SubmitResult(context.Background(), []byte(`{}`))

	var transportErr *agent.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodPost, transportErr.Op)
}

func TestRunStopsOnCancel(t *testing.T) {
	var logs bytes.Buffer
	logger.Init(&logs, &logs, "")
	defer logger.Discard()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &mockTaskClient{
		fetchTaskFunc: func() ([]byte, error) {
			cancel()
			return []byte(`{"identifier": 1, "a": [[2]], "b": [4]}`), nil
		},
	}

	err := agent.NewWorker(client).Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, client.fetchTaskCalled)
	assert.Equal(t, 1, client.submitResultCalled, "in-flight iteration must finish")
	assert.Equal(t, 1, strings.Count(logs.String(), "Agent stopped"))
}

func TestRunReturnsFirstError(t *testing.T) {
	logger.Discard()
	calls := 0
	failure := &agent.TransportError{Op: http.MethodGet, Err: errors.New("connection refused")}
	client := &mockTaskClient{
		fetchTaskFunc: func() ([]byte, error) {
			calls++
			if calls == 3 {
				return nil, failure
			}
			return []byte(`{"identifier": 1, "a": [[2]], "b": [4]}`), nil
		},
	}

	err := agent.NewWorker(client).Run(context.Background())
	assert.Same(t, failure, err)
	assert.Equal(t, 3, client.fetchTaskCalled)
	assert.Equal(t, 2, client.submitResultCalled)
}

func TestNewTaskClient(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantHTTP bool
		wantErr  bool
	}{
		{name: "HTTP", endpoint: "http://127.0.0.1:8000", wantHTTP: true},
		{name: "HTTPS", endpoint: "https://tasks.example.com/solve", wantHTTP: true},
		{name: "gRPC", endpoint: "grpc://127.0.0.1:8001"},
		{name: "Unknown scheme", endpoint: "ftp://127.0.0.1", wantErr: true},
		{name: "Invalid URL", endpoint: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := agent.NewTaskClient(tt.endpoint, time.Second)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer client.Close()

			_, isHTTP := client.(*agent.HTTPTaskClient)
			assert.Equal(t, tt.wantHTTP, isHTTP)
		})
	}
}

// TestGRPCTransport прогоняет итерацию через gRPC-сервер источника задач
func TestGRPCTransport(t *testing.T) {
	logger.Discard()
	require.NoError(t, db.InitDB(":memory:"))
	defer db.CloseDB()

	server, addr, err := grpc.StartGRPCServer("127.0.0.1:0", orchestrator.NewSource(4, 1, 3))
	require.NoError(t, err)
	defer server.Stop()

	client, err := agent.NewTaskClient("grpc://"+addr.String(), 5*time.Second)
	require.NoError(t, err)
	defer client.Close()

	worker := agent.NewWorker(client)
	report, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Identifier)

	stored, err := db.GetResultByIdentifier(0)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Size)
	assert.Less(t, stored.Residual, 1e-9)
	assert.Equal(t, report.Timings.Solve.Seconds(), stored.SolveTime)

	_, err = worker.RunOnce(context.Background())
	var rpcErr *agent.RPCStatusError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, http.MethodGet, rpcErr.Op)
	assert.Equal(t, codes.NotFound, rpcErr.Code)
}

func TestGRPCTransportUnavailable(t *testing.T) {
	client, err := agent.NewGRPCClient("127.0.0.1:1", 500*time.Millisecond)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.FetchTask(context.Background())

	var transportErr *agent.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodGet, transportErr.Op)
}

func TestReportString(t *testing.T) {
	report := &agent.Report{
		Identifier: 7,
		Timings: agent.Timings{
			Fetch:  1500 * time.Microsecond,
			Parse:  time.Millisecond,
			Build:  2 * time.Millisecond,
			Solve:  10 * time.Millisecond,
			Encode: 250 * time.Microsecond,
			Submit: 3 * time.Millisecond,
		},
		Residual: 1.5e-13,
	}

	assert.Equal(t,
		"Task 7 | GET 1.500 ms | parse 1.000 ms | build 2.000 ms | solve 10.000 ms | encode 0.250 ms | POST 3.000 ms | residual 1.5e-13",
		report.String(),
	)
}

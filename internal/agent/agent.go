package agent

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"linear-solver/internal/grpc"
)

// TaskClient представляет интерфейс для клиента, который взаимодействует с источником задач
type TaskClient interface {
	// FetchTask получает JSON задачи
	FetchTask(ctx context.Context) ([]byte, error)
	// SubmitResult отправляет решенную задачу
	SubmitResult(ctx context.Context, body []byte) error
	// Close закрывает соединение с источником
	Close() error
}

// NewTaskClient выбирает транспорт по схеме адреса:
// grpc://host:port - gRPC, http:// и https:// - HTTP.
func NewTaskClient(endpoint string, timeout time.Duration) (TaskClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid task source url %q: %w", endpoint, err)
	}

	switch u.Scheme {
	case "http", "https":
		return NewHTTPClient(endpoint, timeout), nil
	case "grpc":
		return NewGRPCClient(u.Host, timeout)
	default:
		return nil, fmt.Errorf("unsupported task source scheme %q", u.Scheme)
	}
}

// grpcClientAdapter адаптирует GRPCTaskClient к интерфейсу TaskClient
type grpcClientAdapter struct {
	address string
	timeout time.Duration
	client  *grpc.GRPCTaskClient
}

// NewGRPCClient создает новый gRPC клиент для источника задач
func NewGRPCClient(address string, timeout time.Duration) (TaskClient, error) {
	return &grpcClientAdapter{address: address, timeout: timeout}, nil
}

// Инициализация клиента при первом использовании
func (g *grpcClientAdapter) ensureClient() error {
	if g.client == nil {
		var err error
		g.client, err = grpc.NewGRPCTaskClient(g.address, g.timeout)
		if err != nil {
			return err
		}
	}
	return nil
}

// FetchTask получает задачу через gRPC
func (g *grpcClientAdapter) FetchTask(ctx context.Context) ([]byte, error) {
	if err := g.ensureClient(); err != nil {
		return nil, &TransportError{Op: http.MethodGet, Err: err}
	}

	body, err := g.client.GetTask(ctx)
	if err != nil {
		return nil, rpcError(http.MethodGet, err)
	}
	return body, nil
}

// SubmitResult отправляет результат задачи через gRPC
func (g *grpcClientAdapter) SubmitResult(ctx context.Context, body []byte) error {
	if err := g.ensureClient(); err != nil {
		return &TransportError{Op: http.MethodPost, Err: err}
	}

	if err := g.client.SendTaskResult(ctx, body); err != nil {
		return rpcError(http.MethodPost, err)
	}
	return nil
}

// Close закрывает соединение
func (g *grpcClientAdapter) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// rpcError приводит ошибку gRPC к тем же видам, что и у HTTP-транспорта
func rpcError(op string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return &TransportError{Op: op, Err: err}
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return &TransportError{Op: op, Err: err}
	default:
		return &RPCStatusError{Op: op, Code: st.Code(), Message: st.Message()}
	}
}

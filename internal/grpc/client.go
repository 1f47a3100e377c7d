package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// GRPCTaskClient представляет gRPC клиент для взаимодействия с источником задач
type GRPCTaskClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewGRPCTaskClient создает новый gRPC клиент. Соединение устанавливается лениво,
// поэтому недоступный сервер проявится ошибкой первого вызова.
func NewGRPCTaskClient(address string, timeout time.Duration) (*GRPCTaskClient, error) {
	conn, err := grpc.Dial(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageSize),
			grpc.MaxCallSendMsgSize(maxMessageSize),
		),
	)
	if err != nil {
		return nil, err
	}

	return &GRPCTaskClient{
		conn:    conn,
		timeout: timeout,
	}, nil
}

// Close закрывает соединение с сервером
func (c *GRPCTaskClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// GetTask запрашивает задачу и возвращает ее JSON.
// Ошибки возвращаются как есть, со статусом gRPC.
func (c *GRPCTaskClient) GetTask(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(wrapperspb.BytesValue)
	if err := c.conn.Invoke(ctx, getTaskMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

// SendTaskResult отправляет решенную задачу
func (c *GRPCTaskClient) SendTaskResult(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.conn.Invoke(ctx, submitResultMethod, wrapperspb.Bytes(body), new(emptypb.Empty))
}

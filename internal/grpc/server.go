package grpc

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"linear-solver/internal/db"
	"linear-solver/internal/logger"
	"linear-solver/internal/orchestrator"
	"linear-solver/internal/task"
)

// TaskSource выдает задачи и принимает решения. Реализуется orchestrator.Source.
type TaskSource interface {
	NextTask() ([]byte, error)
	ProcessResult(body []byte) (*db.Result, error)
}

// OrchestratorService имплементирует TaskServiceServer поверх источника задач
type OrchestratorService struct {
	source TaskSource
}

func NewOrchestratorService(source TaskSource) *OrchestratorService {
	return &OrchestratorService{source: source}
}

// GetTask возвращает JSON следующей задачи
func (s *OrchestratorService) GetTask(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	logger.LogINFO("gRPC: Запрос на получение задачи от агента")

	body, err := s.source.NextTask()
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(body), nil
}

// SubmitResult принимает задачу с заполненными x и time
func (s *OrchestratorService) SubmitResult(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	result, err := s.source.ProcessResult(in.GetValue())
	if err != nil {
		logger.LogERROR("Ошибка обработки результата: " + err.Error())
		return nil, toStatus(err)
	}

	logger.INFO.Printf("gRPC: Получен результат задачи ID=%d", result.Identifier)
	return &emptypb.Empty{}, nil
}

// toStatus переводит ошибки источника в коды gRPC по тем же правилам, что и HTTP
func toStatus(err error) error {
	var decodeErr *task.DecodeError
	switch {
	case errors.Is(err, orchestrator.ErrQueueIsEmpty):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &decodeErr):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// NewGRPCServer создает сервер с зарегистрированным сервисом задач
func NewGRPCServer(source TaskSource) *grpc.Server {
	s := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
	)
	s.RegisterService(&TaskServiceDesc, NewOrchestratorService(source))
	return s
}

// StartGRPCServer запускает gRPC сервер на указанном адресе и возвращает экземпляр сервера
// вместе с фактическим адресом (полезно при порте 0)
func StartGRPCServer(address string, source TaskSource) (*grpc.Server, net.Addr, error) {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, nil, err
	}

	s := NewGRPCServer(source)

	go func() {
		logger.INFO.Printf("gRPC сервер запущен на %s", lis.Addr())
		if err := s.Serve(lis); err != nil {
			logger.LogERROR("Ошибка gRPC сервера: " + err.Error())
		}
	}()

	return s, lis.Addr(), nil
}

package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Полезная нагрузка задачи передается тем же JSON, что и по HTTP,
// упакованным в BytesValue, поэтому отдельный .proto не нужен.
const (
	serviceName        = "solver.TaskService"
	getTaskMethod      = "/" + serviceName + "/GetTask"
	submitResultMethod = "/" + serviceName + "/SubmitResult"

	// Задача 3000x3000 в JSON занимает порядка 200 МБ
	maxMessageSize = 512 << 20
)

// TaskServiceServer - серверная часть сервиса задач
type TaskServiceServer interface {
	GetTask(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
	SubmitResult(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
}

// TaskServiceDesc описывает сервис для grpc.Server.RegisterService
var TaskServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTask", Handler: getTaskHandler},
		{MethodName: "SubmitResult", Handler: submitResultHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "task_service",
}

func getTaskHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TaskServiceServer).GetTask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getTaskMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TaskServiceServer).GetTask(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func submitResultHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TaskServiceServer).SubmitResult(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: submitResultMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TaskServiceServer).SubmitResult(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

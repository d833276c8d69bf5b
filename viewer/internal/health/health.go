package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName - имя сервиса для health check
const ServiceName = "eeg.viewer"

type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	mu       sync.RWMutex
	services map[string]grpc_health_v1.HealthCheckResponse_ServingStatus
	watchers map[string][]chan grpc_health_v1.HealthCheckResponse_ServingStatus
}

func NewHealthServer() *HealthServer {
	return &HealthServer{
		services: make(map[string]grpc_health_v1.HealthCheckResponse_ServingStatus),
		watchers: make(map[string][]chan grpc_health_v1.HealthCheckResponse_ServingStatus),
	}
}

// Check возвращает статус сервиса. Пустое имя - сервер целиком,
// он SERVING, пока SERVING хотя бы один сервис.
func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	servingStatus, exists := h.statusLocked(req.GetService())
	if !exists {
		return nil, status.Error(codes.NotFound, "service not found")
	}

	return &grpc_health_v1.HealthCheckResponse{
		Status: servingStatus,
	}, nil
}

// Watch отправляет текущий статус и все последующие изменения.
// Для неизвестного сервиса - SERVICE_UNKNOWN, а не ошибка.
func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	service := req.GetService()
	updates := make(chan grpc_health_v1.HealthCheckResponse_ServingStatus, 1)

	h.mu.Lock()
	current, exists := h.statusLocked(service)
	if !exists {
		current = grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN
	}
	h.watchers[service] = append(h.watchers[service], updates)
	h.mu.Unlock()
	defer h.removeWatcher(service, updates)

	last := current
	if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: current}); err != nil {
		return err
	}

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case next := <-updates:
			if next == last {
				continue
			}
			last = next
			if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: next}); err != nil {
				return err
			}
		}
	}
}

func (h *HealthServer) SetServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_SERVING)
}

func (h *HealthServer) SetNotServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// Shutdown переводит все сервисы в NOT_SERVING
func (h *HealthServer) Shutdown() {
	h.mu.RLock()
	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	h.mu.RUnlock()

	for _, name := range names {
		h.SetNotServingStatus(name)
	}
}

func (h *HealthServer) statusLocked(service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, bool) {
	if service != "" {
		s, ok := h.services[service]
		return s, ok
	}
	for _, s := range h.services {
		if s == grpc_health_v1.HealthCheckResponse_SERVING {
			return s, true
		}
	}
	if len(h.services) == 0 {
		return grpc_health_v1.HealthCheckResponse_SERVING, true
	}
	return grpc_health_v1.HealthCheckResponse_NOT_SERVING, true
}

func (h *HealthServer) setStatus(service string, st grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.services[service] = st

	for _, name := range []string{service, ""} {
		overall, _ := h.statusLocked(name)
		for _, ch := range h.watchers[name] {
			// в буфере только последний статус
			select {
			case <-ch:
			default:
			}
			ch <- overall
		}
	}
}

func (h *HealthServer) removeWatcher(service string, ch chan grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.watchers[service]
	for i, c := range list {
		if c == ch {
			h.watchers[service] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(h.watchers[service]) == 0 {
		delete(h.watchers, service)
	}
}

// NewGRPCServer создает gRPC сервер с health и reflection,
// каждый вызов логируется.
func NewGRPCServer(h *HealthServer, log zerolog.Logger) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unaryLogger(log)),
		grpc.ChainStreamInterceptor(streamLogger(log)),
	)
	grpc_health_v1.RegisterHealthServer(srv, h)
	reflection.Register(srv)
	return srv
}

func unaryLogger(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug().
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Msg("grpc call")
		return resp, err
	}
}

func streamLogger(log zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		log.Debug().
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Msg("grpc stream closed")
		return err
	}
}

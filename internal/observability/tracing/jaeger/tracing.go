package jaeger

import (
	"context"

	cfg "github.com/JMURv/auth-service/internal/config"
	"github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"
)

// Start installs the global tracer and blocks until ctx is done. Without a
// Jaeger section the no-op tracer stays in place.
func Start(ctx context.Context, conf cfg.Config) {
	if conf.Jaeger == nil {
		zap.L().Info("Jaeger is not configured, tracing disabled")
		return
	}

	tracerCfg := jaegercfg.Configuration{
		ServiceName: conf.ServiceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  conf.Jaeger.Sampler.Type,
			Param: conf.Jaeger.Sampler.Param,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           conf.Jaeger.Reporter.LogSpans,
			LocalAgentHostPort: conf.Jaeger.Reporter.LocalAgentHostPort,
		},
		Tags: []opentracing.Tag{
			{Key: "mode", Value: conf.Server.Mode},
		},
	}

	tracer, closer, err := tracerCfg.NewTracer()
	if err != nil {
		zap.L().Error("Error initializing Jaeger tracer, tracing disabled", zap.Error(err))
		return
	}

	opentracing.SetGlobalTracer(tracer)
	zap.L().Info("Jaeger has been started", zap.String("agent", conf.Jaeger.Reporter.LocalAgentHostPort))
	<-ctx.Done()

	opentracing.SetGlobalTracer(opentracing.NoopTracer{})
	if err = closer.Close(); err != nil {
		zap.L().Debug("Error shutting down Jaeger", zap.Error(err))
	}
	zap.L().Info("Jaeger has been stopped")
}

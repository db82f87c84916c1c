package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/logger"
)

type config interface {
	Enabled() bool
	ServiceName() string
	AgentHostPort() string
	SamplerParam() float64
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init installs the global jaeger tracer. When tracing is off the global
// no-op tracer stays in place and spans cost nothing.
func Init(config config) (io.Closer, error) {
	if !config.Enabled() {
		return nopCloser{}, nil
	}

	cfg := jaegercfg.Configuration{
		ServiceName: config.ServiceName(),
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeProbabilistic,
			Param: config.SamplerParam(),
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: config.AgentHostPort(),
		},
	}

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, errors.Wrap(err, "cannot init tracing")
	}
	opentracing.SetGlobalTracer(tracer)

	logger.Info("tracing enabled", zap.String("agent", config.AgentHostPort()))
	return closer, nil
}

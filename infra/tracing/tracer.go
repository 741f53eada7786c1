package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs a jaeger tracer configured from the JAEGER_* environment as the global tracer.
// When disabled the global noop tracer is kept.
func Setup(serviceName string, enabled bool) (io.Closer, error) {
	if !enabled {
		return nopCloser{}, nil
	}
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaeger.StdLogger))
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.WithField("service", cfg.ServiceName).Info("jaeger tracer installed")
	return closer, nil
}

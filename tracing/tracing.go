// Package tracing wires the opentracing/jaeger-client-go pair the
// teacher's go.mod already carries (otherwise unexercised by the
// teacher's own source) into real spans: one around each RPC call
// (rpcclient.Client.Call) and one around each full reconstruction
// (reconstruct.Reconstructor.EnsureInscription). Export is optional and
// controlled by JAEGER_AGENT_ADDR; with it unset, Init installs a
// no-op tracer and StartSpan calls are free.
package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"github.com/zordinals/zordinals/log"
)

// Init installs a global tracer for serviceName. When agentAddr is
// empty, tracing is a no-op (opentracing.NoopTracer); otherwise spans
// are sampled at 100% and reported to the local Jaeger agent at
// agentAddr. The returned closer must be closed at process shutdown to
// flush any buffered spans.
func Init(serviceName, agentAddr string) (io.Closer, error) {
	if agentAddr == "" {
		opentracing.SetGlobalTracer(opentracing.NoopTracer{})
		return noopCloser{}, nil
	}

	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: agentAddr,
			LogSpans:           false,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	log.Srv.Infof("tracing enabled, reporting to %s", agentAddr)
	return closer, nil
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

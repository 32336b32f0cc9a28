package tracer

import (
	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/internal/version"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/mocktracer"
	ddTracer "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const serviceName = "pos-analytics"

// StartTracer reports spans to the local DataDog agent, tagged with the chain
// the service queries. Disabled, spans go to an in-memory mock tracer.
func StartTracer(enabled bool, chain config.Chain) {
	if !enabled {
		mocktracer.Start()
		return
	}
	ddTracer.Start(
		ddTracer.WithEnv(chain.String()),
		ddTracer.WithService(serviceName),
		ddTracer.WithServiceVersion(version.GetVersion()),
		ddTracer.WithGlobalTag("chain", chain.String()),
		ddTracer.WithLogStartup(false),
	)
}

func StopTracer() {
	ddTracer.Stop()
}

package exporter

import (
	"net"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/exporters/jaeger"
)

// NewJaeger sends spans to a collector URL (http://host:14268/api/traces) or,
// for a bare host:port, to an agent over UDP.
func NewJaeger(endpoint string) (*jaeger.Exporter, error) {
	var endpointOpt jaeger.EndpointOption
	if strings.Contains(endpoint, "://") {
		endpointOpt = jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint))
	} else {
		host, port, err := net.SplitHostPort(endpoint)
		if err != nil {
			return nil, errors.Wrapf(err, "jaeger agent endpoint %q", endpoint)
		}
		endpointOpt = jaeger.WithAgentEndpoint(jaeger.WithAgentHost(host), jaeger.WithAgentPort(port))
	}

	traceExp, err := jaeger.New(endpointOpt)
	if err != nil {
		return nil, errors.Wrap(err, "create jaeger exporter")
	}
	return traceExp, nil
}

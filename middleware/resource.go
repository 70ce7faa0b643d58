package middleware

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/duynhne/backoffice/config"
)

// unknownService is the default service name when nothing better is known
const unknownService = "unknown-service"

// serviceIdentity resolves the name reported to tracing and profiling backends.
// OTEL_SERVICE_NAME wins over SERVICE_NAME so collectors can relabel deployments.
func serviceIdentity(cfg *config.Config) (name, environment string) {
	name = os.Getenv("OTEL_SERVICE_NAME")
	if name == "" {
		name = cfg.Service.Name
	}
	if name == "" {
		name = unknownService
	}
	return name, cfg.Service.Env
}

// CreateResource creates an OpenTelemetry resource describing this dashboard process
func CreateResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	name, env := serviceIdentity(cfg)

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(name),
			semconv.ServiceVersionKey.String(cfg.Service.Version),
			semconv.DeploymentEnvironmentKey.String(env),
		),
	)
	if err != nil {
		return resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(name),
		), fmt.Errorf("resource detection partial failure (using fallback): %w", err)
	}

	return res, nil
}

// GetServiceName extracts service name from a resource
func GetServiceName(res *resource.Resource) string {
	if res == nil {
		return unknownService
	}
	for _, attr := range res.Attributes() {
		if attr.Key == semconv.ServiceNameKey {
			return attr.Value.AsString()
		}
	}
	return unknownService
}

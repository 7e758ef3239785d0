package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"ely.by/authlib/internal/version"
)

// ServiceName is reported as service.name of the exported telemetry
const ServiceName = "authlib"

// Scope is the instrumentation scope shared by all the gateway components
const Scope = "ely.by/authlib"

// Attribute keys describing a join handshake
const (
	UsernameKey = attribute.Key("authlib.username")
	ServerIdKey = attribute.Key("authlib.server_id")
)

// GetMeter returns a meter of the gateway scope tagged with the build version
func GetMeter() metric.Meter {
	return otel.GetMeterProvider().Meter(Scope, metric.WithInstrumentationVersion(version.Version()))
}

func GetTracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(Scope, trace.WithInstrumentationVersion(version.Version()))
}

// HandshakeAttributes identifies the player and the server of a join handshake.
// The access token is never part of the telemetry
func HandshakeAttributes(username string, serverId string) []attribute.KeyValue {
	return []attribute.KeyValue{
		UsernameKey.String(username),
		ServerIdKey.String(serverId),
	}
}

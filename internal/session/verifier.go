package session

import (
	"context"
	"log/slog"
	"net"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"ely.by/authlib/internal/otel"
	"ely.by/authlib/internal/profiles"
)

type Directory interface {
	JoinServer(ctx context.Context, username string, accessToken string, serverId string) (bool, error)
	CheckServer(ctx context.Context, username string, serverId string) (*profiles.PlayerRecord, error)
}

type LaunchState interface {
	IsLaunched() bool
}

type ProfileDecorator interface {
	ToPublicProfile(record *profiles.PlayerRecord) *profiles.Profile
}

func NewVerifier(directory Directory, launchState LaunchState, decorator ProfileDecorator) (*Verifier, error) {
	metrics, err := newVerifierMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &Verifier{
		Directory:        directory,
		LaunchState:      launchState,
		ProfileDecorator: decorator,
		tracer:           otel.GetTracer(),
		metrics:          metrics,
	}, nil
}

// Verifier implements the server join handshake. It keeps no state between calls
type Verifier struct {
	Directory
	LaunchState
	ProfileDecorator

	tracer  trace.Tracer
	metrics *verifierMetrics
}

// VerifyJoin notifies the identity directory that the player is joining the server
func (v *Verifier) VerifyJoin(ctx context.Context, profile *profiles.Profile, accessToken string, serverId string) error {
	if !v.LaunchState.IsLaunched() {
		v.metrics.JoinRejected.Add(ctx, 1)
		return &AuthRejectedError{Reason: ReasonNotLaunched}
	}

	ctx, span := v.tracer.Start(ctx, "session.VerifyJoin", trace.WithAttributes(
		otel.HandshakeAttributes(profile.Name, serverId)...,
	))
	defer span.End()

	slog.DebugContext(ctx, "Joining the server",
		slog.String("username", profile.Name),
		slog.String("serverId", serverId),
	)

	v.metrics.JoinRequest.Add(ctx, 1)
	success, err := v.Directory.JoinServer(ctx, profile.Name, accessToken, serverId)
	if err != nil {
		v.metrics.JoinUnavailable.Add(ctx, 1)
		span.SetStatus(codes.Error, "")
		span.RecordError(err)
		slog.ErrorContext(ctx, "Unable to send join notification", slog.String("username", profile.Name), slog.Any("error", err))

		return &DirectoryUnavailableError{Err: err}
	}

	if !success {
		v.metrics.JoinRejected.Add(ctx, 1)
		span.SetStatus(codes.Error, ReasonRejected)

		return &AuthRejectedError{Reason: ReasonRejected}
	}

	return nil
}

// CheckJoined asks the identity directory whether the player has joined the server.
// A nil profile without an error means that there is no such join
func (v *Verifier) CheckJoined(ctx context.Context, profile *profiles.Profile, serverId string) (*profiles.Profile, error) {
	ctx, span := v.tracer.Start(ctx, "session.CheckJoined", trace.WithAttributes(
		otel.HandshakeAttributes(profile.Name, serverId)...,
	))
	defer span.End()

	slog.DebugContext(ctx, "Checking the server join",
		slog.String("username", profile.Name),
		slog.String("serverId", serverId),
	)

	record, err := v.Directory.CheckServer(ctx, profile.Name, serverId)
	if err != nil {
		v.metrics.CheckFailed.Add(ctx, 1)
		span.SetStatus(codes.Error, "")
		span.RecordError(err)
		slog.ErrorContext(ctx, "Unable to check the server join", slog.String("username", profile.Name), slog.Any("error", err))

		return nil, &DirectoryUnavailableError{Err: err}
	}

	if record == nil {
		v.metrics.CheckMissed.Add(ctx, 1)
		return nil, nil
	}

	v.metrics.CheckFound.Add(ctx, 1)

	return v.ProfileDecorator.ToPublicProfile(record), nil
}

// CheckJoinedFrom is the same as CheckJoined. The address doesn't take part in the verification
func (v *Verifier) CheckJoinedFrom(ctx context.Context, profile *profiles.Profile, serverId string, _ net.IP) (*profiles.Profile, error) {
	return v.CheckJoined(ctx, profile, serverId)
}

func newVerifierMetrics(meter metric.Meter) (*verifierMetrics, error) {
	m := &verifierMetrics{}
	var errors, err error

	m.JoinRequest, err = meter.Int64Counter(
		"authlib.session.join.request",
		metric.WithDescription("Number of join notifications sent to the identity directory"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	m.JoinRejected, err = meter.Int64Counter(
		"authlib.session.join.rejected",
		metric.WithDescription("Number of rejected join attempts"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	m.JoinUnavailable, err = meter.Int64Counter(
		"authlib.session.join.unavailable",
		metric.WithDescription("Number of join attempts failed due to the identity directory failure"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	m.CheckFound, err = meter.Int64Counter("authlib.session.check.found", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	m.CheckMissed, err = meter.Int64Counter("authlib.session.check.missed", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	m.CheckFailed, err = meter.Int64Counter("authlib.session.check.failed", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	return m, errors
}

type verifierMetrics struct {
	JoinRequest     metric.Int64Counter
	JoinRejected    metric.Int64Counter
	JoinUnavailable metric.Int64Counter
	CheckFound      metric.Int64Counter
	CheckMissed     metric.Int64Counter
	CheckFailed     metric.Int64Counter
}

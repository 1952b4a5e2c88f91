package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const principalKey ctxKey = "session_principal"

var tracer = otel.Tracer("github.com/WailSalutem-Health-Care/frontdesk-service/session")

// MetricsRecorder records session failures and permission checks. Nil is allowed.
type MetricsRecorder interface {
	RecordAuthFailure(ctx context.Context, reason string)
	RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool)
}

// Middleware verifies the bearer session token and stores the principal
// in the request context.
func Middleware(tokens *Tokens, metrics MetricsRecorder, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "session.Middleware",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			fail := func(reason, msg string) {
				span.SetStatus(codes.Error, msg)
				span.SetAttributes(attribute.String("error.type", reason))
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, reason)
				}
				http.Error(w, msg, http.StatusUnauthorized)
			}

			authz := r.Header.Get("Authorization")
			if authz == "" {
				fail("missing_authorization", "missing authorization")
				return
			}

			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				fail("invalid_header_format", "invalid authorization header")
				return
			}

			pr, err := tokens.Verify(parts[1])
			if err != nil {
				logger.Debug().Err(err).Msg("session token rejected")
				fail("invalid_token", "invalid token")
				return
			}

			span.SetAttributes(
				attribute.String("session.id", pr.SessionID),
				attribute.String("session.role", string(pr.Role)),
			)
			span.SetStatus(codes.Ok, "session verified")

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(ctx, pr)))
		})
	}
}

// RequirePermission rejects callers whose role lacks permission.
func RequirePermission(per string, perms Permissions, metrics MetricsRecorder, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := tracer.Start(r.Context(), "session.RequirePermission",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.String("permission.required", per)),
			)
			defer span.End()

			record := func(allowed bool) {
				if metrics != nil {
					metrics.RecordPermissionCheck(ctx, per, float64(time.Since(start).Microseconds())/1000, allowed)
				}
			}

			pr, ok := FromContext(ctx)
			if !ok {
				span.SetStatus(codes.Error, "unauthenticated")
				record(false)
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			allowed := perms.Allows(pr.Role, per)
			span.SetAttributes(
				attribute.Bool("permission.allowed", allowed),
				attribute.String("session.role", string(pr.Role)),
			)
			record(allowed)

			if !allowed {
				logger.Info().Str("role", string(pr.Role)).Str("permission", per).Msg("permission denied")
				span.SetStatus(codes.Error, "forbidden")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			span.SetStatus(codes.Ok, "permission granted")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithPrincipal adds a principal to the context.
func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// FromContext extracts Principal from context.
func FromContext(ctx context.Context) (*Principal, bool) {
	pr, ok := ctx.Value(principalKey).(*Principal)
	return pr, ok
}

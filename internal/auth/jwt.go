package auth

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type ctxKey string

const CtxUserID ctxKey = "uid"

// JWTCfg holds JWT authentication configuration
type JWTCfg struct {
	HS256Secret string // HMAC secret for HS256 tokens
	DevMode     bool   // Allow X-Debug-Sub header (DANGEROUS: only for local dev)
}

// UserResolver maps a token subject to the internal manager ID
type UserResolver interface {
	ResolveUser(ctx context.Context, sub string) (string, error)
}

// PgUserResolver upserts app_user rows keyed by subject
type PgUserResolver struct {
	DB *pgxpool.Pool
}

// ResolveUser creates the manager on first sight and returns its ID
func (p PgUserResolver) ResolveUser(ctx context.Context, sub string) (string, error) {
	var userID string
	err := p.DB.QueryRow(ctx,
		`INSERT INTO app_user (sub) VALUES ($1)
		 ON CONFLICT (sub) DO UPDATE SET sub = excluded.sub
		 RETURNING id`, sub).Scan(&userID)
	return userID, err
}

// Middleware creates HTTP middleware for JWT authentication
// Supports two modes:
// 1. Production: Bearer token with HS256 validation
// 2. Development: X-Debug-Sub header (ONLY when DevMode=true)
func Middleware(users UserResolver, cfg JWTCfg) func(http.Handler) http.Handler {
	if cfg.DevMode {
		log.Warn().Msg("SECURITY WARNING: DevMode enabled - X-Debug-Sub header will bypass JWT authentication")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.Ctx(r.Context())

			tok := ""
			if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
				tok = h[7:]
			}

			sub := ""

			// Development mode: accept X-Debug-Sub ONLY if DevMode is enabled and no token present
			if cfg.DevMode && tok == "" {
				sub = r.Header.Get("X-Debug-Sub")
				if sub != "" {
					logger.Debug().Str("sub", sub).Msg("using X-Debug-Sub header (dev mode)")
				}
			}

			if tok != "" {
				s, err := subject(tok, cfg.HS256Secret)
				if err != nil {
					logger.Warn().Err(err).Msg("jwt validation failed")
					writeUnauthorized(w)
					return
				}
				sub = s
			}

			if sub == "" {
				logger.Warn().Msg("missing subject (no JWT sub or X-Debug-Sub header)")
				writeUnauthorized(w)
				return
			}

			userID, err := users.ResolveUser(r.Context(), sub)
			if err != nil {
				logger.Error().Err(err).Str("sub", sub).Msg("failed to upsert user")
				http.Error(w, `{"error":"server error"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}

// subject validates an HS256 token and returns its sub claim
func subject(tok, secret string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	return sub, nil
}

// UserID extracts the authenticated user ID from request context
// Returns empty string if not authenticated (should never happen after middleware)
func UserID(ctx context.Context) string {
	if v := ctx.Value(CtxUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserID returns a context carrying an authenticated user ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

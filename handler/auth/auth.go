package auth

import (
	"boostlend/handler/render"
	"boostlend/handler/request"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/twitchtv/twirp"
)

var (
	// ErrNoSecret tokens can be neither issued nor verified without a secret
	ErrNoSecret = errors.New("auth: secret not configured")
	// ErrInvalidSubject the token subject is not a caller address
	ErrInvalidSubject = errors.New("auth: subject is not an address")
)

// Authenticator issues and verifies HS256 bearer tokens whose subject is the
// caller address
type Authenticator struct {
	secret []byte
	issuer string
}

// New authenticator, issuer is checked when not empty
func New(secret, issuer string) *Authenticator {
	return &Authenticator{
		secret: []byte(strings.TrimSpace(secret)),
		issuer: issuer,
	}
}

// Sign issues a token for user valid for ttl
func (a *Authenticator) Sign(user common.Address, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.Hex(),
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Login verifies token and returns the caller it names
func (a *Authenticator) Login(token string) (common.Address, error) {
	if len(a.secret) == 0 {
		return common.Address{}, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(time.Minute),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return common.Address{}, err
	}

	if !common.IsHexAddress(claims.Subject) {
		return common.Address{}, ErrInvalidSubject
	}

	user := common.HexToAddress(claims.Subject)
	if user == (common.Address{}) {
		return common.Address{}, ErrInvalidSubject
	}

	return user, nil
}

// HandleAuthentication puts the caller named by a valid bearer token into the
// request context, requests without one pass through anonymous
func HandleAuthentication(a *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx)

			accessToken := getBearerToken(r)
			if accessToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := a.Login(accessToken)
			if err != nil {
				log.WithError(err).Debugln("auth.Login")
				next.ServeHTTP(w, r)
				return
			}

			ctx = logger.WithContext(ctx, log.WithField("caller", user.Hex()))
			next.ServeHTTP(w, r.WithContext(request.NewContext(ctx).WithUser(user)))
		}

		return http.HandlerFunc(fn)
	}
}

// LoginRequired rejects anonymous requests
func LoginRequired(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if _, ok := request.NewContext(r.Context()).GetUser(); !ok {
			render.Error(w, twirp.NewError(twirp.Unauthenticated, "login required"))
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

func getBearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

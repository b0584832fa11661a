package authfunc

import (
	"context"
	"time"

	handlers "github.com/HuaTug/video-comment/cmd/api/handlers/comment"
	"github.com/HuaTug/video-comment/pkg/constants"
	"github.com/HuaTug/video-comment/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"
	"github.com/pkg/errors"
)

var AuthMiddleware *jwt.HertzJWTMiddleware

// JwtInit builds the HS256 middleware. Tokens carry the caller's user id
// under the identity claim; issuing them is the user service's job, so
// login is not served here.
func JwtInit(secret, realm string, timeout time.Duration) error {
	mw, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:         realm,
		Key:           []byte(secret),
		Timeout:       timeout,
		MaxRefresh:    timeout,
		IdentityKey:   constants.IdentityKey,
		TokenLookup:   "header: Authorization, query: token, cookie: jwt",
		TokenHeadName: "Bearer",
		TimeFunc:      time.Now,
		PayloadFunc: func(data interface{}) jwt.MapClaims {
			if v, ok := data.(string); ok {
				return jwt.MapClaims{constants.IdentityKey: v}
			}
			return jwt.MapClaims{}
		},
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			return claims[constants.IdentityKey]
		},
		Authenticator: func(ctx context.Context, c *app.RequestContext) (interface{}, error) {
			return nil, jwt.ErrFailedAuthentication
		},
		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			handlers.SendResponse(c, errno.AuthorizationFailedErr.WithMessage(message), nil)
		},
	})
	if err != nil {
		return errors.Wrap(err, "init jwt middleware")
	}
	AuthMiddleware = mw
	return nil
}

func Auth() []app.HandlerFunc {
	return append(make([]app.HandlerFunc, 0),
		AuthMiddleware.MiddlewareFunc(),
	)
}

// GenerateToken signs a token for userID. Used by tests and local tooling.
func GenerateToken(userID string) (string, error) {
	token, _, err := AuthMiddleware.TokenGenerator(userID)
	return token, err
}

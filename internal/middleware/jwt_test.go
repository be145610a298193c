package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
	"github.com/noah-isme/internship-api/pkg/logger"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "user-1", RoleID: "role-1", Email: "u@example.com"}, nil
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/whoami", func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, claims.UserID+"|"+c.GetString(logger.CallerIDKey))
	})
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	r := newRouter(OptionalJWT(stubValidator{}))

	assert.Equal(t, "anonymous", serve(r, "").Body.String())
	assert.Equal(t, "anonymous", serve(r, "Bearer bad").Body.String())
	assert.Equal(t, "anonymous", serve(r, "bearer").Body.String())
	assert.Equal(t, "user-1|user-1", serve(r, "bearer good").Body.String())
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"barberhive/models"
	"barberhive/utils"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OwnerAuthenticator resolves the shop behind an owner credential.
type OwnerAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*models.Shop, error)
	AuthenticateFirebase(ctx context.Context, uid, email string) (*models.Shop, error)
}

// FirebaseVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// OwnerAuthMiddleware accepts a session token issued by the login endpoint,
// or, when firebase is non-nil, a Firebase ID token for a linked shop.
func OwnerAuthMiddleware(owners OwnerAuthenticator, firebase FirebaseVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()
		ctx := c.Request.Context()

		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Missing or invalid Authorization header"})
			return
		}

		shop, err := owners.AuthenticateToken(ctx, tokenString)
		if err != nil && firebase != nil {
			shop, err = firebaseOwner(ctx, owners, firebase, tokenString)
		}
		if err != nil {
			logger.Debug("owner authentication failed", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Invalid or expired session"})
			return
		}

		SetActor(c, models.Actor{ShopID: shop.ID})
		c.Next()
	}
}

func firebaseOwner(ctx context.Context, owners OwnerAuthenticator, firebase FirebaseVerifier, idToken string) (*models.Shop, error) {
	token, err := firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if token.UID == "" {
		return nil, errors.New("firebase token without uid")
	}
	email, _ := token.Claims["email"].(string)
	return owners.AuthenticateFirebase(ctx, token.UID, email)
}

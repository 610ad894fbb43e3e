package middleware

import (
	"errors"

	"tushare/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errNoUser = errors.New("no authenticated user in context")

func GetUserID(c *gin.Context) (primitive.ObjectID, error) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return primitive.NilObjectID, errNoUser
	}

	userID, ok := value.(primitive.ObjectID)
	if !ok || userID.IsZero() {
		return primitive.NilObjectID, errNoUser
	}

	return userID, nil
}

func GetClaims(c *gin.Context) (*utils.AuthClaims, error) {
	value, exists := c.Get(ContextClaims)
	if !exists {
		return nil, errNoUser
	}

	claims, ok := value.(*utils.AuthClaims)
	if !ok {
		return nil, errNoUser
	}

	return claims, nil
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token and injects the current user
// (id plus role flags) into the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		isModerator, _ := claims["is_moderator"].(bool)
		isRespondent, _ := claims["is_respondent"].(bool)

		c.Set("user_id", uint(userID))
		c.Set("is_moderator", isModerator)
		c.Set("is_respondent", isRespondent)
		c.Next()
	}
}

// RequireModerator gates the moderator route group on the role flag.
func RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_moderator") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Moderator role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRespondent gates the respondent route group on the role flag.
func RequireRespondent() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_respondent") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Respondent role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/davidchen92/lostpoint/pkg/errors"
	"github.com/davidchen92/lostpoint/pkg/response"
)

// CtxUserIDKey is the gin context key holding the derived caller identity.
const CtxUserIDKey = "lostpoint.user_id"

// Header names consulted for the caller identity, in priority order.
const (
	HeaderDeviceID   = "X-Device-ID"
	HeaderMACAddress = "X-MAC-Address"
)

// Identity derives the caller identifier used as the daily quota key:
// device id, then MAC address, then a hash of the User-Agent. Absence of all
// three is a caller error.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := deriveUserID(c)
		if userID == "" {
			response.Error(c, apperrors.ErrIdentityRequired)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

func deriveUserID(c *gin.Context) string {
	if deviceID := strings.TrimSpace(c.GetHeader(HeaderDeviceID)); deviceID != "" {
		return "device_" + deviceID
	}
	if mac := strings.TrimSpace(c.GetHeader(HeaderMACAddress)); mac != "" {
		return "mac_" + mac
	}
	if ua := strings.TrimSpace(c.Request.UserAgent()); ua != "" {
		h := fnv.New64a()
		_, _ = h.Write([]byte(ua))
		return fmt.Sprintf("ua_%x", h.Sum64())
	}
	return ""
}

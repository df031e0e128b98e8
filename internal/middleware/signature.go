package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jielong-bot/internal/response"
)

// SignatureHeader is the header LINE signs webhook bodies into
const SignatureHeader = "X-Line-Signature"

// maxWebhookBody bounds the body read for verification
const maxWebhookBody = 1 << 20

// LineSignature verifies X-Line-Signature against the raw body and hands
// the body on to the handler. Without a channel secret every call is refused.
func LineSignature(channelSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if channelSecret == "" {
			logger.Error("Webhook rejected, LINE channel secret is not configured")
			response.SendError(c, http.StatusServiceUnavailable, response.ErrCodeUnavailable, "Webhook not configured")
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
		if err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Failed to read request body")
			return
		}
		if len(body) > maxWebhookBody {
			response.SendError(c, http.StatusRequestEntityTooLarge, response.ErrCodeValidation, "Request body too large")
			return
		}

		signature := c.GetHeader(SignatureHeader)
		if signature == "" || !ValidSignature(channelSecret, signature, body) {
			logger.Warn("Invalid webhook signature",
				zap.String("client_ip", c.ClientIP()),
				zap.Bool("signature_present", signature != ""),
			)
			response.SendError(c, http.StatusBadRequest, response.ErrCodeUnauthorized, "Invalid signature")
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

// ValidSignature reports whether signature is base64(HMAC-SHA256(secret, body))
func ValidSignature(channelSecret, signature string, body []byte) bool {
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(decoded, Sign(channelSecret, body))
}

// Sign computes the raw HMAC-SHA256 of body
func Sign(channelSecret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return mac.Sum(nil)
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/eventick/eventick/internal/notify"
	"github.com/eventick/eventick/internal/otp"
	"github.com/eventick/eventick/internal/payments"
	"github.com/eventick/eventick/internal/signer"
	"github.com/eventick/eventick/internal/ticketing"
)

// Services bundles the wired application services handed to handlers.
type Services struct {
	Issuer   *ticketing.Issuer
	Verifier *ticketing.Verifier
	Ledger   *ticketing.Ledger
	Signer   *signer.Signer
	Payments *payments.Client
	Mailer   *notify.Mailer
	OTP      *otp.Store
	BaseURL  string
}

func ServicesMiddleware(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("services", svc)
		c.Next()
	}
}

func GetServices(c *gin.Context) *Services {
	v, exists := c.Get("services")
	if !exists {
		return nil
	}
	return v.(*Services)
}

package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt"
)

const (
	customerKey = "customer_id"
	courierKey  = "courier_id"
)

// Authenticator checks HS256 tokens. Customer tokens carry a customer_id
// claim, courier tokens a courier_id claim.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) issue(claim, id string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		claim: id,
		"exp": time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Issue signs a customer token. Used by the simulator and tests.
func (a *Authenticator) Issue(customerID string, ttl time.Duration) (string, error) {
	return a.issue(customerKey, customerID, ttl)
}

func (a *Authenticator) IssueCourier(courierID string, ttl time.Duration) (string, error) {
	return a.issue(courierKey, courierID, ttl)
}

// claim returns the named string claim of a valid token.
func (a *Authenticator) claim(token, name string) (string, bool) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return a.secret, nil
	})
	if err != nil {
		return "", false
	}

	id, ok := claims[name].(string)
	return id, ok && id != ""
}

// Middleware accepts "Authorization: Bearer <token>" or a token query
// parameter, the latter for websocket clients that cannot set headers.
func (a *Authenticator) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return fiber.ErrUnauthorized
		}

		id, ok := a.claim(token, customerKey)
		if !ok {
			return fiber.ErrUnauthorized
		}
		c.Locals(customerKey, id)
		return c.Next()
	}
}

// CourierMiddleware guards courier sockets: the token's courier_id claim must
// match the courier_id query parameter.
func (a *Authenticator) CourierMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		courierID := c.Query("courier_id")
		if token == "" || courierID == "" {
			return fiber.ErrUnauthorized
		}

		id, ok := a.claim(token, courierKey)
		if !ok || id != courierID {
			return fiber.ErrUnauthorized
		}
		c.Locals(courierKey, courierID)
		return c.Next()
	}
}

func customerID(c *fiber.Ctx) string {
	id, _ := c.Locals(customerKey).(string)
	return id
}

package utils

import (
	"errors"
	"time"

	"marketplace-booking/database"
	userModel "marketplace-booking/models/user"
	"marketplace-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// GetUserByUUID loads a user row by the uuid claim carried in session tokens.
func GetUserByUUID(uuid string) (*userModel.User, error) {
	if uuid == "" {
		return nil, ErrUserNotFound
	}

	var u userModel.User
	err := database.DB.Where("uuid = ?", uuid).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CurrentUser resolves the authenticated user from the middleware claims.
func CurrentUser(c *fiber.Ctx) (*userModel.User, error) {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return nil, ErrUserNotFound
	}
	uuid, _ := claims["uuid"].(string)
	return GetUserByUUID(uuid)
}

// CreateLogEntry snapshots the request/response pair for async logging.
// Everything is deep copied because fasthttp reuses its buffers once the
// handler returns.
func CreateLogEntry(c *fiber.Ctx) types.LogEntry {
	return types.LogEntry{
		Method:          string([]byte(c.Method())),
		URL:             string([]byte(c.OriginalURL())),
		RequestBody:     string(append([]byte(nil), c.Body()...)),
		ResponseBody:    string(append([]byte(nil), c.Response().Body()...)),
		RequestHeaders:  string(append([]byte(nil), c.Request().Header.Header()...)),
		ResponseHeaders: string(append([]byte(nil), c.Response().Header.Header()...)),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}

package util

import (
	"examhub_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Role: model.Teacher, Email: "t@example.com"}
	user.ID = 42

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	assert.NoError(t, err)

	claims, err := ParseJWT(token, "test-secret")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)
	assert.Equal(t, "t@example.com", claims.Email)
}

func TestJWTWrongSecret(t *testing.T) {
	user := &model.User{Role: model.Student}
	user.ID = 1

	token, err := GenerateJWT(user, "right-secret", time.Hour)
	assert.NoError(t, err)

	_, err = ParseJWT(token, "wrong-secret")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	user := &model.User{Role: model.Student}
	user.ID = 1

	token, err := GenerateJWT(user, "secret", -time.Minute)
	assert.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestClampPage(t *testing.T) {
	page, size := ClampPage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)

	page, size = ClampPage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, size)

	page, size = ClampPage(-1, -5)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)
}

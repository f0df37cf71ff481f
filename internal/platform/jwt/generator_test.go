package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewGenerator は各種設定でGeneratorが正しく生成されることを検証します。
func TestNewGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		secret     string
		expiration time.Duration
	}{
		{"standard config", "my-secret-key", time.Hour},
		{"long expiration", "secret", 24 * time.Hour * 30},
		{"short expiration", "s", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator(tt.secret, tt.expiration)

			require.NotNil(t, gen)
			assert.Equal(t, tt.secret, string(gen.secret))
			assert.Equal(t, tt.expiration, gen.expiration)
		})
	}
}

// TestGenerator_GenerateToken は生成されたトークンが有効で正しいクレームを含むことを検証します。
func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	gen := NewGenerator("test-secret", 2*time.Hour)

	before := time.Now().Truncate(time.Second)
	tokenStr, err := gen.GenerateToken("admin", RoleOperator)
	after := time.Now().Truncate(time.Second).Add(time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (interface{}, error) {
		_, ok := tok.Method.(*jwt.SigningMethodHMAC)
		assert.True(t, ok, "unexpected signing method: %v", tok.Header["alg"])
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, RoleOperator, claims["role"])

	exp := int64(claims["exp"].(float64))
	assert.GreaterOrEqual(t, exp, before.Add(2*time.Hour).Unix())
	assert.LessOrEqual(t, exp, after.Add(2*time.Hour).Unix())
}

// TestGenerator_GenerateToken_DifferentSubjects は異なる主体に対して異なるトークンが生成されることを検証します。
func TestGenerator_GenerateToken_DifferentSubjects(t *testing.T) {
	t.Parallel()

	gen := NewGenerator("test-secret", time.Hour)

	token1, _ := gen.GenerateToken("alice", RoleOperator)
	token2, _ := gen.GenerateToken("bob", RoleOperator)

	assert.NotEqual(t, token1, token2)
}

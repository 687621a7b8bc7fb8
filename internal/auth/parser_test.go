package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-service/internal/model"
)

func TestParseRoundTrip(t *testing.T) {
	parser := NewParser("secret")
	employee := uuid.New()
	claims := &Claims{
		UserID:     uuid.New(),
		CompanyID:  uuid.New(),
		Role:       model.UserRoleTechnician,
		EmployeeID: &employee,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := parser.Sign(claims)
	require.NoError(t, err)

	parsed, err := parser.Parse(token)
	require.NoError(t, err)
	principal := parsed.Principal()
	assert.Equal(t, claims.UserID, principal.UserID)
	assert.Equal(t, claims.CompanyID, principal.CompanyID)
	assert.True(t, principal.IsTechnician())
	assert.Equal(t, employee, *principal.EmployeeID)
}

func TestParseRejects(t *testing.T) {
	parser := NewParser("secret")
	valid := func() *Claims {
		return &Claims{
			UserID:    uuid.New(),
			CompanyID: uuid.New(),
			Role:      model.UserRoleStaff,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"garbage", func(t *testing.T) string { return "not-a-token" }},
		{"wrong secret", func(t *testing.T) string {
			token, err := NewParser("other").Sign(valid())
			require.NoError(t, err)
			return token
		}},
		{"expired", func(t *testing.T) string {
			claims := valid()
			claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			token, err := parser.Sign(claims)
			require.NoError(t, err)
			return token
		}},
		{"unknown role", func(t *testing.T) string {
			claims := valid()
			claims.Role = "OWNER"
			token, err := parser.Sign(claims)
			require.NoError(t, err)
			return token
		}},
		{"missing company", func(t *testing.T) string {
			claims := valid()
			claims.CompanyID = uuid.Nil
			token, err := parser.Sign(claims)
			require.NoError(t, err)
			return token
		}},
		{"wrong algorithm", func(t *testing.T) string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, valid()).SignedString([]byte("secret"))
			require.NoError(t, err)
			return token
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.token(t))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

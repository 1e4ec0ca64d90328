package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jambotech/jambosms-backend/internal/config"
	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func newAuthFixture(t *testing.T) (*AuthServiceImpl, *models.User, *config.Config) {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	user := &models.User{
		ID:        primitive.NewObjectID(),
		Email:     "admin@example.com",
		Password:  hash,
		CompanyID: primitive.NewObjectID(),
		IsAdmin:   true,
	}
	repo := &fakeUserRepo{users: map[string]*models.User{user.Email: user}}
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiresIn = 3600

	return NewAuthService(repo, cfg), user, cfg
}

func TestLoginIssuesToken(t *testing.T) {
	service, user, cfg := newAuthFixture(t)

	signed, loggedIn, err := service.Login(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.Secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.Hex(), claims["sub"])
	assert.Equal(t, user.CompanyID.Hex(), claims["companyId"])
	assert.Equal(t, true, claims["isAdmin"])
}

func TestLoginWrongPassword(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	_, _, err := service.Login(context.Background(), "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	_, _, err := service.Login(context.Background(), "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

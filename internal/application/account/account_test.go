package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhatch-api/internal/config"
	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/infrastructure/persistence/memory"
	apperrors "bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/utils"
)

func newService() (*Service, *memory.Store) {
	store := memory.NewStore()
	jwt := utils.NewJWTManager("secret", "bookhatch")
	return NewService(store.Users(), jwt, config.JWTConfig{Expiration: time.Minute, RefreshExpiration: time.Hour}), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "correct horse", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.Tokens.AccessToken)

	_, err = svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "another one"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyRegistered)

	_, err = svc.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "short"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)

	logged, err := svc.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, logged.User.ID)

	_, err = svc.Login(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	sess, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, sess.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, refreshed.User.ID)

	_, err = svc.Refresh(ctx, sess.Tokens.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrTokenMissing)
}

func TestUpdateMe(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	sess, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada", sess.User.Name)

	name, bio := "Ada L.", "  writes about engines "
	user, err := svc.UpdateMe(ctx, sess.User.ID, ProfileInput{
		Name: &name, Bio: &bio, PreferredGenres: []string{"Fantasy"}, GenresSet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", user.Name)
	assert.Equal(t, "writes about engines", user.Bio)

	me, err := svc.Me(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy"}, me.PreferredGenres)

	_, err = svc.UpdateMe(ctx, sess.User.ID, ProfileInput{PreferredGenres: []string{"Cooking"}, GenresSet: true})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)

	_, err = svc.Me(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "root@example.com", "supersecret")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "root@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)

	member := entity.NewUser("member@example.com", "m")
	require.NoError(t, store.Users().Create(ctx, member))
	_, err = svc.EnsureAdmin(ctx, "member@example.com", "")
	require.NoError(t, err)
	promoted, err := store.Users().GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())
}

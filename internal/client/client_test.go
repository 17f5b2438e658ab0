package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-go/internal/handler"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/repository"
	"github.com/recipebox/recipebox-go/internal/service"
	"github.com/recipebox/recipebox-go/internal/testhelpers"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := testhelpers.NewSQLiteDB(t)
	router := handler.NewRouter(
		service.NewAuthService(repository.NewUserRepository(db), "client-test-secret", time.Hour),
		service.NewRecipeService(repository.NewRecipeRepository(db)),
		[]string{"*"},
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Load())
	return New(baseURL+"/", store)
}

func TestClient_EndToEnd(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)

	_, err := c.ListRecipes(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	registered, err := c.Register(ctx, model.RegisterRequest{
		Username: "Ana",
		Phone:    "+10000000001",
		Password: "password123",
		Role:     model.RoleCaterer,
	})
	require.NoError(t, err)

	_, err = c.Login(ctx, "+10000000001", "wrong")
	assert.True(t, IsStatus(err, http.StatusBadRequest), "got %v", err)

	user, err := c.Login(ctx, "+10000000001", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Username)

	created, err := c.CreateRecipe(ctx, model.RecipeRequest{Name: "Soup", Description: "Hot", Category: "Soups"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, created.CreatedBy)

	_, err = c.CreateRecipe(ctx, model.RecipeRequest{Name: "Pie", Description: "Sweet", Category: "Crème Brûlée"})
	require.NoError(t, err)

	soups, err := c.ListRecipesByCategory(ctx, "soups")
	require.NoError(t, err)
	require.Len(t, soups, 1)
	assert.Equal(t, created.ID, soups[0].ID)

	cremes, err := c.ListRecipesByCategory(ctx, "CRÈME BRÛLÉE")
	require.NoError(t, err)
	assert.Len(t, cremes, 1)

	updated, err := c.UpdateRecipe(ctx, created.ID, model.RecipeRequest{Name: "Soup", Description: "Hot", Category: "Mains"})
	require.NoError(t, err)
	assert.Equal(t, "Mains", updated.Category)

	all, err := c.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, c.DeleteRecipe(ctx, created.ID))

	_, err = c.GetRecipe(ctx, created.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "recipe not found", apiErr.Message)

	require.NoError(t, c.Logout())
	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestClient_SessionPersistsAcrossClients(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	path := filepath.Join(t.TempDir(), "session.json")

	first := New(srv.URL, NewSessionStore(path))
	_, err := first.Register(ctx, model.RegisterRequest{Username: "Ana", Phone: "+10000000001", Password: "pw", Role: model.RoleCaterer})
	require.NoError(t, err)
	_, err = first.Login(ctx, "+10000000001", "pw")
	require.NoError(t, err)

	store := NewSessionStore(path)
	require.NoError(t, store.Load())
	second := New(srv.URL, store)

	recipes, err := second.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestClient_CustomerForbidden(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, newTestServer(t).URL)

	_, err := c.Register(ctx, model.RegisterRequest{Username: "Bo", Phone: "+10000000002", Password: "pw", Role: model.RoleCustomer})
	require.NoError(t, err)
	_, err = c.Login(ctx, "+10000000002", "pw")
	require.NoError(t, err)

	_, err = c.ListRecipes(ctx)
	assert.True(t, IsStatus(err, http.StatusForbidden), "got %v", err)
}

func TestAPIError_Message(t *testing.T) {
	assert.Equal(t, "server returned 500", (&APIError{Status: 500}).Error())
	assert.Equal(t, "server returned 404: recipe not found", (&APIError{Status: 404, Message: "recipe not found"}).Error())
	assert.False(t, IsStatus(errors.New("plain"), 404))
}

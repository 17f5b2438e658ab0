// Package client is a typed HTTP client for the RecipeBox API. It carries the
// caller's session and attaches the bearer token to protected requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/recipebox/recipebox-go/internal/model"
)

var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to a RecipeBox server.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *SessionStore
}

// New creates a client for the server at baseURL. The session store should
// already be loaded.
func New(baseURL string, sessions *SessionStore) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		sessions: sessions,
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	var resp model.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", false, req, &resp); err != nil {
		return model.UserResponse{}, err
	}
	return resp.User, nil
}

// Login authenticates and persists the returned session.
func (c *Client) Login(ctx context.Context, phone, password string) (model.UserResponse, error) {
	var resp model.AuthResponse
	req := model.LoginRequest{Phone: phone, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", false, req, &resp); err != nil {
		return model.UserResponse{}, err
	}

	if err := c.sessions.Save(Session{Token: resp.Token, User: resp.User}); err != nil {
		return model.UserResponse{}, fmt.Errorf("saving session: %w", err)
	}
	return resp.User, nil
}

// Logout drops the local session. Tokens are stateless, so the server is not involved.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// Me fetches the profile of the session's user from the server.
func (c *Client) Me(ctx context.Context) (model.UserResponse, error) {
	var resp model.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", true, nil, &resp); err != nil {
		return model.UserResponse{}, err
	}
	return resp.User, nil
}

// ListRecipes returns all of the caller's recipes.
func (c *Client) ListRecipes(ctx context.Context) ([]model.RecipeResponse, error) {
	var recipes []model.RecipeResponse
	if err := c.doEnvelope(ctx, http.MethodGet, "/api/recipes", nil, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// ListRecipesByCategory returns the caller's recipes in category.
func (c *Client) ListRecipesByCategory(ctx context.Context, category string) ([]model.RecipeResponse, error) {
	var recipes []model.RecipeResponse
	path := "/api/recipes/category/" + url.PathEscape(category)
	if err := c.doEnvelope(ctx, http.MethodGet, path, nil, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe returns one of the caller's recipes.
func (c *Client) GetRecipe(ctx context.Context, id string) (model.RecipeResponse, error) {
	var recipe model.RecipeResponse
	err := c.doEnvelope(ctx, http.MethodGet, "/api/recipes/"+url.PathEscape(id), nil, &recipe)
	return recipe, err
}

// CreateRecipe stores a new recipe.
func (c *Client) CreateRecipe(ctx context.Context, req model.RecipeRequest) (model.RecipeResponse, error) {
	var recipe model.RecipeResponse
	err := c.doEnvelope(ctx, http.MethodPost, "/api/recipes", req, &recipe)
	return recipe, err
}

// UpdateRecipe replaces a recipe.
func (c *Client) UpdateRecipe(ctx context.Context, id string, req model.RecipeRequest) (model.RecipeResponse, error) {
	var recipe model.RecipeResponse
	err := c.doEnvelope(ctx, http.MethodPut, "/api/recipes/"+url.PathEscape(id), req, &recipe)
	return recipe, err
}

// DeleteRecipe removes a recipe.
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.doEnvelope(ctx, http.MethodDelete, "/api/recipes/"+url.PathEscape(id), nil, nil)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) doEnvelope(ctx context.Context, method, path string, body, out any) error {
	var env envelope
	if err := c.do(ctx, method, path, true, body, &env); err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if auth {
		sess, ok := c.sessions.Current()
		if !ok {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/recipebox/recipebox-go/internal/middleware"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/service"
)

// NewRouter builds the HTTP API.
//
// Routes:
//
//	GET    /health
//	POST   /api/auth/register
//	POST   /api/auth/login
//	GET    /api/auth/me                        (bearer)
//	GET    /api/recipes                        (bearer, caterer)
//	GET    /api/recipes/category/{category}    (bearer, caterer)
//	GET    /api/recipes/{id}                   (bearer, caterer)
//	POST   /api/recipes                        (bearer, caterer)
//	PUT    /api/recipes/{id}                   (bearer, caterer)
//	DELETE /api/recipes/{id}                   (bearer, caterer)
//
// The static /category segment must win over /{id}; chi's tree already ranks
// static segments first and the route is registered first as well.
func NewRouter(authService *service.AuthService, recipeService *service.RecipeService, allowedOrigins []string) http.Handler {
	authHandler := NewAuthHandler(authService)
	recipeHandler := NewRecipeHandler(recipeService)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.With(middleware.Authorize(authService)).Get("/me", authHandler.HandleMe)
	})

	r.Route("/api/recipes", func(r chi.Router) {
		r.Use(middleware.Authorize(authService))
		r.Use(middleware.RequireRole(model.RoleCaterer))

		r.Get("/category/{category}", recipeHandler.HandleListByCategory)

		r.Get("/", recipeHandler.HandleList)
		r.Post("/", recipeHandler.HandleCreate)

		r.Get("/{id}", recipeHandler.HandleGet)
		r.Put("/{id}", recipeHandler.HandleUpdate)
		r.Delete("/{id}", recipeHandler.HandleDelete)
	})

	return r
}

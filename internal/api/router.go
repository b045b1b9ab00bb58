package api

import (
	"database/sql"
	"net/http"

	"github.com/avillega/trueque/internal/exchange"
	"github.com/avillega/trueque/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, engine *exchange.Engine) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	membersHandler := &MembersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	offersHandler := &OffersHandler{DB: db, Engine: engine}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: registration and login.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Account management.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Member directory and own profile.
	mux.Handle("GET /api/members", authMW(http.HandlerFunc(membersHandler.List)))
	mux.Handle("GET /api/members/me", authMW(http.HandlerFunc(membersHandler.Me)))
	mux.Handle("PUT /api/members/me", authMW(http.HandlerFunc(membersHandler.UpdateMe)))
	mux.Handle("GET /api/members/me/items", authMW(http.HandlerFunc(membersHandler.MyItems)))
	mux.Handle("GET /api/members/{id}", authMW(http.HandlerFunc(membersHandler.Get)))

	// Garment catalog.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	// Exchange offers.
	mux.Handle("POST /api/offers", authMW(http.HandlerFunc(offersHandler.Create)))
	mux.Handle("GET /api/offers", authMW(http.HandlerFunc(offersHandler.List)))
	mux.Handle("GET /api/offers/{id}", authMW(http.HandlerFunc(offersHandler.Get)))
	mux.Handle("POST /api/offers/{id}/accept", authMW(http.HandlerFunc(offersHandler.Accept)))
	mux.Handle("POST /api/offers/{id}/reject", authMW(http.HandlerFunc(offersHandler.Reject)))
	mux.Handle("POST /api/offers/{id}/cancel", authMW(http.HandlerFunc(offersHandler.Cancel)))
	mux.Handle("POST /api/offers/{id}/complete", authMW(http.HandlerFunc(offersHandler.Complete)))

	return mux
}

package api

import (
	"database/sql"
	"net/http"

	"itemvault/internal/config"
	"itemvault/internal/mail"
)

// NewRouter creates the API router with all endpoints registered and the
// shared middleware applied.
func NewRouter(db *sql.DB, cfg *config.Config, mailer *mail.Sender) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, Cfg: cfg, Mailer: mailer}
	usersHandler := &UsersHandler{DB: db, Cfg: cfg, Mailer: mailer}
	itemsHandler := &ItemsHandler{DB: db}
	utilsHandler := &UtilsHandler{DB: db, Cfg: cfg, Mailer: mailer}

	authMW := AuthMiddleware(cfg.SecretKey, db)
	superuser := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireSuperuser(h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return authMW(http.HandlerFunc(h))
	}

	// Public.
	mux.HandleFunc("POST /api/login/access-token", authHandler.Login)
	mux.HandleFunc("POST /api/password-recovery/{email}", authHandler.RecoverPassword)
	mux.HandleFunc("POST /api/reset-password", authHandler.ResetPassword)
	mux.HandleFunc("POST /api/users/signup", usersHandler.Signup)
	mux.HandleFunc("GET /api/utils/health-check", utilsHandler.HealthCheck)

	// Authenticated.
	mux.Handle("POST /api/login/test-token", authed(authHandler.TestToken))
	mux.Handle("GET /api/users/me", authed(usersHandler.Me))
	mux.Handle("PATCH /api/users/me", authed(usersHandler.UpdateMe))
	mux.Handle("GET /api/users/{id}", authed(usersHandler.Get))

	// Items (authenticated, ownership enforced in handlers).
	mux.Handle("GET /api/items", authed(itemsHandler.List))
	mux.Handle("POST /api/items", authed(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", authed(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", authed(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", authed(itemsHandler.Delete))

	// Administration (superuser).
	mux.Handle("GET /api/users", superuser(usersHandler.List))
	mux.Handle("POST /api/users", superuser(usersHandler.Create))
	mux.Handle("PATCH /api/users/{id}", superuser(usersHandler.Update))
	mux.Handle("DELETE /api/users/{id}", superuser(usersHandler.Delete))
	mux.Handle("POST /api/utils/test-email", superuser(utilsHandler.TestEmail))

	var handler http.Handler = mux
	handler = CORSMiddleware(cfg.CORSOrigins)(handler)
	handler = LoggingMiddleware(handler)
	handler = RecoverMiddleware(handler)
	return handler
}

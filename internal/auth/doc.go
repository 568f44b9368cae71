// Package auth gates the console behind a single username/password check.
//
// Credentials live in the bookstore database itself (the admin table by
// default). Stored values are compared as plaintext unless they look like
// bcrypt hashes.
//
// # Configuration
//
//	AUTH_TABLE=admin                    # Credentials table
//	AUTH_USERNAME_COLUMN=Username
//	AUTH_PASSWORD_COLUMN=Password
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=12h
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//
// # Usage
//
//	sessions, _ := auth.NewSessionManager(stateDB.SQLDB(), cfg.Auth)
//	service := auth.NewService(bookstore, cfg.Auth)
//	router.Use(sessions.SessionLoadSave(), auth.NewMiddleware(sessions).Handler())
//
// Read the logged-in user in handlers:
//
//	username := auth.GetUsername(c)
package auth

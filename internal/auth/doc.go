// Package auth provides registration, login and session handling.
//
// Identity is email + bcrypt password hash. Sessions are cookie-based,
// backed by SQLite via alexedwards/scs, with a Gin adapter that commits the
// session cookie before response headers are written. Login attempts are
// rate limited per IP + email with a lockout window.
//
// # Usage
//
//	service := auth.NewService(usersRepo, cfg.Auth)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.NewMiddleware(sessions).Handler())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c) // 0 when unauthenticated
package auth

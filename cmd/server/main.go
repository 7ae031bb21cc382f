package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/jantom38/eduplatform/internal/api/http"
	auth "github.com/jantom38/eduplatform/internal/auth/middleware"
	"github.com/jantom38/eduplatform/internal/config"
	"github.com/jantom38/eduplatform/internal/db"
	"github.com/jantom38/eduplatform/internal/grading"
	"github.com/jantom38/eduplatform/internal/quiz"
	"github.com/jantom38/eduplatform/internal/rbac"
	"github.com/jantom38/eduplatform/internal/storage"
	syncx "github.com/jantom38/eduplatform/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := auth.EnsureAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPass, cfg.BcryptCost); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	events := syncx.NewEventRepo(dbh)
	store := quiz.NewSQLStore(dbh, grading.NewDefaultGrader(), events)
	authSvc := auth.NewAuthService(cfg.AuthSecret, time.Duration(cfg.TokenTTLHrs)*time.Hour)

	bs, err := storage.NewFSStore(cfg.FileBasePath)
	if err != nil {
		log.Fatalf("file store: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public
	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	if cfg.EnableSignup {
		r.Post("/auth/register", auth.RegisterHandler(dbh, cfg.BcryptCost))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	// Protected API (JWT -> principal in context -> RBAC -> ownership checks)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Courses
		pr.With(rbac.Require("course:create")).
			Post("/courses", api.CreateCourseHandler(dbh))
		pr.With(rbac.Require("course:list")).
			Get("/courses", api.ListCoursesHandler(dbh))
		pr.With(rbac.Require("course:list")).
			Get("/courses/{courseID}", api.GetCourseHandler(dbh))
		pr.With(rbac.RequireAny("course:manage-own")).
			Put("/courses/{courseID}", api.UpdateCourseHandler(dbh))
		pr.With(rbac.RequireAny("course:manage-own")).
			Delete("/courses/{courseID}", api.DeleteCourseHandler(dbh, events))
		pr.With(rbac.Require("course:enroll")).
			Post("/courses/{courseID}/enroll", api.EnrollHandler(dbh))
		pr.With(rbac.RequireAny("course:manage-own")).
			Get("/courses/{courseID}/students", api.ListCourseStudentsHandler(dbh))
		pr.With(rbac.RequireAny("course:manage-own")).
			Delete("/courses/{courseID}/students/{userID}", api.RemoveStudentHandler(dbh))

		// Quizzes and questions
		pr.With(rbac.RequireAny("quiz:manage-own")).
			Post("/courses/{courseID}/quizzes", api.CreateQuizHandler(dbh, store))
		pr.With(rbac.Require("quiz:list")).
			Get("/courses/{courseID}/quizzes", api.ListQuizzesHandler(dbh, store))
		pr.With(rbac.RequireAny("quiz:take", "quiz:manage-own")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(dbh, store))
		pr.With(rbac.RequireAny("quiz:manage-own")).
			Get("/quizzes/{quizID}/edit", api.GetQuizEditHandler(dbh, store))
		pr.With(rbac.RequireAny("quiz:manage-own")).
			Put("/quizzes/{quizID}", api.UpdateQuizHandler(dbh, store))
		pr.With(rbac.RequireAny("quiz:manage-own")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(dbh, store))
		pr.With(rbac.RequireAny("quiz:manage-own")).
			Post("/quizzes/{quizID}/questions", api.AddQuestionHandler(dbh, store))
		pr.With(rbac.RequireAny("quiz:manage-own")).
			Put("/questions/{questionID}", api.UpdateQuestionHandler(dbh, store))
		pr.With(rbac.RequireAny("quiz:manage-own")).
			Delete("/questions/{questionID}", api.DeleteQuestionHandler(dbh, store))

		// Submissions and results
		pr.With(rbac.Require("quiz:submit")).
			Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(dbh, store))
		pr.With(rbac.RequireAny("result:view-course")).
			Get("/quizzes/{quizID}/results", api.ListQuizResultsHandler(dbh, store))
		pr.With(rbac.Require("result:view-own")).
			Get("/me/results", api.MyResultsHandler(store))
		pr.With(rbac.Require("result:export")).
			Get("/courses/{courseID}/results/export", api.ExportCourseResultsHandler(dbh, store))

		// Course materials
		pr.With(rbac.RequireAny("file:manage-own")).
			Post("/courses/{courseID}/files", api.UploadCourseFileHandler(dbh, bs))
		pr.With(rbac.Require("file:view")).
			Get("/courses/{courseID}/files", api.ListCourseFilesHandler(dbh, bs))
		pr.With(rbac.Require("file:view")).
			Get("/files/*", api.GetFileHandler(dbh, bs))
		pr.With(rbac.RequireAny("file:manage-own")).
			Delete("/files/*", api.DeleteFileHandler(dbh, bs))

		// Users and role codes
		pr.With(rbac.RequireAny("users:list", "users:list-students")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh, cfg.BcryptCost))
		pr.With(rbac.Require("users:delete")).
			Delete("/users/{userID}", api.DeleteUserHandler(dbh, events))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh, cfg.BcryptCost))
		pr.With(rbac.Require("rolecode:manage")).
			Post("/role-codes", api.CreateRoleCodeHandler(dbh, cfg.RoleCodeHrs))
		pr.With(rbac.Require("rolecode:manage")).
			Get("/role-codes", api.ListRoleCodesHandler(dbh))
		pr.With(rbac.Require("rolecode:manage")).
			Delete("/role-codes/{codeID}", api.DeactivateRoleCodeHandler(dbh))
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

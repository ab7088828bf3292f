package router

import (
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"homesite/docs"
	"homesite/internal/config"
	"homesite/internal/handler"
	"homesite/internal/middleware"
	"homesite/internal/service"
)

// usernameRegexp enforces the account naming rule: 4-14 characters, starting
// with a letter, the rest letters, digits, dots or underscores.
var usernameRegexp = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]{3,13}$`)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	identity service.IdentityService,
	authHandler *handler.AuthHandler,
	accountHandler *handler.AccountHandler,
	userHandler *handler.UserHandler,
	todoHandler *handler.TodoHandler,
	feedbackHandler *handler.FeedbackHandler,
	cookieHandler *handler.CookieHandler,
) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.ResolveSession(identity))

	e.Validator = NewValidator()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	api.GET("/users", userHandler.ListUsers)
	api.GET("/users/:id", userHandler.GetUser)

	api.GET("/reviews", feedbackHandler.ListFeedback)
	api.POST("/reviews", feedbackHandler.CreateFeedback)

	// The todo board is shared and open, as the site always had it.
	api.GET("/todos", todoHandler.ListTodos)
	api.POST("/todos", todoHandler.CreateTodo)
	api.PATCH("/todos/:id/toggle", todoHandler.ToggleTodo)
	api.DELETE("/todos/:id", todoHandler.DeleteTodo)

	// Secured routes (require a live session)
	secured := api.Group("", middleware.RequireUser)

	secured.GET("/me", authHandler.Me)
	secured.GET("/account", accountHandler.GetAccount)
	secured.PUT("/account", accountHandler.UpdateAccount)
	secured.POST("/account/password", authHandler.ChangePassword)

	secured.GET("/cookies", cookieHandler.ListCookies)
	secured.POST("/cookies", cookieHandler.AddCookie)
	secured.DELETE("/cookies/:name", cookieHandler.DeleteCookie)
	secured.DELETE("/cookies", cookieHandler.DeleteAllCookies)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator with the custom username rule.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegexp.MatchString(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

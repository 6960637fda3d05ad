package handler // handler defines http handlers

import (
	"database/sql" // sql provides the ErrNoRows sentinel
	"errors"       // errors provides Is for sentinel comparisons
	"net/http"     // http provides status code constants
	"strconv"      // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/KaushikAtTrks/events-ticket/internal/repository" // repository holds data access sentinels
	"github.com/KaushikAtTrks/events-ticket/internal/service"    // service holds business logic sentinels
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT claims decode numbers as float64, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware, or "" when absent.
func getRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// principalFrom builds the service principal from the claims the JWT
// middleware stored in the context.
func principalFrom(c echo.Context) (service.Principal, error) {
	uid, err := getUserID(c)
	if err != nil {
		return service.Principal{}, err
	}
	return service.Principal{ID: uid, Role: getRole(c)}, nil
}

// writeServiceError maps sentinel errors from the service and repository
// layers onto HTTP responses.  Anything unrecognized becomes a 500 with a
// generic message so internal detail never leaks to clients.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrPassNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "pass not found"})
	case errors.Is(err, repository.ErrDiscountNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "discount not found"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable, retry shortly"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

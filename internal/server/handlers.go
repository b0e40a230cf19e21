package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/runoshun/tasklist/internal/domain"
)

const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// Register wires the /tasks routes on e.
func Register(e *echo.Echo, repo domain.TaskRepository) {
	e.GET("/tasks", listTasks(repo))
	e.POST("/tasks", createTask(repo))
	e.GET("/tasks/:id", getTask(repo))
	e.PUT("/tasks/:id", updateTask(repo))
	e.PATCH("/tasks/:id", updateTask(repo))
	e.DELETE("/tasks/:id", deleteTask(repo))
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
}

func listTasks(repo domain.TaskRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks, err := repo.List(c.Request().Context())
		if err != nil {
			return err
		}
		if tasks == nil {
			tasks = []domain.Task{}
		}
		return c.JSON(http.StatusOK, tasks)
	}
}

func getTask(repo domain.TaskRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := taskID(c)
		if err != nil {
			return err
		}
		task, err := repo.Get(c.Request().Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, task)
	}
}

func createTask(repo domain.TaskRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := decodePatch(c)
		if err != nil {
			return err
		}
		if p.Task == nil {
			return domain.ErrEmptyTask
		}
		task, err := repo.Create(c.Request().Context(), p)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, task)
	}
}

func updateTask(repo domain.TaskRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := taskID(c)
		if err != nil {
			return err
		}
		p, err := decodePatch(c)
		if err != nil {
			return err
		}
		task, err := repo.Update(c.Request().Context(), id, p)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(repo domain.TaskRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := taskID(c)
		if err != nil {
			return err
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, nil)
	}
}

func taskID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		// Unknown ids, malformed or not, are all "not found".
		return 0, domain.ErrTaskNotFound
	}
	return id, nil
}

// decodePatch reads the request body. Unknown fields (such as a client
// echoing "id" back) are ignored.
func decodePatch(c echo.Context) (domain.Patch, error) {
	var p domain.Patch
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, maxBodySize))
	if err := dec.Decode(&p); err != nil {
		return domain.Patch{}, fmt.Errorf("%w: invalid body", domain.ErrInvalidRequest)
	}
	return p, nil
}

// sonicSerializer implements echo.JSONSerializer with sonic.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}
	return nil
}

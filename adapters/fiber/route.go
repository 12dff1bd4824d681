package fiber

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/lborres/wanderlust"
)

type Adapter struct {
	app *fiber.App
	svc *wanderlust.App
}

var _ wanderlust.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

// RegisterRoutes mounts every endpoint in the registry under the base path,
// plus GET /metrics at the root. Each endpoint must have a handler for its
// operation id.
func (a *Adapter) RegisterRoutes(svc *wanderlust.App) error {
	a.svc = svc
	handlers := a.handlers()

	a.app.Use(a.instrument)
	a.app.Get("/metrics", adaptor.HTTPHandler(svc.Metrics.Handler()))

	api := a.app.Group(svc.BasePath)
	for _, ep := range svc.Endpoints.Endpoints() {
		h, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no handler for operation %q (%s %s)", ep.Metadata.OperationID, ep.Method, ep.Path)
		}
		api.Add([]string{ep.Method}, ep.Path, a.guard(ep.Access, h))
	}

	return nil
}

// instrument records every request, matched or not.
func (a *Adapter) instrument(c fiber.Ctx) error {
	started := time.Now()
	err := c.Next()

	code := c.Response().StatusCode()
	if err != nil {
		code = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
	}
	a.svc.Metrics.ObserveRequest(c.Method(), c.Route().Path, code, time.Since(started))
	return err
}

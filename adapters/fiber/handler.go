package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/form"
	"github.com/lborres/wanderlust/services"
	"github.com/lborres/wanderlust/validate"
)

// handlers binds each operation id in the endpoint registry to its handler.
func (a *Adapter) handlers() map[string]fiber.Handler {
	return map[string]fiber.Handler{
		"signUpWithEmailAndPassword": a.signUp,
		"signInWithEmailAndPassword": a.signIn,
		"signOut":                    a.signOut,
		"getSession":                 a.getSession,
		"refreshToken":               a.refresh,
		"resetPassword":              a.resetPassword,
		"updatePassword":             a.updatePassword,

		"listDestinations":  a.listDestinations,
		"getDestination":    a.getDestination,
		"createDestination": a.createDestination,
		"updateDestination": a.updateDestination,
		"deleteDestination": a.deleteDestination,

		"listMyBookings":      a.listMyBookings,
		"checkout":            a.checkout,
		"cancelBooking":       a.cancelBooking,
		"updateBookingStatus": a.updateBookingStatus,

		"listUsers":      a.listUsers,
		"updateUserRole": a.updateUserRole,
		"deleteUser":     a.deleteUser,
		"listBookings":   a.listBookings,
		"dashboardStats": a.dashboardStats,

		"validateKYCStep": a.validateKYCStep,
		"submitKYC":       a.submitKYC,
	}
}

func badBody(c fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(core.ErrorResponse{Error: "invalid request body"})
}

func message(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// ============================================
// AUTH
// ============================================

func (a *Adapter) signUp(c fiber.Ctx) error {
	var input core.SignUpInput
	if err := c.Bind().Body(&input); err != nil {
		return badBody(c)
	}

	result, err := a.svc.Auth.SignUp(c.Context(), input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(result)
}

func (a *Adapter) signIn(c fiber.Ctx) error {
	var input core.SignInInput
	if err := c.Bind().Body(&input); err != nil {
		return badBody(c)
	}

	result, err := a.svc.Auth.SignIn(c.Context(), input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

func (a *Adapter) signOut(c fiber.Ctx) error {
	if err := a.svc.Auth.SignOut(c.Context(), currentToken(c)); err != nil {
		return a.handleError(c, err)
	}
	return message(c, http.StatusOK, "signed out successfully")
}

func (a *Adapter) getSession(c fiber.Ctx) error {
	session, _ := c.Locals(localSession).(*core.Session)
	role, _ := c.Locals(localRole).(core.Role)
	return c.Status(http.StatusOK).JSON(core.SessionData{User: currentUser(c), Session: session, Role: role})
}

func (a *Adapter) refresh(c fiber.Ctx) error {
	result, err := a.svc.Auth.Refresh(c.Context(), currentToken(c), c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (a *Adapter) resetPassword(c fiber.Ctx) error {
	var req emailRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}
	if err := a.svc.Auth.ResetPassword(c.Context(), req.Email); err != nil {
		return a.handleError(c, err)
	}
	return message(c, http.StatusOK, "password reset link sent")
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (a *Adapter) updatePassword(c fiber.Ctx) error {
	var req passwordRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}
	if err := a.svc.Auth.UpdatePassword(c.Context(), currentUser(c).ID, req.Password); err != nil {
		return a.handleError(c, err)
	}
	return message(c, http.StatusOK, "password updated")
}

// ============================================
// CATALOG
// ============================================

func (a *Adapter) listDestinations(c fiber.Ctx) error {
	filter := services.DestinationFilter{
		Category:     core.Category(c.Query("category")),
		FeaturedOnly: c.Query("featured") == "true",
		Sort:         services.SortBy(c.Query("sort")),
	}
	list, err := a.svc.Ledger.ListDestinations(c.Context(), filter)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(list)
}

func (a *Adapter) getDestination(c fiber.Ctx) error {
	d, err := a.svc.Ledger.GetDestination(c.Context(), c.Params("id"))
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(d)
}

func (a *Adapter) createDestination(c fiber.Ctx) error {
	var d core.Destination
	if err := c.Bind().Body(&d); err != nil {
		return badBody(c)
	}
	created, err := a.svc.Ledger.AddDestination(c.Context(), d)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(created)
}

func (a *Adapter) updateDestination(c fiber.Ctx) error {
	var patch core.DestinationPatch
	if err := c.Bind().Body(&patch); err != nil {
		return badBody(c)
	}
	d, err := a.svc.Ledger.UpdateDestination(c.Context(), c.Params("id"), patch)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(d)
}

func (a *Adapter) deleteDestination(c fiber.Ctx) error {
	if err := a.svc.Ledger.DeleteDestination(c.Context(), c.Params("id")); err != nil {
		return a.handleError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================
// BOOKINGS
// ============================================

func (a *Adapter) listMyBookings(c fiber.Ctx) error {
	list, err := a.svc.Ledger.GetUserBookings(c.Context(), currentUser(c).ID)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(list)
}

type checkoutRequest struct {
	DestinationID string `json:"destinationId"`
	form.CheckoutData
}

type checkoutResponse struct {
	Booking *core.Booking `json:"booking"`
	Quote   form.Quote    `json:"quote"`
}

// checkout runs the whole checkout form in one request: details and payment
// are validated in order, then the card is charged and the booking recorded.
func (a *Adapter) checkout(c fiber.Ctx) error {
	var req checkoutRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	dest, err := a.svc.Ledger.GetDestination(c.Context(), req.DestinationID)
	if err != nil {
		return a.handleError(c, err)
	}

	user := currentUser(c)
	co, err := form.NewCheckout(user.ID, *dest, a.svc.Payments, a.svc.Ledger,
		form.WithData(req.CheckoutData),
		form.WithLogger[form.CheckoutData](a.svc.Log.With("form", "checkout", "user_id", user.ID)),
	)
	if err != nil {
		return a.handleError(c, err)
	}

	fields, err := co.Complete(c.Context())
	if err != nil {
		return a.handleError(c, err)
	}
	if fields != nil {
		return a.handleError(c, fields)
	}
	return c.Status(http.StatusCreated).JSON(checkoutResponse{Booking: co.Booking(), Quote: co.Quote()})
}

func (a *Adapter) cancelBooking(c fiber.Ctx) error {
	b, err := a.svc.Ledger.CancelBooking(c.Context(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(b)
}

type statusRequest struct {
	Status core.BookingStatus `json:"status"`
}

func (a *Adapter) updateBookingStatus(c fiber.Ctx) error {
	var req statusRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}
	b, err := a.svc.Ledger.UpdateBookingStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(b)
}

// ============================================
// ADMIN
// ============================================

func (a *Adapter) listUsers(c fiber.Ctx) error {
	profiles, err := a.svc.Admin.ListProfiles(c.Context())
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(profiles)
}

type roleRequest struct {
	Role core.Role `json:"role"`
}

func (a *Adapter) updateUserRole(c fiber.Ctx) error {
	var req roleRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}
	p, err := a.svc.Admin.UpdateRole(c.Context(), c.Params("id"), req.Role)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(p)
}

func (a *Adapter) deleteUser(c fiber.Ctx) error {
	if err := a.svc.Admin.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return a.handleError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (a *Adapter) listBookings(c fiber.Ctx) error {
	list, err := a.svc.Ledger.ListBookings(c.Context())
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(list)
}

func (a *Adapter) dashboardStats(c fiber.Ctx) error {
	stats, err := a.svc.Admin.Stats(c.Context())
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(stats)
}

// ============================================
// KYC
// ============================================

type stepResult struct {
	Step   string          `json:"step"`
	Valid  bool            `json:"valid"`
	Fields validate.Errors `json:"fields,omitempty"`
}

func (a *Adapter) kycWizard(c fiber.Ctx, data form.KYCData) (*form.Wizard[form.KYCData], error) {
	user := currentUser(c)
	return form.NewKYCWizard(user.ID, a.svc.KYC,
		form.WithData(data),
		form.WithLogger[form.KYCData](a.svc.Log.With("form", "kyc", "user_id", user.ID)),
	)
}

// validateKYCStep checks one step without submitting. Invalid fields are a
// normal outcome here, so the response is 200 either way.
func (a *Adapter) validateKYCStep(c fiber.Ctx) error {
	var data form.KYCData
	if err := c.Bind().Body(&data); err != nil {
		return badBody(c)
	}

	w, err := a.kycWizard(c, data)
	if err != nil {
		return a.handleError(c, err)
	}
	step := c.Params("step")
	fields, err := w.ValidateStep(step)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(stepResult{Step: step, Valid: fields.Empty(), Fields: fields})
}

func (a *Adapter) submitKYC(c fiber.Ctx) error {
	var data form.KYCData
	if err := c.Bind().Body(&data); err != nil {
		return badBody(c)
	}

	w, err := a.kycWizard(c, data)
	if err != nil {
		return a.handleError(c, err)
	}
	fields, err := w.Complete(c.Context())
	if err != nil {
		return a.handleError(c, err)
	}
	if fields != nil {
		return a.handleError(c, fields)
	}
	return c.Status(http.StatusOK).JSON(w.State())
}

// ============================================
// HELPERS
// ============================================

// extractToken extracts the authentication token from the request.
// Checks Authorization header (Bearer token) first, then falls back to cookie.
func extractToken(c fiber.Ctx) string {
	// Try Bearer token first
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}

	// Fall back to cookie
	return c.Cookies("auth_token")
}

// handleError maps service errors to appropriate HTTP responses. Field
// errors carry their per-field messages; internal errors are logged and
// hidden from the caller.
func (a *Adapter) handleError(c fiber.Ctx, err error) error {
	var fields validate.Errors
	if errors.As(err, &fields) {
		return c.Status(http.StatusUnprocessableEntity).JSON(core.ErrorResponse{
			Error:  "validation failed",
			Fields: fields,
		})
	}

	status := mapErrorToStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.svc.Log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		msg = "internal server error"
	}
	return c.Status(status).JSON(core.ErrorResponse{Error: msg})
}

// mapErrorToStatus maps wanderlust error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var fields validate.Errors
	switch {
	case errors.As(err, &fields):
		return http.StatusUnprocessableEntity

	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrMissingAuthHeader),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSessionExpired),
		errors.Is(err, core.ErrNoActiveSession):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrDestinationNotFound),
		errors.Is(err, core.ErrBookingNotFound),
		errors.Is(err, core.ErrUnknownStep):
		return http.StatusNotFound

	case errors.Is(err, core.ErrAccountExists),
		errors.Is(err, core.ErrInvalidStatusTransition),
		errors.Is(err, core.ErrSubmissionInProgress),
		errors.Is(err, core.ErrNotSubmittable),
		errors.Is(err, core.ErrNoNextStep):
		return http.StatusConflict

	case errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooLong),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrSubmissionFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

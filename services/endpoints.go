package services

import (
	"fmt"
	"sort"

	"github.com/lborres/wanderlust/core"
)

func endpoint(method, path string, access core.Access, opID, desc string) core.Endpoint {
	return core.Endpoint{
		Path:   path,
		Method: method,
		Access: access,
		Metadata: core.EndpointMetadata{
			OperationID: opID,
			Description: desc,
		},
	}
}

// BaseEndpoints returns framework-agnostic endpoint specifications for the
// whole API, relative to the base path. Adapters bind a handler to each one
// by OperationID.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		// auth
		endpoint("POST", "/auth/sign-up", core.AccessPublic, "signUpWithEmailAndPassword", "Sign up a user using email and password"),
		endpoint("POST", "/auth/sign-in", core.AccessPublic, "signInWithEmailAndPassword", "Sign in a user using email and password"),
		endpoint("POST", "/auth/sign-out", core.AccessAuthenticated, "signOut", "Sign out the current user and invalidate the session"),
		endpoint("GET", "/auth/session", core.AccessAuthenticated, "getSession", "Get the current user's session data"),
		endpoint("POST", "/auth/refresh", core.AccessAuthenticated, "refreshToken", "Rotate the session token"),
		endpoint("POST", "/auth/reset-password", core.AccessPublic, "resetPassword", "Request a password reset notice"),
		endpoint("POST", "/auth/update-password", core.AccessAuthenticated, "updatePassword", "Change the current user's password"),

		// catalog
		endpoint("GET", "/destinations", core.AccessPublic, "listDestinations", "Browse destinations by category, featured flag and sort order"),
		endpoint("GET", "/destinations/:id", core.AccessPublic, "getDestination", "Get one destination"),
		endpoint("POST", "/destinations", core.AccessAdmin, "createDestination", "Add a destination"),
		endpoint("PATCH", "/destinations/:id", core.AccessAdmin, "updateDestination", "Merge changes into a destination"),
		endpoint("DELETE", "/destinations/:id", core.AccessAdmin, "deleteDestination", "Delete a destination"),

		// bookings
		endpoint("GET", "/bookings", core.AccessAuthenticated, "listMyBookings", "List the current user's bookings in creation order"),
		endpoint("POST", "/bookings/checkout", core.AccessAuthenticated, "checkout", "Pay for and confirm a booking"),
		endpoint("POST", "/bookings/:id/cancel", core.AccessAuthenticated, "cancelBooking", "Cancel one of the current user's bookings"),
		endpoint("PATCH", "/bookings/:id/status", core.AccessAdmin, "updateBookingStatus", "Move a booking to a new status"),

		// admin
		endpoint("GET", "/admin/users", core.AccessAdmin, "listUsers", "List user profiles"),
		endpoint("PATCH", "/admin/users/:id/role", core.AccessAdmin, "updateUserRole", "Change a user's role"),
		endpoint("DELETE", "/admin/users/:id", core.AccessAdmin, "deleteUser", "Delete a user and their credentials"),
		endpoint("GET", "/admin/bookings", core.AccessAdmin, "listBookings", "List every booking"),
		endpoint("GET", "/admin/stats", core.AccessAdmin, "dashboardStats", "Dashboard totals"),

		// kyc
		endpoint("POST", "/kyc/validate/:step", core.AccessAuthenticated, "validateKYCStep", "Check one identity verification step"),
		endpoint("POST", "/kyc/submit", core.AccessAuthenticated, "submitKYC", "Submit identity verification"),
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	// endpoints stores all registered endpoints keyed by "METHOD:PATH"
	endpoints map[string]*core.Endpoint
}

// NewEndpointRegistry creates a new registry with all base endpoints
// pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	// BaseEndpoints has no duplicates, so this cannot fail.
	_ = reg.Register(BaseEndpoints())
	return reg
}

func endpointKey(ep *core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

// Register adds endpoints to the registry. Returns error if any endpoint
// conflicts with an existing one or with another in the same batch.
//
// If an error occurs, no endpoints from the batch are registered.
func (r *EndpointRegistry) Register(endpoints []core.Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		ep := &endpoints[i]
		key := endpointKey(ep)

		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint: %s %s", ep.Method, ep.Path)
		}
		if ep.Metadata.OperationID == "" {
			return fmt.Errorf("endpoint %s %s has no operation id", ep.Method, ep.Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		ep := endpoints[i]
		r.endpoints[endpointKey(&ep)] = &ep
	}
	return nil
}

// Endpoints returns every registered endpoint ordered by path, then method.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}

// Lookup finds an endpoint by operation id.
func (r *EndpointRegistry) Lookup(operationID string) (*core.Endpoint, bool) {
	for _, ep := range r.endpoints {
		if ep.Metadata.OperationID == operationID {
			return ep, true
		}
	}
	return nil, false
}

package ctxkey

const (
	// Id is the authenticated user id for the current request.
	// Set in: middleware.UserAuth. Read by every owner-scoped controller.
	Id = "id"

	// Email is the authenticated user's email.
	Email = "email"

	// RequestId is a per-request unique identifier, echoed in the response header of the same name.
	RequestId = "X-Simulation-Request-Id"
)

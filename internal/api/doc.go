// Package api provides HTTP handlers for the API. Handlers translate
// between the JSON surface and the service layer: they parse and validate
// input, resolve the authenticated user, call a service, and map service
// errors to sanitized responses. No scheduling or prediction logic lives
// here.
package api

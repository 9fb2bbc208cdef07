// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing core domain objects (dossiers, articles) and
// the scripted JSON payloads fed to mock models. These helpers are
// intentionally minimal and avoid adding third-party dependencies. They are
// not intended for production usage.
package testutil

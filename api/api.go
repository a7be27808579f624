// Package api holds the OpenAPI document of the HTTP surface.
package api

import _ "embed"

// Spec is the OpenAPI 3 document served at /openapi.yaml and used to
// validate request bodies.
//
//go:embed openapi.yaml
var Spec []byte

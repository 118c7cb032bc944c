// Package imgreg exposes the OpenAPI description of the image registry API.
package imgreg

import (
	_ "embed"
)

//go:embed openapi.yaml
var OpenAPIYAML []byte

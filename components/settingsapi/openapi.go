package settingsapi

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPISource []byte

var (
	openAPIOnce sync.Once
	openAPIDoc  *openapi3.T
	openAPIErr  error
)

// OpenAPISource returns the raw YAML description of the API.
func OpenAPISource() []byte {
	return append([]byte(nil), openAPISource...)
}

// LoadOpenAPI parses and validates the embedded API description. The result
// is cached for the life of the process.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	openAPIOnce.Do(func() {
		openAPIDoc, openAPIErr = parseOpenAPI(context.WithoutCancel(ctx), openAPISource)
	})
	return openAPIDoc, openAPIErr
}

func parseOpenAPI(ctx context.Context, raw []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("settingsapi: load openapi: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("settingsapi: validate openapi: %w", err)
	}
	return doc, nil
}

package swagger

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

const SpecRoute = "/openapi.yml"

// Docs is the validated OpenAPI document together with its source bytes.
type Docs struct {
	Doc *openapi3.T
	raw []byte
}

// Load reads and validates the OpenAPI document so a broken spec fails
// startup instead of the Swagger UI.
func Load(ctx context.Context, path string) (*Docs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read openapi spec: %w", err)
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}
	return &Docs{Doc: doc, raw: raw}, nil
}

// Documents reports whether the document declares the method on a path template.
func (d *Docs) Documents(method, path string) bool {
	item := d.Doc.Paths.Find(path)
	return item != nil && item.GetOperation(method) != nil
}

func (d *Docs) SpecHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(d.raw)
	}
}

func Handler() http.Handler {
	return httpSwagger.Handler(httpSwagger.URL(SpecRoute))
}

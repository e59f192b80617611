package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/view>; rel="view"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/view>; rel="view"`,
	},
	"/api/v1/view": {
		`</api/v1/legend>; rel="legend"`,
		`</api/v1/stats>; rel="stats"`,
		`</viewer>; rel="alternate"; type="text/html"`,
	},
	"/api/v1/legend": {
		`</api/v1/style>; rel="style"`,
		`</api/v1/view>; rel="view"`,
	},
	"/api/v1/stats": {
		`</api/v1/view>; rel="view"`,
		`</api/v1/query>; rel="query"`,
	},
	"/api/v1/tables": {
		`</api/v1/query>; rel="query"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		return v, nil
	}
}

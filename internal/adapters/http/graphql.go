package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to the catalog.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"source_file": &graphql.Field{Type: graphql.String},
			"icon_url":    &graphql.Field{Type: graphql.String},
			"count":       &graphql.Field{Type: graphql.Int},
			"loaded":      &graphql.Field{Type: graphql.Boolean},
			"failed":      &graphql.Field{Type: graphql.Boolean},
		},
	})

	attributeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Attribute",
		Fields: graphql.Fields{
			"key":   &graphql.Field{Type: graphql.String},
			"value": &graphql.Field{Type: graphql.String},
		},
	})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"category":   &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"location":   &graphql.Field{Type: geoPointType},
			"attributes": &graphql.Field{Type: graphql.NewList(attributeType)},
		},
	})

	actionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchAction",
		Fields: graphql.Fields{
			"kind":     &graphql.Field{Type: graphql.String},
			"query":    &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{Type: graphql.String},
			"feature":  &graphql.Field{Type: featureType},
			"bounds":   &graphql.Field{Type: boundsType},
		},
	})

	chartEntryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChartEntry",
		Fields: graphql.Fields{
			"label": &graphql.Field{Type: graphql.String},
			"count": &graphql.Field{Type: graphql.Int},
			"color": &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"categories": &graphql.Field{
				Type:        graphql.NewList(categoryType),
				Description: "Amenity categories in enumeration order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var out []map[string]interface{}
					for _, v := range categoryViews(deps) {
						out = append(out, map[string]interface{}{
							"name":        v.Name,
							"source_file": v.SourceFile,
							"icon_url":    v.IconURL,
							"count":       v.Count,
							"loaded":      v.Loaded,
							"failed":      v.Failed,
						})
					}
					return out, nil
				},
			},
			"features": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "Features of one category",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"offset":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category := p.Args["category"].(string)
					offset := p.Args["offset"].(int)
					limit := p.Args["limit"].(int)
					store := deps.Catalog.Store
					if _, ok := store.Category(category); !ok {
						return nil, domain.ErrUnknownCategory
					}
					features := store.Features(category)
					start, end := newPagination(offset, limit, 50, len(features)).Window()
					out := make([]map[string]interface{}, 0, end-start)
					for _, f := range features[start:end] {
						out = append(out, featureMap(f))
					}
					return out, nil
				},
			},
			"boundary": &graphql.Field{
				Type:        boundsType,
				Description: "City bounding box",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					b, ok := deps.Catalog.Store.Boundary()
					if !ok {
						return nil, domain.ErrBoundaryNotReady
					}
					return boundsMap(b), nil
				},
			},
			"resolve": &graphql.Field{
				Type:        actionType,
				Description: "Classify a search query without applying it",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					action, err := deps.Catalog.Resolver.Resolve(p.Args["query"].(string))
					if err != nil {
						return nil, err
					}
					m := map[string]interface{}{
						"kind":     string(action.Kind),
						"query":    action.Query,
						"category": action.Category,
					}
					if action.Feature != nil {
						m["feature"] = featureMap(*action.Feature)
					}
					if action.Bounds != nil {
						m["bounds"] = boundsMap(*action.Bounds)
					}
					return m, nil
				},
			},
			"chart": &graphql.Field{
				Type:        graphql.NewList(chartEntryType),
				Description: "Category breakdown for the given visible categories (all when omitted)",
				Args: graphql.FieldConfigArgument{
					"visible": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var visible []string
					if raw, ok := p.Args["visible"].([]interface{}); ok {
						for _, v := range raw {
							if s, ok := v.(string); ok {
								visible = append(visible, s)
							}
						}
					} else {
						for _, c := range deps.Catalog.Store.Categories() {
							visible = append(visible, c.Name)
						}
					}
					spec := usecases.NewChartController(deps.Catalog.Store, nil, nil).Recompute(visible)
					var out []map[string]interface{}
					for _, e := range spec.Entries {
						out = append(out, map[string]interface{}{
							"label": e.Label,
							"count": e.Count,
							"color": e.Color,
						})
					}
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func featureMap(f domain.Feature) map[string]interface{} {
	attrs := make([]map[string]interface{}, 0, len(f.Attributes))
	for _, a := range f.Attributes {
		var value interface{}
		if a.Value != nil {
			value = usecases.FormatValue(a.Value)
		}
		attrs = append(attrs, map[string]interface{}{"key": a.Key, "value": value})
	}
	return map[string]interface{}{
		"id":       f.ID,
		"category": f.Category,
		"name":     f.Name(),
		"location": map[string]interface{}{
			"lat": f.Location.Lat,
			"lon": f.Location.Lon,
		},
		"attributes": attrs,
	}
}

func boundsMap(b domain.Bounds) map[string]interface{} {
	return map[string]interface{}{
		"min_lat": b.MinLat,
		"min_lon": b.MinLon,
		"max_lat": b.MaxLat,
		"max_lon": b.MaxLon,
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}

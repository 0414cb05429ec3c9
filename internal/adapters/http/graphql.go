package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL schema wired to our services.
// The GraphQL surface is read-only: edits go through the REST endpoints
// so undo history and validation stay on a single path.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boardType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Board",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"owner_id":    &graphql.Field{Type: graphql.String},
			"archived":    &graphql.Field{Type: graphql.Boolean},
			"shape_count": &graphql.Field{Type: graphql.Int},
		},
	})

	shapeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Shape",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"board_id": &graphql.Field{Type: graphql.String},
			"type":     &graphql.Field{Type: graphql.String},
			"vertices": &graphql.Field{Type: graphql.NewList(geoPointType)},
			"version":  &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"boards": &graphql.Field{
				Type:        graphql.NewList(boardType),
				Description: "List boards",
				Args: graphql.FieldConfigArgument{
					"include_archived": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					includeArchived := p.Args["include_archived"].(bool)
					return deps.Boards.List(p.Context, includeArchived)
				},
			},
			"board": &graphql.Field{
				Type:        boardType,
				Description: "Get a board by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Boards.GetByID(p.Context, id)
				},
			},
			"boardShapes": &graphql.Field{
				Type:        graphql.NewList(shapeType),
				Description: "List all shapes on a board",
				Args: graphql.FieldConfigArgument{
					"board_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					boardID := p.Args["board_id"].(string)
					return deps.Shapes.ListByBoard(p.Context, boardID)
				},
			},
			"shape": &graphql.Field{
				Type:        shapeType,
				Description: "Get a shape by ID",
				Args: graphql.FieldConfigArgument{
					"board_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					boardID := p.Args["board_id"].(string)
					id := p.Args["id"].(string)
					return deps.Shapes.GetByID(p.Context, boardID, id)
				},
			},
			"shapesNearby": &graphql.Field{
				Type:        graphql.NewList(shapeType),
				Description: "Find shapes near a location",
				Args: graphql.FieldConfigArgument{
					"board_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius":   &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 500.0},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					boardID := p.Args["board_id"].(string)
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Shapes.FindNearby(p.Context, boardID, lat, lon, radius, limit)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}

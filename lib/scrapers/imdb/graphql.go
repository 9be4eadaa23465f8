package imdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

// graphqlMutation posts one mutation and unwraps the "data" envelope
// into out.
func (c *Client) graphqlMutation(ctx context.Context, name, query string, variables map[string]any, out any) error {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("graphql:%s", name))
	defer span.End()

	span.SetAttributes(attribute.String("name", name))
	serialized, err := json.Marshal(variables)
	if err == nil {
		span.SetAttributes(attribute.String("variables", string(serialized)))
	}

	req := c.graphql.R().
		SetContext(ctx).
		SetBody(graphqlRequest{
			OperationName: name,
			Query:         query,
			Variables:     variables,
		})
	if sessionId := c.sessionId(); sessionId != "" {
		req.SetHeader(sessionHeaderName, sessionId)
	}

	res, err := req.Post("")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return transportErr("POST "+name, err)
	}
	if err := statusErr("POST "+name, res); err != nil {
		span.SetStatus(codes.Error, "mutation returned an error")
		return err
	}

	var result struct {
		Data json.RawMessage `json:"data"`
	}
	err = json.Unmarshal(res.Body(), &result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse json response")
		return fmt.Errorf("%w: %s", ErrProtocol, err)
	}
	if result.Data == nil {
		span.SetStatus(codes.Error, "response is missing data")
		return fmt.Errorf("%w: missing data", ErrProtocol)
	}

	err = json.Unmarshal(result.Data, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse mutation result")
		return fmt.Errorf("%w: %s", ErrProtocol, err)
	}
	return nil
}

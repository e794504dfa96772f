package jmespath

import (
	"encoding/json"

	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/jmespath/go-jmespath"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Expression represents a parsed JMESPath expression. It can be used
// to let clients project simulation results, so that they only
// receive the fields they are interested in (e.g., "steps[].fault").
type Expression struct {
	source     string
	expression *jmespath.JMESPath
}

// Compile a JMESPath expression. Syntax errors are reported as
// InvalidArgument, as expressions are provided by clients.
func Compile(source string) (*Expression, error) {
	if source == "" {
		return nil, status.Error(codes.InvalidArgument, "JMESPath expression is empty")
	}
	expression, err := jmespath.Compile(source)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "Failed to compile JMESPath expression %#v: %s", source, err)
	}
	return &Expression{
		source:     source,
		expression: expression,
	}, nil
}

func (e *Expression) String() string {
	return e.source
}

// Search evaluates the JMESPath expression against the provided data,
// returning the result as structured data. The data must consist of
// the types produced by encoding/json.
func (e *Expression) Search(data any) (any, error) {
	result, err := e.expression.Search(data)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "Failed to evaluate JMESPath expression %#v: %s", e.source, err)
	}
	return result, nil
}

// SearchValue evaluates the JMESPath expression against an arbitrary
// value, after converting it to its JSON representation. This ensures
// that field names match the JSON names of the value, as opposed to
// the names of Go struct fields.
func (e *Expression) SearchValue(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, util.StatusWrapWithCode(err, codes.Internal, "Failed to marshal value")
	}
	var data any
	if err := json.Unmarshal(encoded, &data); err != nil {
		return nil, util.StatusWrapWithCode(err, codes.Internal, "Failed to unmarshal value")
	}
	return e.Search(data)
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/labdesk/labdesk-server/internal/service"
)

func (s *Server) registerTaskRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "countMultiples",
		Method:      http.MethodPost,
		Path:        "/api/v1/tasks/multiples",
		Summary:     "Count multiples of 27",
		Description: "Counts how many of three numbers are multiples of 27 and how many are negative. Empty fields count as zero",
		Tags:        []string{"Tasks"},
	}, s.handleMultiples)

	huma.Register(s.api, huma.Operation{
		OperationID: "filterRange",
		Method:      http.MethodPost,
		Path:        "/api/v1/tasks/range",
		Summary:     "Filter a range",
		Description: "Lists the even numbers in [start, end] that leave remainder 2 when divided by 3",
		Tags:        []string{"Tasks"},
	}, s.handleRange)

	huma.Register(s.api, huma.Operation{
		OperationID: "generateMatrix",
		Method:      http.MethodPost,
		Path:        "/api/v1/tasks/matrix",
		Summary:     "Generate a matrix",
		Description: "Generates an N×N matrix of integers in [-20, 20] and highlights negative odd values above -10",
		Tags:        []string{"Tasks"},
	}, s.handleMatrix)
}

// === DTOs ===

// MultiplesInput contains the three raw number fields.
type MultiplesInput struct {
	Body struct {
		First  string `json:"first" required:"false" maxLength:"64" doc:"First number as typed"`
		Second string `json:"second" required:"false" maxLength:"64" doc:"Second number as typed"`
		Third  string `json:"third" required:"false" maxLength:"64" doc:"Third number as typed"`
	}
}

// MultiplesResponse is the Task 1 answer.
type MultiplesResponse struct {
	Multiples int `json:"multiples" doc:"Inputs divisible by 27"`
	Negatives int `json:"negatives" doc:"Negative inputs"`
}

// MultiplesOutput wraps the Task 1 answer for Huma.
type MultiplesOutput struct {
	Body MultiplesResponse
}

// RangeInput contains the raw range bounds, in either order.
type RangeInput struct {
	Body struct {
		Start string `json:"start" maxLength:"64" doc:"Range start as typed"`
		End   string `json:"end" maxLength:"64" doc:"Range end as typed"`
	}
}

// RangeResponse lists the matching numbers.
type RangeResponse struct {
	Values []float64 `json:"values" doc:"Matching numbers in ascending order"`
	Count  int       `json:"count" doc:"Number of matches"`
}

// RangeOutput wraps the range answer for Huma.
type RangeOutput struct {
	Body RangeResponse
}

// MatrixInput contains the matrix size and an optional seed.
type MatrixInput struct {
	Body struct {
		Size string  `json:"size" maxLength:"32" doc:"Matrix size N as typed, an integer between 1 and 10"`
		Seed *uint64 `json:"seed,omitempty" doc:"Seed for a reproducible matrix"`
	}
}

// MatrixCell is one rendered matrix element.
type MatrixCell struct {
	Row         int  `json:"row" doc:"Zero-based row"`
	Col         int  `json:"col" doc:"Zero-based column"`
	Value       int  `json:"value" doc:"Cell value"`
	Highlighted bool `json:"highlighted" doc:"Whether the value is negative, odd and above -10"`
}

// MatrixResponse is a generated matrix.
type MatrixResponse struct {
	Size        int          `json:"size" doc:"Matrix size N"`
	Seed        uint64       `json:"seed" doc:"Seed that reproduces this matrix"`
	Rows        [][]int      `json:"rows" doc:"Values row by row"`
	Cells       []MatrixCell `json:"cells" doc:"Values in render order with highlight flags"`
	Highlighted int          `json:"highlighted" doc:"Number of highlighted cells"`
}

// MatrixOutput wraps the matrix for Huma.
type MatrixOutput struct {
	Body MatrixResponse
}

// === Handlers ===

func (s *Server) handleMultiples(_ context.Context, input *MultiplesInput) (*MultiplesOutput, error) {
	result, err := s.services.Exercise.Multiples(service.MultiplesRequest{
		First:  input.Body.First,
		Second: input.Body.Second,
		Third:  input.Body.Third,
	})
	if err != nil {
		return nil, s.toStatusError(err, "multiples")
	}

	return &MultiplesOutput{
		Body: MultiplesResponse{
			Multiples: result.Multiples,
			Negatives: result.Negatives,
		},
	}, nil
}

func (s *Server) handleRange(_ context.Context, input *RangeInput) (*RangeOutput, error) {
	result, err := s.services.Exercise.Range(service.RangeRequest{
		Start: input.Body.Start,
		End:   input.Body.End,
	})
	if err != nil {
		return nil, s.toStatusError(err, "range")
	}

	return &RangeOutput{
		Body: RangeResponse{
			Values: result.Values,
			Count:  result.Count,
		},
	}, nil
}

func (s *Server) handleMatrix(_ context.Context, input *MatrixInput) (*MatrixOutput, error) {
	result, err := s.services.Exercise.Matrix(service.MatrixRequest{
		Size: input.Body.Size,
		Seed: input.Body.Seed,
	})
	if err != nil {
		return nil, s.toStatusError(err, "matrix")
	}

	cells := make([]MatrixCell, len(result.Cells))
	for i, c := range result.Cells {
		cells[i] = MatrixCell{
			Row:         c.Row,
			Col:         c.Col,
			Value:       c.Value,
			Highlighted: c.Highlighted,
		}
	}

	return &MatrixOutput{
		Body: MatrixResponse{
			Size:        result.Size,
			Seed:        result.Seed,
			Rows:        result.Rows,
			Cells:       cells,
			Highlighted: result.Highlighted,
		},
	}, nil
}

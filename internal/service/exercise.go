package service

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/labdesk/labdesk-server/internal/arith"
	"github.com/labdesk/labdesk-server/internal/matrix"
	"github.com/labdesk/labdesk-server/internal/validation"
)

// MultiplesRequest holds the three Task 1 inputs as typed by the user.
type MultiplesRequest struct {
	First  string `json:"first" validate:"max=64"`
	Second string `json:"second" validate:"max=64"`
	Third  string `json:"third" validate:"max=64"`
}

// RangeRequest holds the Task 2 bounds.
type RangeRequest struct {
	Start string `json:"start" validate:"max=64"`
	End   string `json:"end" validate:"max=64"`
}

// RangeResult lists the matching numbers in [start, end].
type RangeResult struct {
	Values []float64
	Count  int
}

// MatrixRequest holds the Task 3 size and an optional seed for
// reproducible matrices.
type MatrixRequest struct {
	Size string  `json:"size" validate:"max=32"`
	Seed *uint64 `json:"seed,omitempty"`
}

// MatrixResult is a generated matrix with its highlight summary.
type MatrixResult struct {
	Size        int
	Seed        uint64
	Rows        [][]int
	Cells       []matrix.Cell
	Highlighted int
}

// MaxSeed bounds drawn seeds so they survive a round trip through a
// JSON number.
const MaxSeed = 1<<53 - 1

// ExerciseService runs the arithmetic and matrix drills.
type ExerciseService struct {
	logger       *slog.Logger
	validator    *validation.Validator
	maxRangeSpan float64

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewExerciseService creates a new exercise service. A nil rng gets a
// randomly seeded source.
func NewExerciseService(logger *slog.Logger, maxRangeSpan float64, rng *rand.Rand) *ExerciseService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ExerciseService{
		logger:       logger,
		validator:    validation.New(),
		maxRangeSpan: maxRangeSpan,
		rng:          rng,
	}
}

// Multiples counts multiples of 27 and negatives among the three inputs.
func (s *ExerciseService) Multiples(req MultiplesRequest) (arith.MultiplesResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return arith.MultiplesResult{}, err
	}
	return arith.Multiples27(req.First, req.Second, req.Third), nil
}

// Range lists even numbers in the range that leave remainder 2 modulo 3.
func (s *ExerciseService) Range(req RangeRequest) (RangeResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return RangeResult{}, err
	}

	values, err := arith.EvenRemainderTwo(req.Start, req.End, s.maxRangeSpan)
	if err != nil {
		return RangeResult{}, err
	}
	return RangeResult{Values: values, Count: len(values)}, nil
}

// Matrix generates an N×N matrix. Without a seed one is drawn from the
// service's source and returned so the matrix can be reproduced.
func (s *ExerciseService) Matrix(req MatrixRequest) (MatrixResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return MatrixResult{}, err
	}

	n, err := matrix.ParseSize(req.Size)
	if err != nil {
		return MatrixResult{}, err
	}

	var seed uint64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		s.rngMu.Lock()
		seed = s.rng.Uint64N(MaxSeed + 1)
		s.rngMu.Unlock()
	}

	m, err := matrix.Generate(n, seededRand(seed))
	if err != nil {
		return MatrixResult{}, err
	}

	s.logger.Debug("Matrix generated", "size", n, "seed", seed, "highlighted", m.Highlighted())

	return MatrixResult{
		Size:        n,
		Seed:        seed,
		Rows:        m.Rows(),
		Cells:       m.Cells(),
		Highlighted: m.Highlighted(),
	}, nil
}

func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

package policy

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"provelope/internal/domain"

	"github.com/open-policy-agent/opa/rego"
)

const defaultQuery = "data.provelope.policy.result"

// Input is what a deployment's acceptance policy sees for each verification:
// the engine's outcome plus the envelope metadata it may want to gate on
// (kid allow-lists, structured-path success without a resolvable key set,
// and so on).
type Input struct {
	Verification   domain.Verification `json:"verification"`
	KeyID          string              `json:"key_id"`
	ProofKind      string              `json:"proof_kind"`
	KeySetResolved bool                `json:"key_set_resolved"`
}

type Denial struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	Allow bool     `json:"allow"`
	Deny  []Denial `json:"deny,omitempty"`
}

// Engine evaluates the acceptance policy bundle over verification outcomes.
type Engine struct {
	query      rego.PreparedEvalQuery
	bundlePath string
}

func NewEngineFromBundlePath(ctx context.Context, bundlePath string) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{bundlePath}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared, bundlePath: bundlePath}, nil
}

func (e *Engine) Evaluate(ctx context.Context, input Input) (Result, error) {
	if e == nil {
		return Result{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Result{}, errors.New("empty policy result")
	}
	result, err := decodeResult(results[0].Expressions[0].Value)
	if err != nil {
		return Result{}, err
	}
	sort.Slice(result.Deny, func(i, j int) bool {
		if result.Deny[i].Code == result.Deny[j].Code {
			return result.Deny[i].Message < result.Deny[j].Message
		}
		return result.Deny[i].Code < result.Deny[j].Code
	})
	return result, nil
}

func decodeResult(value any) (Result, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return Result{}, err
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, err
	}
	return result, nil
}

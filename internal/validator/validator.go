// Package validator judges a submission against its test cases.
package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/types"
)

// NoTestCasesMessage is the verdict message of an empty submission
const NoTestCasesMessage = "no test cases provided"

// Executor runs one argument list against a submission
type Executor interface {
	Execute(ctx context.Context, req types.ExecutionRequest) types.ExecutionResult
}

// Observer receives each test-case result as soon as it is known
type Observer func(types.ValidationResult)

// Validator runs test cases one after another through an Executor
type Validator struct {
	executor Executor
	logger   *logrus.Entry
}

// New creates a validator
func New(executor Executor) *Validator {
	return &Validator{
		executor: executor,
		logger:   logrus.WithField("component", "validator"),
	}
}

// Validate runs every test case in order and aggregates the verdict
func (v *Validator) Validate(ctx context.Context, sub types.Submission) types.Verdict {
	return v.Stream(ctx, sub, nil)
}

// Stream is Validate with an observer called after each test case
func (v *Validator) Stream(ctx context.Context, sub types.Submission, observe Observer) types.Verdict {
	verdict := types.Verdict{
		Results:    make([]types.ValidationResult, 0, len(sub.TestCases)),
		TotalCount: len(sub.TestCases),
	}
	if len(sub.TestCases) == 0 {
		verdict.Message = NoTestCasesMessage
		return verdict
	}

	id := uuid.New().String()
	logger := v.logger.WithFields(logrus.Fields{"submission_id": id, "language": sub.Language})
	logger.WithField("test_cases", len(sub.TestCases)).Info("Validating submission")

	for i, tc := range sub.TestCases {
		var result types.ValidationResult
		if err := ctx.Err(); err != nil {
			result = failed(i, tc, fmt.Sprintf("validation canceled: %v", err))
		} else {
			result = v.runCase(ctx, fmt.Sprintf("%s-%d", id, i), sub, i, tc)
		}

		if result.Passed {
			verdict.PassedCount++
		}
		verdict.Results = append(verdict.Results, result)
		if observe != nil {
			observe(result)
		}
	}

	verdict.Passed = verdict.PassedCount == verdict.TotalCount
	verdict.Message = verdict.Summary()
	logger.WithField("passed", verdict.PassedCount).Info(verdict.Message)
	return verdict
}

func (v *Validator) runCase(ctx context.Context, id string, sub types.Submission, index int, tc types.TestCase) types.ValidationResult {
	args, err := jsonval.Arguments(tc.Input)
	if err != nil {
		return failed(index, tc, err.Error())
	}

	expected, err := jsonval.Parse(orNull(tc.ExpectedOutput))
	if err != nil {
		return failed(index, tc, fmt.Sprintf("invalid expected output JSON: %v", err))
	}

	raw := make([]json.RawMessage, len(args))
	for i, a := range args {
		raw[i] = a.Raw()
	}

	res := v.executor.Execute(ctx, types.ExecutionRequest{
		ID:             id,
		SourceCode:     sub.SourceCode,
		Language:       sub.Language,
		Arguments:      raw,
		Timeout:        sub.Timeout,
		ExpectedOutput: expected.Raw(),
	})

	result := failed(index, tc, res.Error)
	if !res.Success {
		return result
	}

	actual, err := jsonval.Parse(res.Output)
	if err != nil {
		result.Error = fmt.Sprintf("invalid output JSON: %v", err)
		return result
	}
	actual = decodeString(actual, expected)
	result.ActualOutput = actual.Raw()
	result.Error = ""
	result.Passed = jsonval.Equal(actual, expected)
	return result
}

// decodeString reads a string result as the JSON it spells, so a program
// printing "[0,1]" matches [0,1]. When a string is expected, or the text is
// not JSON, the result stays trimmed text.
func decodeString(v, expected jsonval.Value) jsonval.Value {
	if v.Kind != jsonval.String {
		return v
	}
	text := strings.TrimSpace(v.Str)
	if expected.Kind == jsonval.String {
		v.Str = text
		return v
	}
	if parsed, err := jsonval.Parse([]byte(text)); err == nil {
		return parsed
	}
	v.Str = text
	return v
}

func failed(index int, tc types.TestCase, msg string) types.ValidationResult {
	return types.ValidationResult{
		TestCaseIndex:  index,
		Passed:         false,
		Input:          orNull(tc.Input),
		ExpectedOutput: orNull(tc.ExpectedOutput),
		Error:          msg,
	}
}

// orNull maps an absent JSON value to null
func orNull(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package result_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

/*
TestMatch_Variants dispatches every variant to its branch.
*/
func TestMatch_Variants(t *testing.T) {
	describe := func(r result.Result[[]int]) string {
		return result.Match(r,
			func() string { return "loading" },
			func(items []int) string { return "items" },
			func(message string) string { return "error: " + message },
		)
	}

	tests := []struct {
		name  string
		state result.Result[[]int]
		want  string
	}{
		{"loading", result.Pending[[]int](), "loading"},
		{"success", result.Ok([]int{1}), "items"},
		{"failure", result.Fail[[]int](errors.New("offline")), "error: offline"},
		{"nil_is_loading", nil, "loading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.state))
		})
	}
}

/*
TestAccessors verifies Data, IsLoading and Message.
*/
func TestAccessors(t *testing.T) {
	data, ok := result.Data(result.Ok("x"))
	assert.True(t, ok)
	assert.Equal(t, "x", data)

	_, ok = result.Data(result.Pending[string]())
	assert.False(t, ok)

	assert.True(t, result.IsLoading(result.Pending[string]()))
	assert.Equal(t, "boom", result.Message(result.Fail[string](errors.New("boom"))))
	assert.Equal(t, "Something went wrong", result.Message(result.Fail[string](nil)))
	assert.Empty(t, result.Message(result.Ok("x")))
}

/*
TestData_InfersFromInterface reads a payload through the Result interface
without naming the type parameter.
*/
func TestData_InfersFromInterface(t *testing.T) {
	var state result.Result[[]string] = result.Ok([]string{"Saga #1"})

	items, ok := result.Data(state)
	assert.True(t, ok)
	assert.Equal(t, []string{"Saga #1"}, items)
	assert.False(t, result.IsLoading(state))
	assert.Empty(t, result.Message(state))
}

/*
TestErr returns the cause of a Failure only.
*/
func TestErr(t *testing.T) {
	cause := errors.New("connection refused")

	assert.ErrorIs(t, result.Err(result.Fail[int](cause)), cause)
	assert.NoError(t, result.Err(result.Ok(1)))
	assert.NoError(t, result.Err(result.Pending[int]()))
}

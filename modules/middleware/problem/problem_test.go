// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	t.Run("copies the request id into traceId", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		rec.Header().Set(TraceHeader, "req-1")

		Write(rec, Forbidden("you can only modify your own profile"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "FORBIDDEN", body["code"])
		assert.Equal(t, "Forbidden", body["title"])
		assert.Equal(t, "you can only modify your own profile", body["detail"])
		assert.Equal(t, "req-1", body["traceId"])
	})

	t.Run("nil problem is an internal error", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		Write(rec, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestProblemJSON(t *testing.T) {
	t.Parallel()

	p := UnprocessableEntity("invalid input",
		WithInvalidParams(map[string]string{"name": "cannot be blank", "age": "must be between 1 and 150"}),
		WithExtension("retryable", false),
	)
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var body struct {
		Status        int            `json:"status"`
		Code          string         `json:"code"`
		InvalidParams []InvalidParam `json:"invalidParams"`
		Retryable     *bool          `json:"retryable"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, http.StatusUnprocessableEntity, body.Status)
	assert.Equal(t, CodeValidationFailed, body.Code)
	assert.Equal(t, []InvalidParam{
		{Name: "age", Reason: "must be between 1 and 150"},
		{Name: "name", Reason: "cannot be blank"},
	}, body.InvalidParams)
	require.NotNil(t, body.Retryable)
	assert.False(t, *body.Retryable)
}

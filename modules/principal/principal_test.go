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

package principal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("anonymous when nothing stored", func(t *testing.T) {
		t.Parallel()
		p := FromContext(context.Background())
		assert.Nil(t, p)
		assert.True(t, p.IsAnonymous())
	})

	t.Run("round trips stored principal", func(t *testing.T) {
		t.Parallel()
		want := &Principal{ID: "u1", Email: "u1@example.com", AccessToken: "tok"}
		got := FromContext(WithPrincipal(context.Background(), want))
		require.NotNil(t, got)
		assert.Same(t, want, got)
		assert.False(t, got.IsAnonymous())
	})

	t.Run("nil principal keeps context anonymous", func(t *testing.T) {
		t.Parallel()
		ctx := WithPrincipal(context.Background(), nil)
		assert.Nil(t, FromContext(ctx))
	})
}

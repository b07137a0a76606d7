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

package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fm:rl:1.2.3.4", NewRedisCounterStore(nil, "fm").buildKey("rl:1.2.3.4"))
	assert.Equal(t, "fm:rl:1.2.3.4", NewRedisCounterStore(nil, "fm:").buildKey("rl:1.2.3.4"))
	assert.Equal(t, "rl:1.2.3.4", NewRedisCounterStore(nil, "").buildKey("rl:1.2.3.4"))
}

func TestIncrScript(t *testing.T) {
	t.Parallel()

	assert.Contains(t, atomicIncrLua, "INCR")
	assert.Contains(t, atomicIncrLua, "PEXPIRE")
}

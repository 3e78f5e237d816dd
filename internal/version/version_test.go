// Copyright 2026 The LLMSpell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llmspell/llmspell/internal/version"
)

func TestGetReturnsDevWhenUnset(t *testing.T) {
	orig := version.Version
	version.Version = ""
	defer func() { version.Version = orig }()

	assert.Equal(t, "dev", version.Get())
}

func TestGetReturnsConfiguredVersion(t *testing.T) {
	orig := version.Version
	version.Version = "v2.3.4"
	defer func() { version.Version = orig }()

	assert.Equal(t, "v2.3.4", version.Get())
}

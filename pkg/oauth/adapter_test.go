package oauth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingsocial/authkit/pkg/oauth"
)

func TestGenerateState(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		state, err := oauth.GenerateState()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(state), 40, "32 random bytes base64url encoded")
		assert.False(t, seen[state], "states must not repeat")
		seen[state] = true
	}
}

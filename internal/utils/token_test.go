package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/constants"
)

func TestGenerateSessionToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := GenerateSessionToken()
		require.NoError(t, err)
		require.Len(t, token, constants.SessionTokenBytes*2)

		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}

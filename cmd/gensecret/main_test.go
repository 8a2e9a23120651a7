package main

import (
	"bytes"
	"crypto/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_writeSecrets(t *testing.T) {
	t.Run("two different secrets", func(t *testing.T) {
		var out bytes.Buffer

		err := writeSecrets(&out, rand.Reader)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		require.Regexp(t, regexp.MustCompile(`^SECRET_KEY=[0-9a-f]{64}$`), lines[0])
		require.Regexp(t, regexp.MustCompile(`^ADMIN_SECRET=[0-9a-f]{64}$`), lines[1])
		require.NotEqual(t, strings.TrimPrefix(lines[0], "SECRET_KEY="), strings.TrimPrefix(lines[1], "ADMIN_SECRET="))
	})

	t.Run("short random source fail", func(t *testing.T) {
		var out bytes.Buffer

		err := writeSecrets(&out, strings.NewReader("too short"))

		require.Error(t, err)
	})
}

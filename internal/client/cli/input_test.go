package cli

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("  hello world \nnext\n"))
	var out bytes.Buffer

	got, err := GetSimpleText(sc, "Name?", &out)
	require.NoError(t, err)
	require.Equal(t, "hello world", got)
	require.Equal(t, "Name?\n> ", out.String())

	got, err = GetSimpleText(sc, "Again?", &out)
	require.NoError(t, err)
	require.Equal(t, "next", got)
}

func TestGetSimpleText_LastLineWithoutNewline(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("lastline"))
	got, err := GetSimpleText(sc, "Name?", io.Discard)
	require.NoError(t, err)
	require.Equal(t, "lastline", got)
}

func TestGetSimpleText_EOF(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader(""))
	_, err := GetSimpleText(sc, "Name?", io.Discard)
	require.ErrorIs(t, err, io.EOF)
}

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/vnykmshr/chronoflow/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out, "chronoflow dev\n")
}

func TestMatrixCommand(t *testing.T) {
	out, err := execute(t, "matrix", "--workers=2", "--size=10", "--seed=1", "--log-level=error")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, strings.Contains(out, "Sum of all elements in a random matrix:"), true)
	testutil.AssertEqual(t, strings.Contains(out, "Sum of all normalized rows in a random matrix:"), true)
}

func TestMatrixCommandRejectsBadConfig(t *testing.T) {
	_, err := execute(t, "matrix", "--size=0", "--log-level=error")
	testutil.AssertError(t, err)
}

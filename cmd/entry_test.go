package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const program = `realm Core {
	being Math {
		ritual square(n: int) -> int {
			return n * n;
		}
	}
}
`

func writeProgram(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func dispatch(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Dispatch(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun(t *testing.T) {
	path := writeProgram(t, "math.nv", program)

	code, out, errOut := dispatch("run", "-f", path, "-r", "Core.Math.square", "7")
	be.Equal(t, code, 0)
	be.Equal(t, errOut, "")
	be.Equal(t, out, "49\n")

	code, _, errOut = dispatch("run", "-f", path, "-r", "Core.Math.cube", "7")
	be.Equal(t, code, 1)
	be.True(t, strings.Contains(errOut, "ritual (cube) not found"))

	code, _, errOut = dispatch("run", "-r", "Core.Math.square")
	be.Equal(t, code, 2)
	be.True(t, strings.Contains(errOut, "-f"))
}

func TestCheck(t *testing.T) {
	good := writeProgram(t, "good.nv", program)
	bad := writeProgram(t, "bad.nv", "realm Core {\n  being Math {\n    ritual f() -> int { }\n  }\n}\n")

	code, out, errOut := dispatch("check", good, bad)
	be.Equal(t, code, 1)
	be.True(t, strings.Contains(out, good+": ok"))
	be.True(t, strings.Contains(errOut, "ERROR: ritual (f) has (int) as return type"))

	code, _, _ = dispatch("check", good)
	be.Equal(t, code, 0)

	code, _, _ = dispatch("check")
	be.Equal(t, code, 2)
}

func TestDump(t *testing.T) {
	path := writeProgram(t, "math.nv", program)

	code, out, _ := dispatch("dump", "-f", path)
	be.Equal(t, code, 0)
	be.True(t, strings.Contains(out, `Name: (string) (len=6) "square"`))
}

func TestDispatchErrors(t *testing.T) {
	code, _, errOut := dispatch()
	be.Equal(t, code, 2)
	be.True(t, strings.Contains(errOut, "at least provide command name"))

	code, _, errOut = dispatch("fly")
	be.Equal(t, code, 2)
	be.True(t, strings.Contains(errOut, "unknown command fly"))

	code, out, _ := dispatch("help", "run")
	be.Equal(t, code, 0)
	be.True(t, strings.Contains(out, "-max-cycles"))
	be.True(t, strings.Contains(out, "-max-depth"))

	code, out, _ = dispatch("help")
	be.Equal(t, code, 0)
	for name := range commands {
		be.True(t, strings.Contains(out, name))
	}
}

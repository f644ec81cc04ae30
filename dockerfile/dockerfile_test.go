package dockerfile

import (
	"testing"

	"gotest.tools/v3/assert"

	"updock"
)

func TestParse(t *testing.T) {
	t.Parallel()

	input := `# updock --pattern "<!>.<>.<>"
FROM debian:10.3.4

# an ordinary comment
# updock --pattern "<>-alpine"
FROM nginx:1-alpine AS build
`

	instructions, err := Parse(input, nil)
	assert.NilError(t, err)
	assert.Equal(t, len(instructions), 2)

	assert.Equal(t, instructions[0].Image, "debian")
	assert.Equal(t, instructions[0].Tag, "10.3.4")
	assert.Equal(t, instructions[0].Line, 2)
	assert.Equal(t, instructions[0].Pattern.String(), "<!>.<>.<>")
	assert.NilError(t, instructions[0].Err)

	assert.Equal(t, instructions[1].Image, "nginx")
	assert.Equal(t, instructions[1].Tag, "1-alpine")
	assert.Equal(t, instructions[1].Pattern.String(), "<>-alpine")
}

func TestParse_DirectiveSurvivesBlankLines(t *testing.T) {
	t.Parallel()

	input := `# updock --pattern "<>.<>"

ARG something

FROM library/postgres:12.1
`

	instructions, err := Parse(input, nil)
	assert.NilError(t, err)
	assert.Equal(t, len(instructions), 1)
	assert.Equal(t, instructions[0].Image, "postgres")
	assert.Equal(t, instructions[0].Tag, "12.1")
	assert.Equal(t, instructions[0].Pattern.String(), "<>.<>")
}

func TestParse_Fallback(t *testing.T) {
	t.Parallel()

	fallback := updock.MustCompilePattern("<>.<>.<>")

	instructions, err := Parse("FROM debian:10.3.4\n", &fallback)
	assert.NilError(t, err)
	assert.Equal(t, len(instructions), 1)
	assert.NilError(t, instructions[0].Err)
	assert.Equal(t, instructions[0].Pattern.String(), "<>.<>.<>")
}

func TestParse_MissingPattern(t *testing.T) {
	t.Parallel()

	instructions, err := Parse("FROM debian:10.3.4\n", nil)
	assert.NilError(t, err)
	assert.Equal(t, len(instructions), 1)
	assert.ErrorContains(t, instructions[0].Err, "no pattern")
}

func TestParse_MalformedDirectivePattern(t *testing.T) {
	t.Parallel()

	input := `# updock --pattern "<!.<>"
FROM debian:10.3.4
`

	instructions, err := Parse(input, nil)
	assert.NilError(t, err)
	assert.Equal(t, len(instructions), 1)
	assert.ErrorContains(t, instructions[0].Err, "invalid pattern")
}

func TestParse_DanglingDirective(t *testing.T) {
	t.Parallel()

	input := `FROM debian:10.3.4
# updock --pattern "<>.<>"
`

	fallback := updock.MustCompilePattern("<>")
	_, err := Parse(input, &fallback)
	assert.ErrorContains(t, err, "not followed by a FROM statement")
}

func TestParse_PlatformFlag(t *testing.T) {
	t.Parallel()

	input := `# updock --pattern "<>.<>"
FROM --platform=linux/amd64 postgres:12.1
`

	instructions, err := Parse(input, nil)
	assert.NilError(t, err)
	assert.Equal(t, len(instructions), 1)
	assert.Equal(t, instructions[0].Image, "postgres")
	assert.Equal(t, instructions[0].Tag, "12.1")
}

func TestParse_UntaggedDefaultsToLatest(t *testing.T) {
	t.Parallel()

	fallback := updock.MustCompilePattern("<>")

	instructions, err := Parse("FROM debian\n", &fallback)
	assert.NilError(t, err)
	assert.Equal(t, instructions[0].Tag, "latest")
}

func TestParseRef(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		name string
		tag  string
	}{
		{"debian:10", "debian", "10"},
		{"woozymasta/rats:0.2.0", "woozymasta/rats", "0.2.0"},
		{"registry.example.com/team/app:1.2", "registry.example.com/team/app", "1.2"},
		{"debian", "debian", "latest"},
	}

	for _, tc := range cases {
		name, tag, err := ParseRef(tc.in)
		assert.NilError(t, err)
		assert.Equal(t, name, tc.name)
		assert.Equal(t, tag, tc.tag)
	}

	_, _, err := ParseRef("UPPER/Case:tag")
	assert.Assert(t, err != nil)
}

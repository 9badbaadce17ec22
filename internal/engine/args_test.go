package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildArgs_RunTypes checks the positional layout for every run type.
func TestBuildArgs_RunTypes(t *testing.T) {
	tests := []struct {
		name     string
		spec     RunSpec
		opts     Options
		expected []string
	}{
		{
			name:     "smoke with no flags",
			spec:     Smoke{},
			expected: []string{"smoke"},
		},
		{
			name:     "model appends the model name",
			spec:     Model{Name: "gemini-2.0-flash"},
			expected: []string{"model", "gemini-2.0-flash"},
		},
		{
			name:     "full has no positionals",
			spec:     Full{},
			expected: []string{"full"},
		},
		{
			name:     "pattern appends the expression",
			spec:     Pattern{Expr: "auth.*"},
			expected: []string{"pattern", "auth.*"},
		},
		{
			name:     "first appends the stringified count",
			spec:     First{Count: 25},
			expected: []string{"first", "25"},
		},
		{
			name:     "first with model appends the literal model token",
			spec:     First{Count: 10, ModelName: "gemini"},
			opts:     Options{NoCache: true},
			expected: []string{"first", "10", "model", "gemini", "--no-cache"},
		},
		{
			name:     "retry has no positionals",
			spec:     Retry{},
			expected: []string{"retry"},
		},
		{
			name:     "all flags enabled",
			spec:     Smoke{},
			opts:     Options{NoCache: true, Verbose: true, NoHTML: true},
			expected: []string{"smoke", "--no-cache", "--verbose", "--no-html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildArgs(tt.spec, tt.opts))
		})
	}
}

// TestBuildArgs_FlagsAppearExactlyOnce verifies each enabled flag shows up
// once and disabled flags never do, across every run type.
func TestBuildArgs_FlagsAppearExactlyOnce(t *testing.T) {
	specs := []RunSpec{
		Smoke{},
		Model{Name: "m"},
		Full{},
		Pattern{Expr: "p"},
		First{Count: 3},
		Retry{},
	}

	for _, spec := range specs {
		args := BuildArgs(spec, Options{NoCache: true, Verbose: true, NoHTML: true})
		assert.Equal(t, 1, count(args, "--no-cache"), "run type %s", spec.Type())
		assert.Equal(t, 1, count(args, "--verbose"), "run type %s", spec.Type())
		assert.Equal(t, 1, count(args, "--no-html"), "run type %s", spec.Type())

		args = BuildArgs(spec, Options{})
		assert.Zero(t, count(args, "--no-cache"), "run type %s", spec.Type())
		assert.Zero(t, count(args, "--verbose"), "run type %s", spec.Type())
		assert.Zero(t, count(args, "--no-html"), "run type %s", spec.Type())
	}
}

// TestBuildArgs_RunTypeComesFirst verifies the run type is always the first
// argument and the variant's parameter the second.
func TestBuildArgs_RunTypeComesFirst(t *testing.T) {
	assert.Equal(t, "my-model", BuildArgs(Model{Name: "my-model"}, Options{})[1])
	assert.Equal(t, "^login", BuildArgs(Pattern{Expr: "^login"}, Options{})[1])
	assert.Equal(t, "7", BuildArgs(First{Count: 7}, Options{})[1])
}

func TestBuildDryRunArgs(t *testing.T) {
	args := BuildDryRunArgs(Pattern{Expr: "x"}, Options{Verbose: true})
	assert.Equal(t, []string{"dry-run", "pattern", "x", "--verbose"}, args)
}

func TestCompletedExit(t *testing.T) {
	assert.True(t, CompletedExit(ExitOK))
	assert.True(t, CompletedExit(ExitTestFailures))
	assert.False(t, CompletedExit(1))
	assert.False(t, CompletedExit(-1))
}

func count(args []string, want string) int {
	n := 0
	for _, a := range args {
		if a == want {
			n++
		}
	}
	return n
}

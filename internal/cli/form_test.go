package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parkside-Labs/evalgate/internal/engine"
)

func TestFormFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want engine.RunForm
	}{
		{
			name: "smoke",
			args: []string{"smoke"},
			want: engine.RunForm{RunType: "smoke"},
		},
		{
			name: "full",
			args: []string{"full"},
			want: engine.RunForm{RunType: "full"},
		},
		{
			name: "retry",
			args: []string{"retry"},
			want: engine.RunForm{RunType: "retry"},
		},
		{
			name: "model with name",
			args: []string{"model", "gemini-2.0-flash"},
			want: engine.RunForm{RunType: "model", ModelName: "gemini-2.0-flash"},
		},
		{
			name: "pattern with regex",
			args: []string{"pattern", "auth.*"},
			want: engine.RunForm{RunType: "pattern", Pattern: "auth.*"},
		},
		{
			name: "first with count",
			args: []string{"first", "10"},
			want: engine.RunForm{RunType: "first", Count: 10},
		},
		{
			name: "first with count and model",
			args: []string{"first", "5", "model", "gemini-1.5-pro"},
			want: engine.RunForm{RunType: "first", Count: 5, ModelName: "gemini-1.5-pro"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, err := formFromArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, form)
		})
	}
}

func TestFormFromArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"model without name", []string{"model"}},
		{"model with extra args", []string{"model", "a", "b"}},
		{"pattern without regex", []string{"pattern"}},
		{"first without count", []string{"first"}},
		{"first with non-numeric count", []string{"first", "ten"}},
		{"first with stray word", []string{"first", "5", "against", "gemini"}},
		{"smoke with extra args", []string{"smoke", "now"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formFromArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

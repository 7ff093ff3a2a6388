package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		wantInOutput   []string
		wantExactMatch string
	}{
		{
			name:    "help flag shows usage",
			args:    []string{"--help"},
			wantErr: false,
			wantInOutput: []string{
				"cross-service agent workflow for the HNR platform",
				"Usage:",
				"hnrflow [flags]",
				"--config",
				"--env-file",
				"--no-cleanup",
				"--report-file",
				"--strict",
				"--version",
			},
		},
		{
			name:           "version flag shows version",
			args:           []string{"--version"},
			wantErr:        false,
			wantExactMatch: "hnrflow version 0.1.0\n",
		},
		{
			name:           "short version flag shows version",
			args:           []string{"-v"},
			wantErr:        false,
			wantExactMatch: "hnrflow version 0.1.0\n",
		},
		{
			name:    "positional arguments are rejected",
			args:    []string{"extra"},
			wantErr: true,
			wantInOutput: []string{
				`unknown command "extra" for "hnrflow"`,
			},
		},
		{
			name:    "invalid flag shows error",
			args:    []string{"--invalid"},
			wantErr: true,
			wantInOutput: []string{
				"unknown flag: --invalid",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd := newRootCommand(&Dependencies{})
			buf := new(bytes.Buffer)
			rootCmd.SetOut(buf)
			rootCmd.SetErr(buf)
			rootCmd.SetArgs(tt.args)

			err := rootCmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			output := buf.String()
			if tt.wantExactMatch != "" {
				assert.Equal(t, tt.wantExactMatch, output)
			}
			for _, want := range tt.wantInOutput {
				assert.True(t, strings.Contains(output, want), "output missing %q:\n%s", want, output)
			}
		})
	}
}

package main

import "testing"

func TestInvalidConfig(t *testing.T) {
	tcs := []struct {
		name string
		args []string
	}{
		{
			name: "bad-since",
			args: []string{"--search", "--since", "not-a-date"},
		},
		{
			name: "bad-until",
			args: []string{"--search", "--until", "2026-13-99"},
		},
		{
			name: "missing-config-file",
			args: []string{"--config", "testdata/does-not-exist.yaml"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"crier"}, tc.args...)
			t.Logf("args: %q", tc.args)
			if err := run(args); err == nil {
				t.Fatal("expected args to be invalid")
			} else {
				t.Log(err)
			}
		})
	}
}

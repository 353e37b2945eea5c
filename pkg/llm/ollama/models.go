package ollama

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"os/exec"
	"strings"
)

// ListModels returns the names of the locally installed models as reported by `ollama list`
func ListModels(ctx context.Context) ([]string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ollama", "list")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ollama list failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseModelList(stdout.String()), nil
}

// parseModelList extracts the first column of `ollama list`, skipping the header
func parseModelList(output string) []string {
	var models []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "NAME" {
			continue
		}
		models = append(models, fields[0])
	}
	return models
}

// PickModel chooses one of models uniformly at random
func PickModel(models []string, rng *rand.Rand) (string, error) {
	if len(models) == 0 {
		return "", fmt.Errorf("no models installed")
	}
	return models[rng.IntN(len(models))], nil
}

// Family returns the model name without its tag or namespace, e.g.
// "library/llama3.1:8b" becomes "llama3.1".
func Family(model string) string {
	name, _, _ := strings.Cut(model, ":")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

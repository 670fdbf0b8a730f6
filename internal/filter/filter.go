// Package filter narrows and reshapes JSON documents, such as a hotkey
// table, with JMESPath expressions or a shell command.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"

	"github.com/studiowebux/tabkeys/internal/keybinds"
)

// QueryShellTimeout bounds a $(command) query
const QueryShellTimeout = 30 * time.Second

var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Apply runs filter and then query over a JSON document and returns the
// indented result. Either may be empty. A query written as $(command) runs
// through sh with the current result on stdin.
func Apply(body string, filter string, query string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), QueryShellTimeout)
	defer cancel()
	return ApplyContext(ctx, body, filter, query)
}

// ApplyContext is Apply with a caller-controlled deadline for shell queries
func ApplyContext(ctx context.Context, body string, filter string, query string) (string, error) {
	if filter == "" && query == "" {
		return body, nil
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	if filter != "" {
		v, err := search(doc, filter)
		if err != nil {
			return "", fmt.Errorf("failed to apply filter: %w", err)
		}
		doc = v
	}

	if m := shellPattern.FindStringSubmatch(query); len(m) > 1 {
		input, err := render(doc)
		if err != nil {
			return "", err
		}
		out, err := runShell(ctx, input, m[1])
		if err != nil {
			return "", fmt.Errorf("failed to execute query shell command: %w", err)
		}
		return out, nil
	}

	if query != "" {
		v, err := search(doc, query)
		if err != nil {
			return "", fmt.Errorf("failed to apply query: %w", err)
		}
		doc = v
	}

	return render(doc)
}

func search(doc any, expression string) (any, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}
	v, err := jp.Search(doc)
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}
	return v, nil
}

// render indents v; a nil result renders as null
func render(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(out), nil
}

func runShell(ctx context.Context, input string, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("command '%s' failed: %s", command, msg)
		}
		return "", fmt.Errorf("command '%s' failed: %w", command, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsValidJMESPath reports whether expression compiles
func IsValidJMESPath(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}

// IsShellCommand reports whether query has the $(command) form
func IsShellCommand(query string) bool {
	return shellPattern.MatchString(query)
}

// ByAction keeps the chords bound to any of the named actions, compared
// case-insensitively. No names keeps everything.
func ByAction(table keybinds.Table, actions []string) keybinds.Table {
	if len(actions) == 0 {
		return table
	}

	var kept keybinds.Table
	for _, c := range table {
		for _, name := range actions {
			if strings.EqualFold(string(c.Action), name) {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// maxRuleLine matches the longest line the list compiler accepts.
const maxRuleLine = 1024 * 1024

// readRules returns args, or the non-blank lines of stdin when no argument
// was given.
func readRules(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	return scanRules(cmd.InOrStdin())
}

func scanRules(r io.Reader) ([]string, error) {
	var rules []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRuleLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			rules = append(rules, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return rules, nil
}

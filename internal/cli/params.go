package cli

import (
	"os"
	"strconv"
	"strings"
)

// parseParams converts command line arguments to bind parameters. NULL
// becomes nil, integers and floats keep their numeric type and anything
// else is text. Quote a value as 'text' to force text.
func parseParams(args []string) []any {
	params := make([]any, len(args))
	for i, arg := range args {
		params[i] = parseParam(arg)
	}
	return params
}

func parseParam(arg string) any {
	if strings.EqualFold(arg, "null") {
		return nil
	}
	if len(arg) >= 2 && arg[0] == '\'' && arg[len(arg)-1] == '\'' {
		return arg[1 : len(arg)-1]
	}
	if i, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(arg, 64); err == nil {
		return f
	}
	return arg
}

// readSQL returns the SQL text of arg, reading a file when it starts with @.
func readSQL(arg string) (string, error) {
	if !strings.HasPrefix(arg, "@") {
		return arg, nil
	}
	b, err := os.ReadFile(arg[1:])
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package tools

import (
	"fmt"
	"strings"

	"combell-mcp/internal/pagination"

	"github.com/mark3labs/mcp-go/mcp"
)

// validationError is a caller mistake. It is not logged as a failure.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// toolError carries a message meant for the caller as is.
type toolError struct {
	msg string
}

func (e *toolError) Error() string { return e.msg }

func failure(format string, args ...any) error {
	return &toolError{msg: fmt.Sprintf(format, args...)}
}

// requireText returns a required, non-blank string argument.
func requireText(request mcp.CallToolRequest, key string) (string, error) {
	v, err := request.RequireString(key)
	if err != nil {
		return "", invalid("%s argument is required", key)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("%s argument must not be empty", key)
	}
	return v, nil
}

// optionalText returns a string argument. Absent and null both give "".
func optionalText(request mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(request.GetString(key, ""))
}

// pageSize reads page_size, defaulting to def.
func pageSize(request mcp.CallToolRequest, def int) (int, error) {
	if def <= 0 {
		def = pagination.DefaultPageSize
	}
	args := request.GetArguments()
	if v, ok := args["page_size"]; !ok || v == nil {
		return def, nil
	}
	n := request.GetInt("page_size", 0)
	if n <= 0 {
		return 0, invalid("page_size must be a positive integer")
	}
	return n, nil
}

var pageSizeOption = mcp.WithNumber("page_size",
	mcp.Description("Number of records requested per upstream page (default 100). All pages are always returned."),
	mcp.DefaultNumber(pagination.DefaultPageSize),
)

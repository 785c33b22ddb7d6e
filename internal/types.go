package internal

import (
	"fmt"
	"strings"
)

// InputKind represents where a transcript argument points
type InputKind int

const (
	InputUnknown InputKind = iota
	InputFile
	InputStdin
	InputCommand
)

// String returns a human-readable representation of the input kind
func (k InputKind) String() string {
	switch k {
	case InputFile:
		return "file"
	case InputStdin:
		return "stdin"
	case InputCommand:
		return "command"
	default:
		return "unknown"
	}
}

// ParsedArg represents the result of parsing a command line argument
type ParsedArg struct {
	Kind          InputKind
	OriginalInput string
	Path          string
	Error         error
}

// ParseArg classifies a transcript argument: "-" (or nothing) is stdin, an existing
// path is a file, and a short bare word is most likely a mistyped command
func ParseArg(arg string) *ParsedArg {
	p := &ParsedArg{OriginalInput: arg}

	switch {
	case arg == "" || arg == "-":
		p.Kind = InputStdin
	case FileExists(arg):
		p.Kind = InputFile
		p.Path = arg
	case IsLikelyCommand(arg):
		p.Kind = InputCommand
		p.Error = fmt.Errorf("unknown command %q", arg)
	default:
		p.Kind = InputUnknown
		p.Error = fmt.Errorf("transcript file not found: %s", arg)
	}

	return p
}

// IsValid returns true if the parsed argument is valid and has no errors
func (p *ParsedArg) IsValid() bool {
	return p.Error == nil && (p.Kind == InputFile || p.Kind == InputStdin)
}

// String returns a formatted representation of the parsed argument
func (p *ParsedArg) String() string {
	if p.Error != nil {
		return fmt.Sprintf("ParsedArg{kind=%s, input=%q, error=%v}", p.Kind, p.OriginalInput, p.Error)
	}
	return fmt.Sprintf("ParsedArg{kind=%s, path=%s}", p.Kind, p.Path)
}

// SuggestCorrection provides helpful suggestions for invalid inputs
func (p *ParsedArg) SuggestCorrection(availableCommands []string) string {
	if p.Kind != InputCommand {
		return ""
	}

	input := strings.ToLower(p.OriginalInput)
	var suggestions []string

	for _, cmd := range availableCommands {
		if strings.Contains(cmd, input) || strings.Contains(input, cmd) {
			suggestions = append(suggestions, cmd)
		}
	}

	if len(suggestions) > 0 {
		return fmt.Sprintf("did you mean: %s", strings.Join(suggestions, ", "))
	}

	return "use --help to see available commands"
}

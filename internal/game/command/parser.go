package command

import "strings"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
}

// Parse splits a text line into a lowercased command word and its arguments.
// Arguments keep their case; item, move and creature ids are matched exactly.
//
// Postcondition: If line is blank, Command is empty and Args is nil.
func Parse(line string) ParseResult {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ParseResult{}
	}
	res := ParseResult{Command: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		res.Args = fields[1:]
	}
	return res
}

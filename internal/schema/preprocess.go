package schema

import (
	"regexp"
)

// codecgenDirectiveRegex matches @codecgen(...) at the start of a line.
var codecgenDirectiveRegex = regexp.MustCompile(`(?m)^@codecgen\s*\(((?:[^()]*|\([^)]*\))*)\)`)

// extendsRegex matches `type Child extends Base {` declarations, with an
// optional directive tail between the supertype name and the brace.
var extendsRegex = regexp.MustCompile(`(?m)^type\s+(\w+)\s+extends\s+(\w+)((?:\s+@\w+(?:\([^)]*\))?)*)\s*{`)

// PreprocessIDL rewrites the codecgen extensions into valid GraphQL type
// definitions so the stock parser can consume them.
func PreprocessIDL(input string) string {
	// 1. Rewrite @codecgen(...) to a _Schema type with a properly typed field
	input = codecgenDirectiveRegex.ReplaceAllStringFunc(input, func(match string) string {
		args := codecgenDirectiveRegex.FindStringSubmatch(match)[1]
		return `type _Schema {
  _: String @codecgen(` + args + `)
}`
	})

	// 2. Rewrite `type Child extends Base` to an @extends directive
	input = extendsRegex.ReplaceAllStringFunc(input, func(match string) string {
		parts := extendsRegex.FindStringSubmatch(match)
		return `type ` + parts[1] + parts[3] + ` @extends(base: "` + parts[2] + `") {`
	})

	return input
}

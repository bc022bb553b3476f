package directive

import (
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/wasilibs/go-re2"

	"github.com/aatumaykin/nexsched/internal/logger"
)

var (
	// "/name" at the start of a prompt, name may carry a namespace ("a:b")
	directivePattern = re2.MustCompile(`^/([A-Za-z0-9][A-Za-z0-9_:.-]*)(\s|$)`)

	// fallback tokenizer for commands shellquote cannot parse (unbalanced quotes)
	fallbackTokenPattern = re2.MustCompile(`"[^"]*"|'[^']*'|\S+`)

	// VAR=value prefix of a simple command
	assignmentPattern = re2.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)
)

// Prefix commands that run the next word as the program.
var commandWrappers = map[string]bool{
	"env":     true,
	"exec":    true,
	"nohup":   true,
	"command": true,
}

// Shell control operators that separate independent commands.
var segmentSeparators = map[string]bool{
	"&&": true,
	"||": true,
	";":  true,
	"|":  true,
	"&":  true,
}

// Agent CLI flags that consume the next argument.
var valueFlags = map[string]bool{
	"--add-dir":                true,
	"--agents":                 true,
	"--allowedTools":           true,
	"--allowed-tools":          true,
	"--append-system-prompt":   true,
	"--disallowedTools":        true,
	"--disallowed-tools":       true,
	"--fallback-model":         true,
	"--input-format":           true,
	"--max-turns":              true,
	"--mcp-config":             true,
	"--model":                  true,
	"--output-format":          true,
	"--permission-mode":        true,
	"--permission-prompt-tool": true,
	"--session-id":             true,
	"--settings":               true,
	"--system-prompt":          true,
}

// Resolver looks up directive names.
type Resolver interface {
	Resolve(name string) (canonical string, isAlias bool, known bool)
}

// Checker rejects commands that invoke the agent CLI non-interactively with
// an aliased directive.
type Checker struct {
	binary   string
	resolver Resolver
	logger   *logger.Logger
}

// NewChecker creates a Checker for the agent binary name (matched by basename).
func NewChecker(binary string, resolver Resolver, log *logger.Logger) *Checker {
	if log == nil {
		log = logger.Nop()
	}
	return &Checker{
		binary:   filepath.Base(strings.TrimSpace(binary)),
		resolver: resolver,
		logger:   log,
	}
}

// Check scans every shell segment of command. It returns *AliasError for the
// first aliased directive found in a non-interactive invocation. Unknown
// directives are logged and allowed.
func (c *Checker) Check(command string) error {
	if c == nil || c.resolver == nil || c.binary == "" || c.binary == "." {
		return nil
	}

	for _, segment := range splitSegments(tokenize(command)) {
		name, ok := c.directiveInSegment(segment)
		if !ok {
			continue
		}

		canonical, isAlias, known := c.resolver.Resolve(name)
		switch {
		case isAlias:
			return &AliasError{Alias: name, Canonical: canonical}
		case !known:
			c.logger.Warn("unknown directive in scheduled command",
				logger.Field{Key: "directive", Value: "/" + name})
		}
	}
	return nil
}

// directiveInSegment returns the directive name when segment runs the agent
// binary in print mode with a slash-prefixed prompt.
func (c *Checker) directiveInSegment(segment []string) (string, bool) {
	start := c.programIndex(segment)
	if start < 0 {
		return "", false
	}

	printMode := false
	prompt := ""
	args := segment[start+1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-p" || arg == "--print":
			printMode = true
		case arg == "--":
			if prompt == "" && i+1 < len(args) {
				prompt = args[i+1]
			}
			i = len(args)
		case strings.HasPrefix(arg, "--") && strings.Contains(arg, "="):
			// --flag=value
		case valueFlags[arg]:
			i++
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			// boolean flag
		default:
			if prompt == "" {
				prompt = arg
			}
		}
	}

	if !printMode || prompt == "" {
		return "", false
	}
	m := directivePattern.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// programIndex returns the position of the agent binary when it is the
// program the segment runs, or -1. Leading assignments and wrapper commands
// (with their flags) are skipped; the binary as an argument of anything else
// does not count.
func (c *Checker) programIndex(segment []string) int {
	wrapped := false
	for i, tok := range segment {
		switch {
		case assignmentPattern.MatchString(tok):
		case commandWrappers[tok]:
			wrapped = true
		case wrapped && strings.HasPrefix(tok, "-"):
			// env -i, nohup --
		case filepath.Base(tok) == c.binary:
			return i
		default:
			return -1
		}
	}
	return -1
}

func tokenize(command string) []string {
	tokens, err := shellquote.Split(command)
	if err == nil {
		return tokens
	}

	raw := fallbackTokenPattern.FindAllString(command, -1)
	tokens = make([]string, 0, len(raw))
	for _, tok := range raw {
		tokens = append(tokens, strings.Trim(tok, `"'`))
	}
	return tokens
}

// splitSegments breaks tokens at shell control operators. A trailing ";" on
// a word ("cd /tmp;") also ends the segment.
func splitSegments(tokens []string) [][]string {
	var segments [][]string
	var current []string
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, current)
			current = nil
		}
	}

	for _, tok := range tokens {
		if segmentSeparators[tok] {
			flush()
			continue
		}
		if len(tok) > 1 && strings.HasSuffix(tok, ";") {
			current = append(current, strings.TrimSuffix(tok, ";"))
			flush()
			continue
		}
		current = append(current, tok)
	}
	flush()
	return segments
}

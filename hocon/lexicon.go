// FILE: lixenwraith/config/hocon/lexicon.go
package hocon

import "regexp"

// valueStop guards literal tokens: the literal must be followed by the end of
// input or a separator, otherwise the text belongs to a longer bare string.
const valueStop = `\z|[ \],}\r\n\t]`

// rule is one entry of the lexical catalog. pattern is anchored at the cursor;
// stop, when set, must match right after the full pattern match.
type rule struct {
	typ     TokenType
	pattern *regexp.Regexp
	stop    *regexp.Regexp
	value   int // index of the "value" capture group, -1 when absent
}

func newRule(typ TokenType, pattern string, stop string) rule {
	r := rule{
		typ:     typ,
		pattern: regexp.MustCompile(`^(?:` + pattern + `)`),
	}
	if stop != "" {
		r.stop = regexp.MustCompile(`^(?:` + stop + `)`)
	}
	r.value = r.pattern.SubexpIndex("value")
	return r
}

// match tries the rule at offset. It returns the token payload and the offset
// just past the match.
func (r rule) match(content string, offset int) (string, int, bool) {
	rest := content[offset:]
	loc := r.pattern.FindStringSubmatchIndex(rest)
	if loc == nil {
		return "", 0, false
	}

	end := loc[1]
	if r.stop != nil && !r.stop.MatchString(rest[end:]) {
		return "", 0, false
	}

	value := rest[:end]
	if r.value > 0 && loc[2*r.value] >= 0 {
		value = rest[loc[2*r.value]:loc[2*r.value+1]]
	}
	return value, offset + end, true
}

// lexicon is ordered by priority: the first matching rule among the requested
// types wins, so keywords and numbers come before the bare string fallback.
var lexicon = []rule{
	newRule(TokenComment, `(?:#|//).*[\r\n]?`, ""),
	newRule(TokenInclude, `include[ ]*"(?P<value>[^"\r\n]+)"`, ""),

	newRule(TokenKey, `[a-zA-Z0-9_-]+(?:\.[a-zA-Z0-9_-]+)*`, ""),
	newRule(TokenSpace, `[ \r\n\t]+`, ""),

	newRule(TokenAssign, `[:=]`, ""),

	newRule(TokenBeginArray, `\[`, ""),
	newRule(TokenEndArray, `\]`, ""),
	newRule(TokenArraySeparator, `,`, ""),

	newRule(TokenSubstitution, `\$\((?P<value>[\w.-]+)\)`, ""),
	newRule(TokenSubstitution, `\$\{(?P<value>[\w.-]+)\}`, ""),
	newRule(TokenSafeSubstitution, `\$\(\?(?P<value>[\w.-]*)\)`, ""),
	newRule(TokenSafeSubstitution, `\$\{\?(?P<value>[\w.-]*)\}`, ""),

	newRule(TokenBoolean, `(?i:on|off|true|false|yes|no|enabled|disabled)`, valueStop),
	newRule(TokenDecimal, `-?[0-9]+\.[0-9]+`, valueStop),
	newRule(TokenDouble, `-?[0-9]+(?:\.[0-9]+)?[eE][-+]?[0-9]+`, valueStop),
	newRule(TokenNumeric, `-?[0-9]+`, valueStop),
	newRule(TokenString, `"(?P<value>(?:""|[^"])*)"`, valueStop),
	newRule(TokenString, `[^"${}\[\]:=,+#'^?!@*& \r\n\t]+`, valueStop),

	newRule(TokenBeginScope, `\{`, ""),
	newRule(TokenEndScope, `\}`, ""),
}

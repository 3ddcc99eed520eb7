package harness

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/lendwise/landing/models"
)

// Validate reports whether c is well formed. Run performs the same check
// before launching a browser.
func (c *Check) Validate() error { return validate(c) }

// validate rejects a malformed check before a browser is launched, so a typo
// in a selector is reported as INVALID_CHECK instead of a timeout.
func validate(chk *Check) error {
	invalid := func(format string, args ...interface{}) error {
		return models.NewCheckError(models.ErrCodeInvalidCheck, fmt.Sprintf(format, args...), nil)
	}

	if strings.TrimSpace(chk.Name) == "" {
		return invalid("check has no name")
	}
	if strings.TrimSpace(chk.URL) == "" {
		return invalid("check %q has no URL", chk.Name)
	}
	if strings.TrimSpace(chk.Extract.Script) == "" {
		return invalid("check %q has no extract script", chk.Name)
	}

	selectors := map[string]string{}
	if chk.Ready.kind == readySelector {
		selectors["ready"] = chk.Ready.selector
	}
	if chk.Ready.kind == readyCondition && strings.TrimSpace(chk.Ready.js) == "" {
		return invalid("check %q: empty ready condition", chk.Name)
	}
	for i, a := range chk.Interactions {
		where := fmt.Sprintf("action %d (%s)", i, a.Type)
		switch a.Type {
		case ActionClick, ActionHover, ActionDrag:
			if a.Selector == "" {
				return invalid("check %q: %s requires a selector", chk.Name, where)
			}
			selectors[where] = a.Selector
		case ActionWait:
			if a.Selector != "" {
				selectors[where] = a.Selector
			}
		case ActionScroll:
		case ActionEval, ActionUntil:
			if strings.TrimSpace(a.Code) == "" {
				return invalid("check %q: %s requires code", chk.Name, where)
			}
		default:
			return invalid("check %q: unknown action type %q", chk.Name, a.Type)
		}
	}
	for i, sel := range chk.Extract.Require {
		selectors[fmt.Sprintf("require %d", i)] = sel
	}
	for i, s := range chk.Screenshots {
		if s.Path == "" {
			return invalid("check %q: screenshot %d has no path", chk.Name, i)
		}
		if s.Selector != "" {
			selectors[fmt.Sprintf("screenshot %d", i)] = s.Selector
		}
	}
	for i, p := range chk.Probes {
		if p.Name == "" {
			return invalid("check %q: probe %d has no name", chk.Name, i)
		}
		selectors[fmt.Sprintf("probe %q", p.Name)] = p.Selector
	}

	// The browser is the authority on selector syntax. cascadia lags it
	// (:is, :where, :has, :focus-visible, "of S" in nth-child), so a selector
	// it cannot parse only warns; structurally broken ones are rejected.
	for where, sel := range selectors {
		if reason := malformedSelector(sel); reason != "" {
			return invalid("check %q: %s: invalid selector %q: %s", chk.Name, where, sel, reason)
		}
		if _, err := cascadia.ParseGroup(sel); err != nil {
			slog.Warn("selector not understood locally, leaving it to the browser",
				"check", chk.Name,
				"where", where,
				"selector", sel,
				"error", err,
			)
		}
	}

	for _, rt := range chk.BlockResources {
		if !validResourceType(rt) {
			return invalid("check %q: unknown resource type %q", chk.Name, rt)
		}
	}
	return nil
}

// malformedSelector returns why sel cannot be a selector list in any
// browser, or "" if it might be one.
func malformedSelector(sel string) string {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return "empty"
	}

	var stack []rune
	var quote rune
	escaped := false
	for _, r := range sel {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			stack = append(stack, r)
		case r == ')' || r == ']':
			open := '('
			if r == ']' {
				open = '['
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return fmt.Sprintf("unbalanced %q", r)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if quote != 0 {
		return "unterminated string"
	}
	if len(stack) > 0 {
		return fmt.Sprintf("unclosed %q", stack[len(stack)-1])
	}

	if strings.ContainsAny(sel[:1], ">+~,") {
		return "starts with a combinator"
	}
	if strings.ContainsAny(sel[len(sel)-1:], ">+~,") {
		return "ends with a combinator"
	}
	return ""
}

// resolveURL makes a check URL absolute against base.
func resolveURL(base, target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", models.NewCheckError(models.ErrCodeInvalidCheck, fmt.Sprintf("bad URL %q", target), err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return "", models.NewCheckError(models.ErrCodeInvalidCheck, fmt.Sprintf("bad base URL %q", base), err)
	}
	return b.ResolveReference(u).String(), nil
}

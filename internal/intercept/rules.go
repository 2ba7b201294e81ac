package intercept

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/danmuck/protoedit/internal/config"
	"github.com/danmuck/protoedit/internal/jsonvalue"
	"github.com/danmuck/protoedit/internal/logging"
	"github.com/danmuck/protoedit/internal/observability"
	"github.com/danmuck/protoedit/internal/protocol"
	"github.com/danmuck/protoedit/internal/protocol/frame"
)

// RuleInterceptor applies configured rules. It is immutable once built and
// safe for concurrent use.
type RuleInterceptor struct {
	name   string
	rules  []compiledRule
	limits frame.Limits
}

type compiledRule struct {
	label string
	rule  config.Rule
	uriRe *regexp.Regexp
	find  *regexp.Regexp
	patch *jsonvalue.Object
}

// NewRuleInterceptor validates and compiles rules. An empty direction means
// both.
func NewRuleInterceptor(name string, rules []config.Rule, limits frame.Limits) (*RuleInterceptor, error) {
	ri := &RuleInterceptor{
		name:   name,
		rules:  make([]compiledRule, 0, len(rules)),
		limits: limits,
	}
	for i, r := range rules {
		if r.Direction == "" {
			r.Direction = config.DirectionBoth
		}
		if err := config.ValidateRule(r); err != nil {
			return nil, fmt.Errorf("rules[%d] invalid: %w", i, err)
		}
		cr := compiledRule{label: r.Name, rule: r}
		if cr.label == "" {
			cr.label = fmt.Sprintf("rules[%d]", i)
		}
		if r.URIRegex != "" {
			cr.uriRe = regexp.MustCompile(r.URIRegex)
		}
		switch r.Action {
		case config.ActionReplaceRegex:
			cr.find = regexp.MustCompile(r.Find)
		case config.ActionPatch:
			obj, err := jsonvalue.ParseObject([]byte(r.Patch))
			if err != nil {
				return nil, fmt.Errorf("rules[%d] invalid: %w", i, err)
			}
			cr.patch = obj
		}
		ri.rules = append(ri.rules, cr)
	}
	return ri, nil
}

func (ri *RuleInterceptor) Name() string { return ri.name }

func (ri *RuleInterceptor) OnRequest(uri string, cmdID int, b []byte) ([]byte, bool) {
	return ri.handle(Request, uri, cmdID, b)
}

func (ri *RuleInterceptor) OnResponse(uri string, cmdID int, b []byte) ([]byte, bool) {
	return ri.handle(Response, uri, cmdID, b)
}

func (ri *RuleInterceptor) handle(dir Direction, uri string, cmdID int, b []byte) ([]byte, bool) {
	matched := ri.match(dir, uri, cmdID)
	if len(matched) == 0 {
		return b, false
	}
	if !ri.limits.Allow(len(b)) {
		logging.Warnf("intercept.RuleInterceptor.handle skip uri=%q size=%d err=%v", uri, len(b), frame.ErrPacketTooLarge)
		observability.RecordPacket(string(dir), observability.OutcomeError, len(b))
		return b, false
	}

	m, err := protocol.Decode(b)
	if err != nil {
		logging.Warnf("intercept.RuleInterceptor.handle decode uri=%q cmd=%d err=%v", uri, cmdID, err)
		observability.RecordPacket(string(dir), observability.OutcomeError, len(b))
		return b, false
	}

	total := 0
	for _, cr := range matched {
		n := cr.apply(m)
		observability.RecordChanges(string(dir), cr.label, n)
		logging.Debugf("intercept.RuleInterceptor.handle rule=%q uri=%q cmd=%d changes=%d", cr.label, uri, cmdID, n)
		total += n
	}
	if total == 0 {
		observability.RecordPacket(string(dir), observability.OutcomeUnchanged, len(b))
		return b, false
	}

	out, err := m.EncodePacket()
	if err != nil {
		observability.RecordPacket(string(dir), observability.OutcomeError, len(b))
		return b, false
	}
	observability.RecordPacket(string(dir), observability.OutcomeModified, len(out))
	logging.Infof("intercept.RuleInterceptor.handle dir=%s uri=%q cmd=%d changes=%d", dir, uri, cmdID, total)
	return out, true
}

func (ri *RuleInterceptor) match(dir Direction, uri string, cmdID int) []compiledRule {
	var out []compiledRule
	for _, cr := range ri.rules {
		if cr.matches(dir, uri, cmdID) {
			out = append(out, cr)
		}
	}
	return out
}

func (cr compiledRule) matches(dir Direction, uri string, cmdID int) bool {
	if cr.rule.Direction != config.DirectionBoth && cr.rule.Direction != string(dir) {
		return false
	}
	if cr.rule.URI != "" && cr.rule.URI != uri {
		return false
	}
	if cr.uriRe != nil && !cr.uriRe.MatchString(uri) {
		return false
	}
	if len(cr.rule.CmdIDs) > 0 && !slices.Contains(cr.rule.CmdIDs, cmdID) {
		return false
	}
	return true
}

func (cr compiledRule) apply(m *protocol.Message) int {
	switch cr.rule.Action {
	case config.ActionReplace:
		return m.ReplaceLiteral(cr.rule.Find, cr.rule.Replace)
	case config.ActionReplaceRegex:
		return m.ReplaceRegex(cr.find, cr.rule.Replace)
	case config.ActionPatch:
		return m.ApplyView(cr.patch, cr.rule.DeleteMissing)
	}
	return 0
}

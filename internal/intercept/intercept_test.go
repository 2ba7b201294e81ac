package intercept

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/danmuck/protoedit/internal/config"
	"github.com/danmuck/protoedit/internal/protocol/frame"
	"github.com/danmuck/protoedit/internal/testutil/testlog"
)

func packet(text string) []byte {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 150)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	return protowire.AppendBytes(b, []byte(text))
}

func newRules(t *testing.T, rules ...config.Rule) *RuleInterceptor {
	t.Helper()
	ri, err := NewRuleInterceptor(t.Name(), rules, frame.DefaultLimits())
	require.NoError(t, err)
	return ri
}

func TestRuleReplace(t *testing.T) {
	testlog.Start(t)
	ri := newRules(t, config.Rule{
		Direction: config.DirectionRequest,
		URI:       "/user/profile",
		Action:    config.ActionReplace,
		Find:      "alice",
		Replace:   "bob",
	})

	out, ok := ri.OnRequest("/user/profile", 1, packet("alice"))
	require.True(t, ok)
	require.Equal(t, packet("bob"), out)

	_, ok = ri.OnResponse("/user/profile", 1, packet("alice"))
	require.False(t, ok, "direction must match")

	_, ok = ri.OnRequest("/user/other", 1, packet("alice"))
	require.False(t, ok, "uri must match")

	_, ok = ri.OnRequest("/user/profile", 1, packet("carol"))
	require.False(t, ok, "no change means no rewrite")
}

func TestRuleMatchesURIRegexAndCmdID(t *testing.T) {
	testlog.Start(t)
	ri := newRules(t, config.Rule{
		URIRegex: "^/order/",
		CmdIDs:   []int{7, 9},
		Action:   config.ActionReplaceRegex,
		Find:     `order-(\d+)`,
		Replace:  "id-$1",
	})

	out, ok := ri.OnResponse("/order/list", 9, packet("order-42"))
	require.True(t, ok)
	require.Equal(t, packet("id-42"), out)

	_, ok = ri.OnResponse("/order/list", 8, packet("order-42"))
	require.False(t, ok)
	_, ok = ri.OnResponse("/user/order/", 9, packet("order-42"))
	require.False(t, ok)
}

func TestRulePatchKeepsPrefix(t *testing.T) {
	testlog.Start(t)
	ri := newRules(t, config.Rule{
		Action: config.ActionPatch,
		Patch:  `{"1":300}`,
	})

	prefix := []byte{0x00, 0x00, 0x00, 0x2A}
	in := append(append([]byte{}, prefix...), packet("hello")...)
	out, ok := ri.OnRequest("/any", 0, in)
	require.True(t, ok)

	want := protowire.AppendTag(append([]byte{}, prefix...), 1, protowire.VarintType)
	want = protowire.AppendVarint(want, 300)
	want = protowire.AppendTag(want, 2, protowire.BytesType)
	want = protowire.AppendBytes(want, []byte("hello"))
	require.Equal(t, want, out)
}

func TestRulePassesThroughUndecodable(t *testing.T) {
	testlog.Start(t)
	ri := newRules(t, config.Rule{Action: config.ActionReplace, Find: "a", Replace: "b"})

	bad := []byte{0x0B, 0x01} // wire type 3
	out, ok := ri.OnRequest("/x", 0, bad)
	require.False(t, ok)
	require.Equal(t, bad, out)
}

func TestRuleRespectsLimits(t *testing.T) {
	testlog.Start(t)
	ri, err := NewRuleInterceptor("small", []config.Rule{
		{Action: config.ActionReplace, Find: "alice", Replace: "bob"},
	}, frame.Limits{MaxPacketBytes: 4})
	require.NoError(t, err)

	_, ok := ri.OnRequest("/x", 0, packet("alice"))
	require.False(t, ok)
}

func TestNewRuleInterceptorRejectsInvalid(t *testing.T) {
	_, err := NewRuleInterceptor("bad", []config.Rule{
		{Action: config.ActionReplace, Find: "a"},
		{Action: config.ActionReplaceRegex, Find: "("},
	}, frame.DefaultLimits())
	require.ErrorIs(t, err, config.ErrInvalidRule)
	require.Contains(t, err.Error(), "rules[1] invalid")
}

func TestChainFeedsOutputForward(t *testing.T) {
	testlog.Start(t)
	first := newRules(t, config.Rule{Action: config.ActionReplace, Find: "alice", Replace: "bob"})
	second := newRules(t, config.Rule{Action: config.ActionReplace, Find: "bob", Replace: "carol"})
	miss := newRules(t, config.Rule{Action: config.ActionReplace, Find: "dave", Replace: "erin"})

	chain := Chain{first, miss, nil, second}
	out, ok := chain.OnRequest("/x", 0, packet("alice"))
	require.True(t, ok)
	require.Equal(t, packet("carol"), out)

	out, ok = Handle(chain, Response, "/x", 0, packet("frank"))
	require.False(t, ok)
	require.Equal(t, packet("frank"), out)
}

func TestRegisteredChainDispatches(t *testing.T) {
	testlog.Start(t)
	first, err := NewRuleInterceptor("registry-first", []config.Rule{
		{Action: config.ActionReplace, Find: "alice", Replace: "bob"},
	}, frame.DefaultLimits())
	require.NoError(t, err)
	second, err := NewRuleInterceptor("registry-second", []config.Rule{
		{Action: config.ActionReplace, Find: "bob", Replace: "carol"},
	}, frame.DefaultLimits())
	require.NoError(t, err)

	Register(first)
	Register(second)
	t.Cleanup(func() {
		Unregister(first.Name())
		Unregister(second.Name())
	})

	got, ok := Get(first.Name())
	require.True(t, ok)
	require.Same(t, first, got)

	var names []string
	for _, i := range Registered() {
		if i.Name() == first.Name() || i.Name() == second.Name() {
			names = append(names, i.Name())
		}
	}
	require.Equal(t, []string{"registry-first", "registry-second"}, names)

	// Replacing keeps the position in the chain.
	Register(first)
	out, ok := Handle(Registered(), Request, "/x", 0, packet("alice"))
	require.True(t, ok)
	require.Equal(t, packet("carol"), out)

	Unregister(first.Name())
	_, ok = Get(first.Name())
	require.False(t, ok)
	out, ok = Handle(Registered(), Request, "/x", 0, packet("alice"))
	require.False(t, ok)
	require.Equal(t, packet("alice"), out)
}

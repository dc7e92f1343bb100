package node

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notf-ui/notf/errutil"
	"github.com/notf-ui/notf/property"
)

// fakeRegistry implements Registrar for tests, with the same name
// disambiguation contract as the graph.
type fakeRegistry struct {
	byUUID   map[uuid.UUID]Node
	names    map[string]uuid.UUID
	nameOf   map[uuid.UUID]string
	counters map[string]int
	dirty    map[uuid.UUID]int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		byUUID:   make(map[uuid.UUID]Node),
		names:    make(map[string]uuid.UUID),
		nameOf:   make(map[uuid.UUID]string),
		counters: make(map[string]int),
		dirty:    make(map[uuid.UUID]int),
	}
}

func (r *fakeRegistry) Register(n Node) error {
	if _, taken := r.byUUID[n.UUID()]; taken {
		return &errutil.NotUniqueError{UUID: n.UUID()}
	}
	r.byUUID[n.UUID()] = n
	return nil
}

func (r *fakeRegistry) Unregister(n Node) {
	if name, ok := r.nameOf[n.UUID()]; ok {
		delete(r.names, name)
		delete(r.nameOf, n.UUID())
	}
	delete(r.byUUID, n.UUID())
}

func (r *fakeRegistry) Rename(n Node, requested string) string {
	if old, ok := r.nameOf[n.UUID()]; ok {
		delete(r.names, old)
	}
	name := requested
	for {
		if holder, taken := r.names[name]; !taken || holder == n.UUID() {
			break
		}
		r.counters[requested]++
		name = fmt.Sprintf("%s_%02d", requested, r.counters[requested])
	}
	r.names[name] = n.UUID()
	r.nameOf[n.UUID()] = name
	return name
}

func (r *fakeRegistry) MarkDirty(n Node) {
	r.dirty[n.UUID()]++
}

// newTree builds a registered root for tests.
func newTree(t *testing.T) (*fakeRegistry, *Root) {
	t.Helper()
	reg := newFakeRegistry()
	root, err := NewRoot(reg)
	require.NoError(t, err)
	return reg, root
}

func TestAttachAssignsIdentity(t *testing.T) {
	reg, root := newTree(t)

	child := NewRunTime("")
	h, err := Attach(root, child)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, child.UUID())
	assert.Equal(t, Mnemonic(child.UUID()), child.Name())
	assert.Contains(t, reg.byUUID, child.UUID())
	assert.Equal(t, child.UUID(), h.UUID())

	parent, err := child.Parent().Get()
	require.NoError(t, err)
	assert.Equal(t, root.UUID(), parent.UUID())
}

func TestAttachKeepsInsertionOrder(t *testing.T) {
	_, root := newTree(t)

	for _, name := range []string{"a", "b", "c"} {
		_, err := Attach(root, NewRunTime(name))
		require.NoError(t, err)
	}

	require.Equal(t, 3, root.ChildCount())
	for i, want := range []string{"a", "b", "c"} {
		h, err := root.Child(i)
		require.NoError(t, err)
		name, err := h.Name()
		require.NoError(t, err)
		assert.Equal(t, want, name)
	}

	_, err := root.Child(3)
	var verr *errutil.ValueError
	assert.ErrorAs(t, err, &verr)
}

func TestAttachRejectsFinalizedParent(t *testing.T) {
	_, root := newTree(t)
	require.NoError(t, root.Finalize())

	_, err := Attach(root, NewRunTime("x"))
	assert.ErrorContains(t, err, "finalized")
}

func TestAttachRejectsSecondParent(t *testing.T) {
	_, root := newTree(t)
	child := NewRunTime("x")
	_, err := Attach(root, child)
	require.NoError(t, err)

	other := NewRunTime("y")
	_, err = Attach(root, other)
	require.NoError(t, err)
	_, err = Attach(other, child)
	assert.ErrorContains(t, err, "already has a parent")
}

func TestAttachRegistersPrebuiltSubtree(t *testing.T) {
	reg, root := newTree(t)

	mid := NewRunTime("mid")
	leaf := NewRunTime("leaf")
	_, err := Attach(mid, leaf)
	require.NoError(t, err)

	_, err = Attach(root, mid)
	require.NoError(t, err)

	assert.Contains(t, reg.byUUID, mid.UUID())
	assert.Contains(t, reg.byUUID, leaf.UUID())
}

// failingRegistry rejects the Nth registration, everything else passes
// through.
type failingRegistry struct {
	*fakeRegistry
	failAt int
	calls  int
}

func (r *failingRegistry) Register(n Node) error {
	r.calls++
	if r.calls == r.failAt {
		return fmt.Errorf("registry unavailable")
	}
	return r.fakeRegistry.Register(n)
}

func TestAttachRollsBackPartialRegistration(t *testing.T) {
	reg := newFakeRegistry()
	freg := &failingRegistry{fakeRegistry: reg, failAt: 3}
	root, err := NewRoot(freg)
	require.NoError(t, err)

	mid := NewRunTime("mid")
	leaf := NewRunTime("leaf")
	_, err = Attach(mid, leaf)
	require.NoError(t, err)

	// root and mid register, leaf fails; mid's registration must unwind.
	_, err = Attach(root, mid)
	require.ErrorContains(t, err, "registry unavailable")
	assert.NotContains(t, reg.byUUID, mid.UUID())
	assert.NotContains(t, reg.names, "mid")
	assert.Equal(t, 0, root.ChildCount())
	assert.False(t, mid.Parent().Valid())

	// The subtree stays intact and attaches once the registry recovers.
	freg.failAt = 0
	h, err := Attach(root, mid)
	require.NoError(t, err)
	assert.True(t, h.Valid())
	assert.Contains(t, reg.byUUID, mid.UUID())
	assert.Contains(t, reg.byUUID, leaf.UUID())
}

func TestUUIDsAreUnique(t *testing.T) {
	_, root := newTree(t)
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 16; i++ {
		n := NewRunTime("")
		_, err := Attach(root, n)
		require.NoError(t, err)
		assert.False(t, seen[n.UUID()])
		seen[n.UUID()] = true
	}
}

func TestFinalizeIsExactlyOnce(t *testing.T) {
	_, root := newTree(t)
	n := NewRunTime("x")
	_, err := Attach(root, n)
	require.NoError(t, err)

	require.NoError(t, n.Finalize())
	assert.True(t, n.IsFinalized())
	assert.Error(t, n.Finalize())
}

func TestPropertySchemaClosesOnFinalize(t *testing.T) {
	_, root := newTree(t)
	n := NewRunTime("x")
	_, err := Attach(root, n)
	require.NoError(t, err)

	require.NoError(t, n.AddProperty(property.New(property.Decl[int]{Name: "width"})))
	err = n.AddProperty(property.New(property.Decl[int]{Name: "width"}))
	assert.ErrorContains(t, err, "duplicate property name")

	require.NoError(t, n.Finalize())
	err = n.AddProperty(property.New(property.Decl[int]{Name: "height"}))
	assert.ErrorContains(t, err, "finalized")

	got, err := n.Property("width")
	require.NoError(t, err)
	assert.Equal(t, "width", got.Name())
	_, err = n.Property("height")
	assert.Error(t, err)
}

func TestDirtyTracking(t *testing.T) {
	reg, root := newTree(t)
	n := NewRunTime("x")
	require.NoError(t, n.AddProperty(property.New(property.Decl[int]{Name: "width"})))
	_, err := Attach(root, n)
	require.NoError(t, err)

	assert.False(t, n.IsDirty())

	ph, err := PropertyHandleOf[int](n, "width")
	require.NoError(t, err)
	require.NoError(t, ph.Set(10))

	assert.True(t, n.IsDirty())
	assert.Equal(t, 1, reg.dirty[n.UUID()])

	n.ClearModifiedData()
	assert.False(t, n.IsDirty())
	v, err := ph.Get()
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestHandleExpiresWithSubtree(t *testing.T) {
	reg, root := newTree(t)
	child := NewRunTime("child")
	grand := NewRunTime("grand")
	h, err := Attach(root, child)
	require.NoError(t, err)
	gh, err := Attach(child, grand)
	require.NoError(t, err)

	root.ClearChildren()

	var expired *errutil.HandleExpiredError
	_, err = h.Name()
	require.ErrorAs(t, err, &expired)
	assert.Equal(t, child.UUID(), expired.UUID)
	_, err = gh.Get()
	assert.ErrorAs(t, err, &expired)

	assert.NotContains(t, reg.byUUID, child.UUID())
	assert.NotContains(t, reg.byUUID, grand.UUID())
	assert.Equal(t, 0, root.ChildCount())
}

func TestRemoveChildLeavesSiblings(t *testing.T) {
	_, root := newTree(t)
	a := NewRunTime("a")
	b := NewRunTime("b")
	ha, err := Attach(root, a)
	require.NoError(t, err)
	hb, err := Attach(root, b)
	require.NoError(t, err)

	require.NoError(t, root.RemoveChild(ha))
	assert.False(t, ha.Valid())
	assert.True(t, hb.Valid())
	assert.Equal(t, 1, root.ChildCount())

	assert.Error(t, root.RemoveChild(ha))
}

func TestPropertyHandleExpiresWithNode(t *testing.T) {
	_, root := newTree(t)
	n := NewRunTime("x")
	require.NoError(t, n.AddProperty(property.New(property.Decl[int]{Name: "width"})))
	h, err := Attach(root, n)
	require.NoError(t, err)

	ph, err := PropertyHandleOf[int](n, "width")
	require.NoError(t, err)
	require.NoError(t, root.RemoveChild(h))

	var expired *errutil.HandleExpiredError
	assert.ErrorAs(t, ph.Set(1), &expired)
}

func TestTypedHandle(t *testing.T) {
	_, root := newTree(t)
	n := NewRunTime("x")
	h, err := Attach(root, n)
	require.NoError(t, err)

	th, err := Typed[*RunTime](h)
	require.NoError(t, err)
	got, err := th.Get()
	require.NoError(t, err)
	assert.Same(t, n, got)

	_, err = Typed[*Root](h)
	var cast *errutil.NarrowCastError
	assert.ErrorAs(t, err, &cast)
}

func TestMnemonicIsDeterministic(t *testing.T) {
	id := uuid.MustParse("3b1f8a52-0000-0000-0000-000000000000")
	assert.Equal(t, Mnemonic(id), Mnemonic(id))
	assert.Len(t, Mnemonic(id), 8)
}

// Parenting policy fixtures.

type strictPanel struct{ Base }

func newStrictPanel() *strictPanel {
	p := &strictPanel{}
	p.Init(p)
	return p
}

func (p *strictPanel) ForbiddenChildTypes() []reflect.Type {
	return []reflect.Type{TypeOf[*floater]()}
}

type floater struct{ Base }

func newFloater() *floater {
	f := &floater{}
	f.Init(f)
	return f
}

type caption struct{ Base }

func newCaption() *caption {
	c := &caption{}
	c.Init(c)
	return c
}

func (c *caption) AllowedParentTypes() []reflect.Type {
	return []reflect.Type{TypeOf[*strictPanel]()}
}

func TestForbiddenChildIsRejected(t *testing.T) {
	_, root := newTree(t)
	panel := newStrictPanel()
	_, err := Attach(root, panel)
	require.NoError(t, err)

	_, err = Attach(panel, newFloater())
	var invalid *errutil.InvalidParentError
	require.ErrorAs(t, err, &invalid)

	_, err = Attach(panel, NewRunTime("ok"))
	assert.NoError(t, err)
}

func TestAllowedParentListBindsChild(t *testing.T) {
	_, root := newTree(t)
	panel := newStrictPanel()
	_, err := Attach(root, panel)
	require.NoError(t, err)

	_, err = Attach(panel, newCaption())
	require.NoError(t, err)

	_, err = Attach(root, newCaption())
	var invalid *errutil.InvalidParentError
	assert.ErrorAs(t, err, &invalid)
}

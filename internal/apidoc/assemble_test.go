package apidoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/docmake/internal/pysrc"
)

func memberNames(ms []Member) []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	return names
}

func TestAssembler(t *testing.T) {
	t.Parallel()

	// def helper(): ...
	// class B:
	//     def __init__(self): ...
	//     def m1(self): ...
	//     def _hidden(self): ...
	// LIMIT = 3
	// _cache = {}
	mod := &pysrc.Module{
		Name:   "pkg.b",
		Source: "pkg/b.py",
		Doc:    "Module b.",
		Items: []*pysrc.Item{
			{Kind: pysrc.FunctionItem, Name: "helper", Signature: "def helper()", Line: 1},
			{
				Kind:      pysrc.ClassItem,
				Name:      "B",
				Signature: "class B",
				Doc:       "The B class.",
				Line:      4,
				Members: []*pysrc.Item{
					{Kind: pysrc.MethodItem, Name: "__init__", Signature: "def __init__(self)", Line: 5},
					{Kind: pysrc.MethodItem, Name: "m1", Signature: "def m1(self)", Line: 6},
					{Kind: pysrc.MethodItem, Name: "_hidden", Signature: "def _hidden(self)", Line: 7},
				},
			},
			{Kind: pysrc.DataItem, Name: "LIMIT", Signature: "LIMIT = 3", Line: 9},
			{Kind: pysrc.DataItem, Name: "_cache", Signature: "_cache = {}", Line: 10},
		},
	}

	tests := []struct {
		desc      string
		give      Assembler
		want      []string // member names of the module descriptor
		wantClass []string // member names of the class descriptor, if any
	}{
		{
			desc: "source order",
			want: []string{"helper", "B", "B.__init__", "B.m1", "LIMIT"},
		},
		{
			desc: "module first",
			give: Assembler{ModuleFirst: true},
			want: []string{"helper", "LIMIT", "B", "B.__init__", "B.m1"},
		},
		{
			desc: "private",
			give: Assembler{Private: true},
			want: []string{"helper", "B", "B.__init__", "B.m1", "B._hidden", "LIMIT", "_cache"},
		},
		{
			desc:      "separate classes",
			give:      Assembler{ModuleFirst: true, SeparateClasses: true},
			want:      []string{"helper", "LIMIT", "B"},
			wantClass: []string{"__init__", "m1"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			descs := tt.give.Assemble(mod)
			require.NotEmpty(t, descs)

			page := descs[0]
			assert.Equal(t, "pkg.b", page.Name)
			assert.Equal(t, ModuleKind, page.Kind)
			assert.Equal(t, "Module b.", page.Doc)
			assert.Equal(t, tt.give.ModuleFirst, page.ModuleFirst)
			assert.Equal(t, tt.want, memberNames(page.Members))

			if tt.wantClass == nil {
				assert.Len(t, descs, 1)
				assert.Empty(t, page.Classes)
				return
			}

			require.Len(t, descs, 2)
			cls := descs[1]
			assert.Equal(t, "pkg.b.B", cls.Name)
			assert.Equal(t, ClassKind, cls.Kind)
			assert.Equal(t, "class B", cls.Signature)
			assert.Equal(t, "The B class.", cls.Doc)
			assert.Equal(t, []string{"pkg.b.B"}, page.Classes)
			assert.Equal(t, tt.wantClass, memberNames(cls.Members))
		})
	}
}

func TestAssembler_memberKinds(t *testing.T) {
	t.Parallel()

	mod := &pysrc.Module{
		Name: "m",
		Items: []*pysrc.Item{
			{Kind: pysrc.FunctionItem, Name: "f"},
			{Kind: pysrc.DataItem, Name: "X"},
			{
				Kind: pysrc.ClassItem,
				Name: "C",
				Members: []*pysrc.Item{
					{Kind: pysrc.MethodItem, Name: "run"},
					{Kind: pysrc.PropertyItem, Name: "size"},
					{Kind: pysrc.PropertyItem, Name: "size"}, // setter
					{Kind: pysrc.ClassItem, Name: "Inner"},
				},
			},
		},
	}

	descs := new(Assembler).Assemble(mod)
	require.Len(t, descs, 1)

	got := make(map[string]MemberKind)
	for _, m := range descs[0].Members {
		got[m.Name] = m.Kind
	}
	assert.Equal(t, map[string]MemberKind{
		"f":       FunctionMember,
		"X":       DataMember,
		"C":       ClassMember,
		"C.run":   MethodMember,
		"C.size":  PropertyMember,
		"C.Inner": ClassMember,
	}, got)
	assert.Len(t, descs[0].Members, 6, "duplicate property must be dropped")
}

func TestDescriptor_Title(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give Descriptor
		want string
	}{
		{Descriptor{Name: "rsoft_cad", Kind: ModuleKind, Package: true}, "rsoft_cad package"},
		{Descriptor{Name: "rsoft_cad.utils", Kind: ModuleKind}, "rsoft_cad.utils module"},
		{Descriptor{Name: "rsoft_cad.lantern.BaseLantern", Kind: ClassKind}, "rsoft_cad.lantern.BaseLantern class"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.give.Title(), "%v", tt.give.Name)
	}
}

func TestDescriptor_Synopsis(t *testing.T) {
	t.Parallel()

	d := Descriptor{Doc: "Build photonic\nlanterns.\n\nMore detail here."}
	assert.Equal(t, "Build photonic lanterns.", d.Synopsis())
	assert.Empty(t, new(Descriptor).Synopsis())
}

func TestDescriptor_Synopsis_markdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give string
		want string
	}{
		{
			name: "link",
			give: "Module b. See [a](api:pkg.a).",
			want: "Module b. See a.",
		},
		{
			name: "emphasis and code",
			give: "Compute the\n*core* radius of a `fiber`.",
			want: "Compute the core radius of a fiber.",
		},
		{
			name: "autolink",
			give: "Details at <https://example.com>.",
			want: "Details at https://example.com.",
		},
		{
			name: "plain",
			give: "Nothing to strip.",
			want: "Nothing to strip.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := Descriptor{Doc: tt.give + "\n\nMore."}
			assert.Equal(t, tt.want, d.Synopsis())
		})
	}
}

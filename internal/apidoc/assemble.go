package apidoc

import (
	"strings"

	"go.abhg.dev/docmake/internal/pysrc"
)

// Assembler turns parsed Python modules into descriptors.
//
// The zero value documents public members in source order
// with classes inlined into their module's page.
type Assembler struct {
	// ModuleFirst places module-level functions and data
	// before classes and their members.
	// Otherwise members appear in source order.
	ModuleFirst bool

	// SeparateClasses gives each class its own descriptor.
	// The module page keeps an entry for the class
	// but not for its members.
	SeparateClasses bool

	// Private includes members whose names start with an underscore.
	// __init__ is always included.
	Private bool
}

// Assemble builds descriptors for a module.
// The first descriptor is always the module's own.
// It's followed by class descriptors if SeparateClasses is set.
func (a *Assembler) Assemble(mod *pysrc.Module) []*Descriptor {
	page := &Descriptor{
		Name:        mod.Name,
		Kind:        ModuleKind,
		Package:     mod.Package,
		Source:      mod.Source,
		ModuleFirst: a.ModuleFirst,
		Doc:         mod.Doc,
	}
	descs := []*Descriptor{page}

	var first, rest []Member // first holds module-level members if ModuleFirst
	for _, item := range mod.Items {
		if !a.documented(item.Name) {
			continue
		}

		if item.Kind != pysrc.ClassItem {
			m := memberOf(item, "")
			if a.ModuleFirst {
				first = append(first, m)
			} else {
				rest = append(rest, m)
			}
			continue
		}

		rest = append(rest, memberOf(item, ""))
		if a.SeparateClasses {
			cls := &Descriptor{
				Name:        mod.Name + "." + item.Name,
				Kind:        ClassKind,
				Source:      mod.Source,
				Signature:   item.Signature,
				ModuleFirst: a.ModuleFirst,
				Doc:         item.Doc,
				Members:     a.classMembers(item, ""),
			}
			page.Classes = append(page.Classes, cls.Name)
			descs = append(descs, cls)
		} else {
			rest = append(rest, a.classMembers(item, item.Name+".")...)
		}
	}

	page.Members = dedupe(append(first, rest...))
	return descs
}

func (a *Assembler) classMembers(cls *pysrc.Item, prefix string) []Member {
	var members []Member
	for _, item := range cls.Members {
		if !a.documented(item.Name) {
			continue
		}
		members = append(members, memberOf(item, prefix))
	}
	return dedupe(members)
}

func (a *Assembler) documented(name string) bool {
	if a.Private || name == "__init__" {
		return true
	}
	return !strings.HasPrefix(name, "_")
}

func memberOf(item *pysrc.Item, prefix string) Member {
	return Member{
		Name:      prefix + item.Name,
		Kind:      memberKind(item.Kind),
		Signature: item.Signature,
		Doc:       item.Doc,
		Line:      item.Line,
	}
}

func memberKind(k pysrc.ItemKind) MemberKind {
	switch k {
	case pysrc.FunctionItem:
		return FunctionMember
	case pysrc.ClassItem:
		return ClassMember
	case pysrc.MethodItem:
		return MethodMember
	case pysrc.PropertyItem:
		return PropertyMember
	default:
		return DataMember
	}
}

// dedupe drops repeated member names, keeping the first.
// Property setters and overloads produce these.
func dedupe(members []Member) []Member {
	if len(members) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(members))
	out := members[:0]
	for _, m := range members {
		if _, ok := seen[m.Name]; ok {
			continue
		}
		seen[m.Name] = struct{}{}
		out = append(out, m)
	}
	return out
}

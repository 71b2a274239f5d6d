package mapping

import (
	"reflect"

	"github.com/jmoiron/sqlx/reflectx"
)

// DefaultTag is the struct tag consulted for column names.
const DefaultTag = "db"

// Member is one exported data member of a struct type.
type Member struct {
	Name   string       // Mapped column name (tag value or Go name)
	GoName string       // Go field name
	Type   reflect.Type // Declared field type
	Index  []int        // Field index path, including embedded parents
}

// MemberLister enumerates a type's data members in declared order.
type MemberLister interface {
	Members(t reflect.Type) []Member
}

// ReflectLister implements MemberLister over reflectx struct maps.
// Embedded structs without a tag are flattened in place; fields tagged "-"
// and unexported fields are skipped.
//
// Thread-safety: reflectx.Mapper caches type maps under its own lock, so a
// ReflectLister is safe for concurrent use.
type ReflectLister struct {
	mapper *reflectx.Mapper
}

// NewLister creates a ReflectLister reading column names from tag.
// Untagged fields keep their Go name.
func NewLister(tag string) *ReflectLister {
	return &ReflectLister{
		mapper: reflectx.NewMapperFunc(tag, func(s string) string { return s }),
	}
}

// DefaultLister reads the `db` tag.
var DefaultLister MemberLister = NewLister(DefaultTag)

// Members returns the exported members of t in declared order.
// Pointer types are dereferenced; non-struct types have no members.
func (l *ReflectLister) Members(t reflect.Type) []Member {
	if t == nil {
		return nil
	}
	t = reflectx.Deref(t)
	if t.Kind() != reflect.Struct {
		return nil
	}

	sm := l.mapper.TypeMap(t)
	var members []Member
	collectMembers(sm.Tree.Children, &members)
	return members
}

func collectMembers(children []*reflectx.FieldInfo, out *[]Member) {
	for _, fi := range children {
		if fi == nil {
			continue
		}
		if fi.Embedded {
			collectMembers(fi.Children, out)
			continue
		}
		*out = append(*out, Member{
			Name:   fi.Name,
			GoName: fi.Field.Name,
			Type:   fi.Field.Type,
			Index:  fi.Index,
		})
	}
}

// Lookup finds a member by mapped name or Go name.
// Mapped names win when both match different members.
func Lookup(members []Member, name string) (Member, bool) {
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}
	for _, m := range members {
		if m.GoName == name {
			return m, true
		}
	}
	return Member{}, false
}

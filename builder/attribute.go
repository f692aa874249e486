package builder

import (
	"strings"

	"github.com/sghaida/taskdsl/schema"
	"github.com/sghaida/taskdsl/taskdef"
)

// Framework names the types attribute mapping depends on.
type Framework struct {
	// ReferenceType is the task definition type id of framework references.
	ReferenceType string
	// PathType is the qualified generated type path references point at.
	PathType string
}

// MapAttribute decides how an attribute is rendered:
//
//	primitive type                       -> passed through
//	reference type named "refid"         -> reference to owner
//	reference type named "*pathref"      -> reference to the path type
//	anything else                        -> string
//
// owner is the qualified generated type of the definition declaring attr.
func MapAttribute(attr taskdef.Attribute, owner string, fw Framework) schema.AttributeDescriptor {
	out := schema.AttributeDescriptor{Name: attr.Name, Kind: schema.KindString, Type: "string"}
	switch {
	case taskdef.IsPrimitive(attr.Type):
		out.Kind, out.Type = schema.KindPrimitive, attr.Type
	case attr.Type == fw.ReferenceType && attr.Name == "refid":
		out.Kind, out.Type = schema.KindOwnerRef, owner
	case attr.Type == fw.ReferenceType && strings.HasSuffix(strings.ToLower(attr.Name), "pathref"):
		out.Kind, out.Type = schema.KindPathRef, fw.PathType
	}
	return out
}

// MapAttributes maps every attribute of def in declaration order.
func MapAttributes(def *taskdef.TaskDefinition, owner string, fw Framework) []schema.AttributeDescriptor {
	out := make([]schema.AttributeDescriptor, 0, len(def.Attributes))
	for _, a := range def.Attributes {
		out = append(out, MapAttribute(a, owner, fw))
	}
	return out
}

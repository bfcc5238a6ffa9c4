package types

// LifecyclePolicy is a CloudFormation DeletionPolicy / UpdateReplacePolicy tag.
type LifecyclePolicy string

const (
	PolicyDelete               LifecyclePolicy = "Delete"
	PolicyRetain               LifecyclePolicy = "Retain"
	PolicySnapshot             LifecyclePolicy = "Snapshot"
	PolicyRetainExceptOnCreate LifecyclePolicy = "RetainExceptOnCreate"
)

// ResourceDeclaration is one typed resource within a synthesized stack.
// It is built once from the parsed template and read-only during
// evaluation.
type ResourceDeclaration struct {
	LogicalID           string
	Kind                string
	Properties          Value
	DeletionPolicy      LifecyclePolicy
	UpdateReplacePolicy LifecyclePolicy
}

// NewResourceDeclaration builds a declaration with the CloudFormation
// default lifecycle policies applied.
func NewResourceDeclaration(logicalID, kind string, properties Value) ResourceDeclaration {
	return ResourceDeclaration{
		LogicalID:           logicalID,
		Kind:                kind,
		Properties:          properties,
		DeletionPolicy:      PolicyDelete,
		UpdateReplacePolicy: PolicyDelete,
	}
}

// Prop returns the named property, or Absent.
func (r ResourceDeclaration) Prop(name string) Value {
	return r.Properties.Get(name)
}

// HasProperties reports whether the declaration carries a non-empty
// Properties section.
func (r ResourceDeclaration) HasProperties() bool {
	return r.Properties.Truthy()
}

package schema

import (
	"fmt"
	"strings"

	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"

	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// builtinDirectives are consumed by the lowering itself; every other field
// directive is treated as a qualifier.
var builtinDirectives = map[string]bool{
	"codecgen":  true,
	"extends":   true,
	"alias":     true,
	"json":      true,
	"default":   true,
	"settable":  true,
	"transient": true,
	"private":   true,
	"internal":  true,
	"abstract":  true,
	"sealed":    true,
}

// ParseSchema parses a .codec.gql document (after preprocessing) into our
// Schema model
func ParseSchema(input string) (*Schema, error) {
	preprocessed := PreprocessIDL(input)

	doc, report := astparser.ParseGraphqlDocumentString(preprocessed)
	if report.HasErrors() {
		return nil, fmt.Errorf("failed to parse schema: %v", report)
	}

	schema := &Schema{
		Types:      []TypeDef{},
		Aliases:    []AliasDef{},
		Qualifiers: []QualifierDef{},
	}

	for i := range doc.RootNodes {
		node := &doc.RootNodes[i]
		switch node.Kind {
		case ast.NodeKindObjectTypeDefinition:
			if err := parseObjectType(&doc, node.Ref, schema); err != nil {
				return nil, err
			}
		case ast.NodeKindInterfaceTypeDefinition:
			parseInterfaceType(&doc, node.Ref, schema)
		case ast.NodeKindEnumTypeDefinition:
			parseEnumType(&doc, node.Ref, schema)
		case ast.NodeKindScalarTypeDefinition:
			if err := parseScalarType(&doc, node.Ref, schema); err != nil {
				return nil, err
			}
		case ast.NodeKindDirectiveDefinition:
			parseDirectiveDefinition(&doc, node.Ref, schema)
		}
	}

	return schema, nil
}

func parseObjectType(doc *ast.Document, ref int, schema *Schema) error {
	typeDef := doc.ObjectTypeDefinitions[ref]
	typeName := doc.Input.ByteSliceString(typeDef.Name)

	// _Schema carries the @codecgen file metadata
	if typeName == "_Schema" {
		return parseFileMetadata(doc, typeDef, schema)
	}

	def := TypeDef{
		Name:   typeName,
		Doc:    getDescription(doc, typeDef.Description),
		Kind:   TypeKindClass,
		Fields: []Field{},
	}

	for _, directiveRef := range typeDef.Directives.Refs {
		directive := doc.Directives[directiveRef]
		switch doc.Input.ByteSliceString(directive.Name) {
		case "abstract":
			def.Abstract = true
		case "sealed":
			def.Sealed = true
		case "internal":
			def.Internal = true
		case "extends":
			args := parseDirectiveArgs(doc, directive)
			if base := args["base"]; base != "" {
				def.Extends = append(def.Extends, base)
			}
		}
	}

	for _, fieldRef := range typeDef.FieldsDefinition.Refs {
		field, err := parseField(doc, fieldRef)
		if err != nil {
			return fmt.Errorf("type %s: %w", typeName, err)
		}
		def.Fields = append(def.Fields, field)
	}

	schema.Types = append(schema.Types, def)
	return nil
}

func parseInterfaceType(doc *ast.Document, ref int, schema *Schema) {
	ifaceDef := doc.InterfaceTypeDefinitions[ref]

	def := TypeDef{
		Name: doc.Input.ByteSliceString(ifaceDef.Name),
		Doc:  getDescription(doc, ifaceDef.Description),
		Kind: TypeKindInterface,
	}
	for _, fieldRef := range ifaceDef.FieldsDefinition.Refs {
		if field, err := parseField(doc, fieldRef); err == nil {
			def.Fields = append(def.Fields, field)
		}
	}
	schema.Types = append(schema.Types, def)
}

func parseEnumType(doc *ast.Document, ref int, schema *Schema) {
	enumDef := doc.EnumTypeDefinitions[ref]
	schema.Types = append(schema.Types, TypeDef{
		Name: doc.Input.ByteSliceString(enumDef.Name),
		Doc:  getDescription(doc, enumDef.Description),
		Kind: TypeKindEnum,
	})
}

func parseScalarType(doc *ast.Document, ref int, schema *Schema) error {
	scalarDef := doc.ScalarTypeDefinitions[ref]
	name := doc.Input.ByteSliceString(scalarDef.Name)

	alias := AliasDef{Name: name}
	hasAlias := false
	for _, directiveRef := range scalarDef.Directives.Refs {
		directive := doc.Directives[directiveRef]
		directiveName := doc.Input.ByteSliceString(directive.Name)
		if directiveName == "alias" {
			args := parseDirectiveArgs(doc, directive)
			of := args["of"]
			if of == "" {
				return fmt.Errorf("scalar %s: @alias needs an \"of\" argument", name)
			}
			alias.Of = parseTypeString(of)
			hasAlias = true
			continue
		}
		if !builtinDirectives[directiveName] {
			alias.Qualifiers = append(alias.Qualifiers, parseQualifier(doc, directive))
		}
	}
	if !hasAlias {
		// A bare scalar declaration introduces an opaque named type, which
		// needs no alias entry.
		return nil
	}
	schema.Aliases = append(schema.Aliases, alias)
	return nil
}

func parseDirectiveDefinition(doc *ast.Document, ref int, schema *Schema) {
	dirDef := doc.DirectiveDefinitions[ref]
	name := doc.Input.ByteSliceString(dirDef.Name)
	if builtinDirectives[name] {
		return
	}
	schema.Qualifiers = append(schema.Qualifiers, QualifierDef{
		Name:    name,
		OnField: dirDef.DirectiveLocations.Get(ast.TypeSystemDirectiveLocationFieldDefinition),
	})
}

func parseFileMetadata(doc *ast.Document, typeDef ast.ObjectTypeDefinition, schema *Schema) error {
	for _, fieldRef := range typeDef.FieldsDefinition.Refs {
		fieldDef := doc.FieldDefinitions[fieldRef]
		for _, directiveRef := range fieldDef.Directives.Refs {
			directive := doc.Directives[directiveRef]
			if doc.Input.ByteSliceString(directive.Name) == "codecgen" {
				args := parseDirectiveArgs(doc, directive)
				schema.Meta.Package = args["package"]
				schema.Meta.Version = args["version"]
				return nil
			}
		}
	}
	return nil
}

func parseField(doc *ast.Document, fieldRef int) (Field, error) {
	fieldDef := doc.FieldDefinitions[fieldRef]

	field := Field{
		Name: doc.Input.ByteSliceString(fieldDef.Name),
		Doc:  getDescription(doc, fieldDef.Description),
		Type: typeRefFromAST(doc, fieldDef.Type),
	}

	for _, directiveRef := range fieldDef.Directives.Refs {
		directive := doc.Directives[directiveRef]
		name := doc.Input.ByteSliceString(directive.Name)
		switch name {
		case "settable":
			field.Settable = true
		case "transient":
			field.Transient = true
		case "private":
			field.Private = true
		case "internal":
			field.Internal = true
		case "json":
			args := parseDirectiveArgs(doc, directive)
			field.WireName = args["name"]
		case "default":
			value, ok, err := parseDefaultValue(doc, directive)
			if err != nil {
				return field, fmt.Errorf("field %s: %w", field.Name, err)
			}
			if ok {
				field.HasDefault = true
				field.Default = value
			}
		default:
			if !builtinDirectives[name] {
				field.Qualifiers = append(field.Qualifiers, parseQualifier(doc, directive))
			}
		}
	}

	return field, nil
}

func parseQualifier(doc *ast.Document, directive ast.Directive) typemodel.Qualifier {
	q := typemodel.Qualifier{Name: doc.Input.ByteSliceString(directive.Name)}
	for _, argRef := range directive.Arguments.Refs {
		arg := doc.Arguments[argRef]
		q.Args = append(q.Args, typemodel.QualifierArg{
			Name:  doc.Input.ByteSliceString(arg.Name),
			Value: valueString(doc, doc.ArgumentValue(argRef)),
		})
	}
	return q
}

// parseDefaultValue extracts the typed literal of @default(value: ...).
func parseDefaultValue(doc *ast.Document, directive ast.Directive) (any, bool, error) {
	for _, argRef := range directive.Arguments.Refs {
		arg := doc.Arguments[argRef]
		if doc.Input.ByteSliceString(arg.Name) != "value" {
			continue
		}
		value := doc.ArgumentValue(argRef)
		switch value.Kind {
		case ast.ValueKindString:
			return doc.StringValueContentString(value.Ref), true, nil
		case ast.ValueKindInteger:
			return int64(doc.IntValueAsInt(value.Ref)), true, nil
		case ast.ValueKindFloat:
			return float64(doc.FloatValueAsFloat32(value.Ref)), true, nil
		case ast.ValueKindBoolean:
			return bool(doc.BooleanValues[value.Ref]), true, nil
		case ast.ValueKindNull:
			return nil, true, nil
		default:
			return nil, false, fmt.Errorf("unsupported @default literal kind %v", value.Kind)
		}
	}
	return nil, false, fmt.Errorf("@default needs a \"value\" argument")
}

// typeRefFromAST converts a GraphQL type node. GraphQL types are nullable
// unless wrapped in NonNull, which matches the type model's default.
func typeRefFromAST(doc *ast.Document, typeRef int) typemodel.TypeRef {
	t := doc.Types[typeRef]
	switch t.TypeKind {
	case ast.TypeKindNonNull:
		return typeRefFromAST(doc, t.OfType).AsNonNull()
	case ast.TypeKindList:
		return typemodel.Parameterized("List", typeRefFromAST(doc, t.OfType)).AsNullable()
	default:
		return typemodel.Named(doc.Input.ByteSliceString(t.Name)).AsNullable()
	}
}

// parseTypeString parses the tiny type expressions accepted by @alias(of:):
// a named type with an optional trailing "?" and optional "[...]" list
// wrapping, e.g. "String", "Int?", "[String?]".
func parseTypeString(s string) typemodel.TypeRef {
	s = strings.TrimSpace(s)
	nullable := strings.HasSuffix(s, "?")
	if nullable {
		s = strings.TrimSuffix(s, "?")
	}
	var t typemodel.TypeRef
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		t = typemodel.Parameterized("List", parseTypeString(s[1:len(s)-1]))
	} else {
		t = typemodel.Named(s)
	}
	if nullable {
		t = t.AsNullable()
	}
	return t
}

func parseDirectiveArgs(doc *ast.Document, directive ast.Directive) map[string]string {
	args := make(map[string]string)
	for _, argRef := range directive.Arguments.Refs {
		arg := doc.Arguments[argRef]
		args[doc.Input.ByteSliceString(arg.Name)] = valueString(doc, doc.ArgumentValue(argRef))
	}
	return args
}

func valueString(doc *ast.Document, value ast.Value) string {
	switch value.Kind {
	case ast.ValueKindString:
		return doc.StringValueContentString(value.Ref)
	case ast.ValueKindEnum:
		if value.Ref >= 0 && value.Ref < len(doc.EnumValues) {
			return doc.Input.ByteSliceString(doc.EnumValues[value.Ref].Name)
		}
	case ast.ValueKindBoolean:
		if value.Ref >= 0 && value.Ref < len(doc.BooleanValues) {
			if doc.BooleanValues[value.Ref] {
				return "true"
			}
			return "false"
		}
	case ast.ValueKindInteger:
		return fmt.Sprintf("%d", doc.IntValueAsInt(value.Ref))
	case ast.ValueKindFloat:
		return fmt.Sprintf("%g", doc.FloatValueAsFloat32(value.Ref))
	}
	return ""
}

func getDescription(doc *ast.Document, desc ast.Description) string {
	if !desc.IsDefined {
		return ""
	}
	return doc.Input.ByteSliceString(desc.Content)
}

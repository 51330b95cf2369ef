package graphwriter

import (
	"testing"

	"github.com/coderisk/graphindex/internal/ir"
	"github.com/stretchr/testify/assert"
)

func TestLabelsForKind_AddsLanguageSpecificLabel(t *testing.T) {
	assert.ElementsMatch(t, []string{"Class", "JavaClass", "Component"}, LabelsForKind(ir.KindClass, "java"))
	assert.ElementsMatch(t, []string{"Method", "JavaMethod", "Component"}, LabelsForKind(ir.KindMethod, "java"))
	assert.ElementsMatch(t, []string{"Function", "PythonFunction", "Component"}, LabelsForKind(ir.KindFunction, "python"))
	assert.ElementsMatch(t, []string{"Class", "TypeScriptClass", "Component"}, LabelsForKind(ir.KindClass, "typescript"))
	assert.ElementsMatch(t, []string{"Function", "JavaScriptFunction", "Component"}, LabelsForKind(ir.KindFunction, "javascript"))
}

func TestLabelsForKind_NoLanguageOmitsLanguageLabel(t *testing.T) {
	assert.ElementsMatch(t, []string{"Class", "Component"}, LabelsForKind(ir.KindClass, ""))
}

func TestLabelsForKind_NonLanguageSpecificKindNeverGetsOne(t *testing.T) {
	assert.ElementsMatch(t, []string{"File", "Component"}, LabelsForKind(ir.KindFile, "go"))
}

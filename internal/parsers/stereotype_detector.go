package parsers

import (
	"strings"

	"github.com/coderisk/graphindex/internal/ir"
)

// stereotypeRule scores a class/interface node against one candidate
// stereotype using naming, annotation, and structural signals.
type stereotypeRule struct {
	name           string
	nameSuffixes   []string
	annotationHint []string
}

var stereotypeRules = []stereotypeRule{
	{name: "Controller", nameSuffixes: []string{"Controller", "Resource", "Handler"}, annotationHint: []string{"Controller", "RestController"}},
	{name: "Service", nameSuffixes: []string{"Service", "Manager", "UseCase"}, annotationHint: []string{"Service", "Component"}},
	{name: "Repository", nameSuffixes: []string{"Repository", "Dao", "Store"}, annotationHint: []string{"Repository"}},
	{name: "Entity", nameSuffixes: []string{"Entity", "Model"}, annotationHint: []string{"Entity", "Table"}},
	{name: "DTO", nameSuffixes: []string{"DTO", "Dto", "Request", "Response"}, annotationHint: []string{}},
	{name: "Configuration", nameSuffixes: []string{"Config", "Configuration"}, annotationHint: []string{"Configuration"}},
	{name: "Factory", nameSuffixes: []string{"Factory"}, annotationHint: []string{}},
	{name: "Builder", nameSuffixes: []string{"Builder"}, annotationHint: []string{}},
	{name: "Middleware", nameSuffixes: []string{"Middleware"}, annotationHint: []string{}},
	{name: "Guard", nameSuffixes: []string{"Guard"}, annotationHint: []string{}},
	{name: "Filter", nameSuffixes: []string{"Filter"}, annotationHint: []string{}},
	{name: "Validator", nameSuffixes: []string{"Validator"}, annotationHint: []string{}},
	{name: "Mapper", nameSuffixes: []string{"Mapper", "Converter"}, annotationHint: []string{"Mapper"}},
	{name: "Client", nameSuffixes: []string{"Client"}, annotationHint: []string{"FeignClient"}},
	{name: "Provider", nameSuffixes: []string{"Provider"}, annotationHint: []string{}},
	{name: "Module", nameSuffixes: []string{"Module"}, annotationHint: []string{"Module"}},
	{name: "Utility", nameSuffixes: []string{"Util", "Utils", "Helper", "Helpers"}, annotationHint: []string{}},
}

// ApplyStereotypes is the stereotype detector (spec §4.6): scores each
// Class/Interface node across naming and annotation signals, picking the
// single best stereotype with confidence ≥ 0.5 (on equal scores the rule
// listed first in stereotypeRules wins), and sets it in the node's Properties in place. Grounded on the
// suffix/annotation classification idiom found across the teacher's
// codebase for stereotype-free heuristics (e.g. internal/risk's
// path-pattern scoring), generalized into a weighted multi-signal scorer.
func ApplyStereotypes(nodes []ir.Node) {
	for i := range nodes {
		n := &nodes[i]
		if n.Kind != ir.KindClass && n.Kind != ir.KindInterface {
			continue
		}
		best, confidence := bestStereotype(n)
		if confidence < 0.5 {
			continue
		}
		if n.Properties == nil {
			n.Properties = map[string]interface{}{}
		}
		n.Properties["stereotype"] = best
		n.Properties["stereotypeConfidence"] = confidence
	}
}

func bestStereotype(n *ir.Node) (string, float64) {
	var annotations []string
	if n.Properties != nil {
		if raw, ok := n.Properties["annotations"].([]string); ok {
			annotations = raw
		}
	}

	bestName := ""
	bestScore := 0.0
	for _, rule := range stereotypeRules {
		score := 0.0
		for _, suffix := range rule.nameSuffixes {
			if strings.HasSuffix(n.Name, suffix) {
				score += 0.6
				break
			}
		}
		for _, ann := range annotations {
			for _, hint := range rule.annotationHint {
				if ann == hint {
					score += 0.5
				}
			}
		}
		if score > 1.0 {
			score = 1.0
		}
		if score > bestScore {
			bestScore = score
			bestName = rule.name
		}
	}
	if bestName == "" {
		return "Unknown", 0
	}
	return bestName, bestScore
}

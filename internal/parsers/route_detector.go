package parsers

import (
	"regexp"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
)

// jsRoutePattern matches Express-style routing calls on an `app` or
// `router` receiver: `app.get('/users/:id', ...)`, `router.post("/orders", ...)`.
var jsRoutePattern = regexp.MustCompile(`\b(?:app|router)\.(get|post|put|patch|delete)\s*\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`)

// springRoutePattern matches Spring MVC mapping annotations.
var springRoutePattern = regexp.MustCompile(`@(Get|Post|Put|Delete|Patch|Request)Mapping\s*\(\s*(?:value\s*=\s*)?"([^"]*)"`)

// flaskRoutePattern matches Flask/FastAPI-style decorator routes.
var flaskRoutePattern = regexp.MustCompile(`@\w+\.(route|get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`)

// DetectRoutes is the route detector (spec §4.6). It pattern-matches
// programmatic routing APIs and framework decorators directly over the raw
// source text rather than walking each framework's distinct AST shape,
// since the signal (an HTTP verb plus a path literal) is lexical and
// consistent across JS/Java/Python call styles. File-based routing
// conventions (Next.js/Nuxt) and Angular route modules are not detected.
func DetectRoutes(repositoryID, filePath, language, fileEntityID string, fileNodes []ir.Node, src []byte, now time.Time) ([]ir.Node, []ir.Edge) {
	var nodes []ir.Node
	var edges []ir.Edge

	text := string(src)
	enclosingMethod := methodLookupByLine(fileNodes)

	add := func(verb, path string, offset int) {
		lineNumber := lineOf(src, offset)
		isDynamic := regexp.MustCompile(`[:{*]`).MatchString(path)
		qn := filePath + ":" + verb + ":" + path
		route := ir.Node{
			EntityID:     ir.Fingerprint(repositoryID, ir.KindRestEndpoint, qn),
			RepositoryID: repositoryID,
			Kind:         ir.KindRestEndpoint,
			Name:         verb + " " + path,
			FilePath:     filePath,
			Language:     language,
			StartLine:    lineNumber,
			EndLine:      lineNumber,
			CreatedAt:    now,
			Properties: map[string]interface{}{
				"path":      path,
				"method":    verb,
				"isDynamic": isDynamic,
				"framework": frameworkFor(language),
			},
		}
		nodes = append(nodes, route)
		edges = append(edges, ir.Edge{
			EntityID:       ir.EdgeFingerprint(ir.EdgeContains, fileEntityID, route.EntityID, ""),
			RepositoryID:   repositoryID,
			Type:           ir.EdgeContains,
			SourceEntityID: fileEntityID,
			TargetEntityID: route.EntityID,
			CreatedAt:      now,
		})
		if methodID := enclosingMethod(lineNumber); methodID != "" {
			edges = append(edges, ir.Edge{
				EntityID:       ir.EdgeFingerprint(ir.EdgeRendersPage, methodID, route.EntityID, ""),
				RepositoryID:   repositoryID,
				Type:           ir.EdgeRendersPage,
				SourceEntityID: methodID,
				TargetEntityID: route.EntityID,
				CreatedAt:      now,
			})
		}
	}

	for _, m := range jsRoutePattern.FindAllStringSubmatchIndex(text, -1) {
		verb := text[m[2]:m[3]]
		path := text[m[4]:m[5]]
		add(verb, path, m[0])
	}
	for _, m := range springRoutePattern.FindAllStringSubmatchIndex(text, -1) {
		verb := text[m[2]:m[3]]
		path := text[m[4]:m[5]]
		add(verb, path, m[0])
	}
	for _, m := range flaskRoutePattern.FindAllStringSubmatchIndex(text, -1) {
		verb := text[m[2]:m[3]]
		path := text[m[4]:m[5]]
		add(verb, path, m[0])
	}

	return nodes, edges
}

func frameworkFor(language string) string {
	switch language {
	case "javascript", "jsx":
		return "express"
	case "typescript", "tsx":
		return "express"
	case "java":
		return "spring"
	case "python":
		return "flask"
	default:
		return "unknown"
	}
}

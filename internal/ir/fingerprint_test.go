package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("repo1", KindClass, "com.acme.UserService")
	b := Fingerprint("repo1", KindClass, "com.acme.UserService")
	assert.Equal(t, a, b)
}

func TestFingerprint_DistinguishesKindAndRepo(t *testing.T) {
	class := Fingerprint("repo1", KindClass, "com.acme.UserService")
	iface := Fingerprint("repo1", KindInterface, "com.acme.UserService")
	otherRepo := Fingerprint("repo2", KindClass, "com.acme.UserService")

	assert.NotEqual(t, class, iface)
	assert.NotEqual(t, class, otherRepo)
}

func TestQualifiedMember_ArityDisambiguates(t *testing.T) {
	one := QualifiedMember("repo1:Class:com.acme.UserService", "findById", 1)
	two := QualifiedMember("repo1:Class:com.acme.UserService", "findById", 2)
	assert.NotEqual(t, one, two)
	assert.Equal(t, "repo1:Class:com.acme.UserService.findById(1)", one)
}

func TestEdgeFingerprint_DisambiguatorSeparatesDuplicateEdges(t *testing.T) {
	e1 := EdgeFingerprint(EdgeCalls, "src1", "dst1", "")
	e2 := EdgeFingerprint(EdgeCalls, "src1", "dst1", "call-site-2")
	assert.NotEqual(t, e1, e2)
}

func TestContentHash_StableForSameBytes(t *testing.T) {
	h1 := ContentHash([]byte("package main\n"))
	h2 := ContentHash([]byte("package main\n"))
	h3 := ContentHash([]byte("package other\n"))

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestCrossFileEdgeType(t *testing.T) {
	assert.Equal(t, EdgeType("CROSS_FILE_CALLS"), CrossFileEdgeType(EdgeCalls))
}

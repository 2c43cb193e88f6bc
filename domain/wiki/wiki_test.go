package wiki

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() Tree {
	logo := NewFile("logo.png", "http://source/logo.png")
	gamma := NewPage("4", "Gamma", "Home/Alpha/Gamma", nil, nil)
	alpha := NewPage("2", "Alpha", "Home/Alpha", nil, []Page{gamma})
	beta := NewPage("3", "Beta", "Home/Beta", []File{NewFile("b.txt", "http://source/b.txt")}, nil)
	return NewTree(NewPage("1", "Home", "Home", []File{logo}, []Page{alpha, beta}))
}

func TestTree_WalkPreOrder(t *testing.T) {
	var visited []string
	var depths []int
	sampleTree().Walk(func(p Page, depth int) bool {
		visited = append(visited, p.Title())
		depths = append(depths, depth)
		return true
	})

	if diff := cmp.Diff([]string{"Home", "Alpha", "Gamma", "Beta"}, visited); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{0, 1, 2, 1}, depths)
}

func TestTree_WalkVisitsParentsBeforeDescendants(t *testing.T) {
	tree := sampleTree()
	seen := map[string]int{}
	order := 0
	tree.Walk(func(p Page, _ int) bool {
		_, dup := seen[p.ID()]
		assert.False(t, dup, "page %s visited twice", p.ID())
		seen[p.ID()] = order
		order++
		return true
	})
	assert.Len(t, seen, tree.Size())

	var check func(p Page)
	check = func(p Page) {
		for _, c := range p.Children() {
			assert.Less(t, seen[p.ID()], seen[c.ID()])
			check(c)
		}
	}
	check(tree.Root())
}

func TestTree_WalkStops(t *testing.T) {
	count := 0
	sampleTree().Walk(func(p Page, _ int) bool {
		count++
		return p.Title() != "Alpha"
	})
	assert.Equal(t, 2, count)
}

func TestTree_Counts(t *testing.T) {
	tree := sampleTree()
	assert.Equal(t, 4, tree.Size())
	assert.Equal(t, 2, tree.FileCount())
}

func TestTree_PageByPath(t *testing.T) {
	tree := sampleTree()

	found, ok := tree.PageByPath("Home/Alpha/Gamma")
	assert.True(t, ok)
	assert.Equal(t, "Gamma", found.Title())

	_, ok = tree.PageByPath("Home/Missing")
	assert.False(t, ok)
}

func TestTree_YAMLRoundTrip(t *testing.T) {
	tree := sampleTree()

	data, err := tree.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Home")
	assert.Contains(t, string(data), "name: logo.png")

	parsed, err := ParseTree(data)
	require.NoError(t, err)
	assert.Equal(t, tree.Size(), parsed.Size())
	assert.Equal(t, tree.FileCount(), parsed.FileCount())
	gamma, ok := parsed.PageByPath("Home/Alpha/Gamma")
	assert.True(t, ok)
	assert.Equal(t, "4", gamma.ID())
}

func TestParseTree_Invalid(t *testing.T) {
	_, err := ParseTree([]byte("title: [unterminated"))
	assert.Error(t, err)
}

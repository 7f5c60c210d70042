package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/rules"
	"github.com/Protryon/lib-rs-mirror-sub000/taxonomy"
)

func loadEngineAndTree(t *testing.T) (*rules.Engine, *taxonomy.Tree) {
	t.Helper()
	tree, err := taxonomy.Load()
	require.NoError(t, err)
	engine, err := rules.Load(tree)
	require.NoError(t, err)
	return engine, tree
}

// fakeSeedSource is a CategorySeedSource returning a fixed seed map,
// recording whether it was invoked so tests can tell the declared-category
// shortcut apart from the similarity-guessed fallback.
type fakeSeedSource struct {
	seeds   map[string]float64
	err     error
	invoked bool
}

func (f *fakeSeedSource) InferredCategorySeeds(_ context.Context, _ []string) (map[string]float64, error) {
	f.invoked = true
	return f.seeds, f.err
}

func firstTopLevelSlug(t *testing.T, tree *taxonomy.Tree) string {
	t.Helper()
	var found string
	tree.Walk(func(n *taxonomy.Node) {
		if found == "" && n.Slug != "" {
			found = n.Slug
		}
	})
	require.NotEmpty(t, found, "taxonomy has no nodes")
	return found
}

func TestComputeCategoriesUsesDeclaredSeedsWithoutConsultingSeedSource(t *testing.T) {
	engine, tree := loadEngineAndTree(t)
	slug := firstTopLevelSlug(t, tree)

	seeds := &fakeSeedSource{}
	manifest := ci.Manifest{Categories: []string{slug}}
	_, demoted, err := ComputeCategories(context.Background(), engine, tree, seeds, manifest, map[string]struct{}{})
	require.NoError(t, err)
	require.Empty(t, demoted)
	require.False(t, seeds.invoked)
}

func TestComputeCategoriesDemotesInvalidDeclaredSlugs(t *testing.T) {
	engine, tree := loadEngineAndTree(t)
	seeds := &fakeSeedSource{}
	manifest := ci.Manifest{Categories: []string{"not-a-real-slug"}}
	_, demoted, err := ComputeCategories(context.Background(), engine, tree, seeds, manifest, map[string]struct{}{})
	require.NoError(t, err)
	require.Equal(t, []string{"not-a-real-slug"}, demoted)
}

func TestComputeCategoriesNormalizesDeclaredSlugCaseAndDelimiters(t *testing.T) {
	engine, tree := loadEngineAndTree(t)
	slug := firstTopLevelSlug(t, tree)

	var child string
	tree.Walk(func(n *taxonomy.Node) {
		if child == "" && n.Parent() != nil {
			child = n.Slug
		}
	})
	require.NotEmpty(t, child, "taxonomy has no nested category to exercise :: trimming")

	seeds := &fakeSeedSource{}
	manifest := ci.Manifest{Categories: []string{
		strings.ToUpper(slug),
		"::" + child + "::",
	}}
	_, demoted, err := ComputeCategories(context.Background(), engine, tree, seeds, manifest, map[string]struct{}{})
	require.NoError(t, err)
	require.Empty(t, demoted)
	require.False(t, seeds.invoked)
}

func TestComputeCategoriesFallsBackToSeedSourceWithNoValidDeclared(t *testing.T) {
	engine, tree := loadEngineAndTree(t)
	slug := firstTopLevelSlug(t, tree)
	seeds := &fakeSeedSource{seeds: map[string]float64{slug: 1.0}}
	manifest := ci.Manifest{}
	_, _, err := ComputeCategories(context.Background(), engine, tree, seeds, manifest, map[string]struct{}{"whatever": {}})
	require.NoError(t, err)
	require.True(t, seeds.invoked)
}

func TestComputeCategoriesPropagatesSeedSourceError(t *testing.T) {
	engine, tree := loadEngineAndTree(t)
	seeds := &fakeSeedSource{err: context.DeadlineExceeded}
	_, _, err := ComputeCategories(context.Background(), engine, tree, seeds, ci.Manifest{}, map[string]struct{}{})
	require.Error(t, err)
}

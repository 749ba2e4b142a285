package sections

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmsTheme/internal/storage"
)

func newTestStore() (*Store, *storage.FS) {
	blobs := storage.NewFS(memfs.New())
	return NewStore(blobs), blobs
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"variables", "header", "footer"}, RequiredSections())

	for _, name := range []string{"variables", "header", "footer", "template-blog", "template-landing-2"} {
		assert.True(t, ValidName(name), name)
	}
	for _, name := range []string{"", "body", "template-", "template-Blog", "template-a/b", "template--x", "../header"} {
		assert.False(t, ValidName(name), name)
	}
	assert.Equal(t, "template-blog", TemplateSection(" Blog "))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "themes/7/7_header.css", SectionKey(7, "header"))
	assert.Equal(t, "themes/7/7.css", MasterKey(7))
	assert.Equal(t, "/themes/7/7.css", PublicURL("/", MasterKey(7)))
	assert.Equal(t, "https://cdn.example.com/themes/7/7.css", PublicURL("https://cdn.example.com/", MasterKey(7)))
}

func TestStore_SaveGetOverwrite(t *testing.T) {
	ctx := context.Background()
	store, blobs := newTestStore()

	require.NoError(t, store.Save(ctx, 1, Header, ".a{}"))
	require.NoError(t, store.Save(ctx, 1, Header, ".b{}"))

	css, ok, err := store.Get(ctx, 1, Header)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ".b{}", css)

	data, err := blobs.Get(ctx, "themes/1/1_header.css")
	require.NoError(t, err)
	assert.Equal(t, ".b{}", string(data))
}

func TestStore_AbsentSectionIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	css, ok, err := store.Get(ctx, 1, Footer)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, css)

	exists, err := store.Exists(ctx, 1, Footer)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_RejectsInvalidNames(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	assert.ErrorIs(t, store.Save(ctx, 1, "../../etc", "x"), ErrInvalidSection)
	_, _, err := store.Get(ctx, 1, "body")
	assert.ErrorIs(t, err, ErrInvalidSection)
}

func TestStore_ListOrdersRequiredThenTemplates(t *testing.T) {
	ctx := context.Background()
	store, blobs := newTestStore()

	require.NoError(t, store.Save(ctx, 3, "template-landing", "l"))
	require.NoError(t, store.Save(ctx, 3, Footer, "f"))
	require.NoError(t, store.Save(ctx, 3, "template-blog", "b"))
	require.NoError(t, store.Save(ctx, 3, Variables, "v"))
	require.NoError(t, store.Save(ctx, 30, Header, "other theme"))
	require.NoError(t, blobs.Put(ctx, MasterKey(3), []byte("merged"), "text/css"))
	require.NoError(t, blobs.Put(ctx, "themes/3/notes.txt", []byte("x"), "text/plain"))

	names, err := store.List(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"variables", "footer", "template-blog", "template-landing"}, names)

	names, err = store.List(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.Save(ctx, 1, "template-blog", "b"))
	require.NoError(t, store.Delete(ctx, 1, "template-blog"))
	require.NoError(t, store.Delete(ctx, 1, "template-blog"))

	ok, err := store.Exists(ctx, 1, "template-blog")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidator_ShrinksMonotonically(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	v := NewValidator(store)

	missing, err := v.ValidateRequiredSections(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"variables", "header", "footer"}, missing)

	require.NoError(t, store.Save(ctx, 1, Header, "h"))
	missing, err = v.ValidateRequiredSections(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"variables", "footer"}, missing)

	require.NoError(t, store.Save(ctx, 1, Footer, "f"))
	require.NoError(t, store.Save(ctx, 1, "template-blog", "b"))
	missing, err = v.ValidateRequiredSections(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"variables"}, missing)

	require.NoError(t, store.Save(ctx, 1, Variables, "v"))
	missing, err = v.ValidateRequiredSections(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

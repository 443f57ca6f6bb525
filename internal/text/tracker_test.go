package text

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_OpenStartsClean(t *testing.T) {
	tr := NewDocumentTracker()
	tr.Open("/src/a.go", "package a")

	assert.Empty(t, tr.DirtyDocuments())
	require.NotNil(t, tr.Snapshot("/src/a.go"))
	assert.Equal(t, "package a", tr.Snapshot("/src/a.go").Content())
}

func TestTracker_UpdateMarksDirty(t *testing.T) {
	tr := NewDocumentTracker()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr.SetClock(func() time.Time { return now })

	tr.Open("/src/a.go", "package a")
	tr.Update("/src/a.go", "package a // edited")

	dirty := tr.DirtyDocuments()
	require.Len(t, dirty, 1)
	assert.Equal(t, "/src/a.go", dirty[0].Path)
	assert.Equal(t, now, dirty[0].ModifiedAt)
	assert.Equal(t, "package a // edited", tr.Snapshot("/src/a.go").Content())
}

func TestTracker_MarkSavedClearsDirty(t *testing.T) {
	tr := NewDocumentTracker()
	tr.Update("/src/a.go", "package a")
	require.Len(t, tr.DirtyDocuments(), 1)

	tr.MarkSaved("/src/a.go")
	assert.Empty(t, tr.DirtyDocuments())
	// Content is still there.
	require.NotNil(t, tr.Snapshot("/src/a.go"))
}

func TestTracker_UpdateUnopenedOpensImplicitly(t *testing.T) {
	tr := NewDocumentTracker()
	tr.Update("/src/new.go", "package new")

	require.Len(t, tr.DirtyDocuments(), 1)
	require.NotNil(t, tr.Snapshot("/src/new.go"))
}

func TestTracker_Close(t *testing.T) {
	tr := NewDocumentTracker()
	tr.Update("/src/a.go", "package a")
	tr.Close("/src/a.go")

	assert.Nil(t, tr.Snapshot("/src/a.go"))
	assert.Empty(t, tr.DirtyDocuments())
}

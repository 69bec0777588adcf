package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func detailTabs() TabGroup {
	return NewTabGroup(
		Tab{Key: "summary", Title: "Summary"},
		Tab{Key: "transcript", Title: "Transcript"},
		Tab{Key: "wellness", Title: "Wellness"},
	)
}

func TestTabGroup_FirstTabActive(t *testing.T) {
	g := detailTabs()
	assert.Equal(t, "summary", g.Active())
}

func TestTabGroup_Activate(t *testing.T) {
	g := detailTabs()
	assert.True(t, g.Activate("wellness"))
	assert.Equal(t, "wellness", g.Active())

	assert.False(t, g.Activate("nope"))
	assert.Equal(t, "wellness", g.Active(), "unknown key must not change the active tab")
}

func TestTabGroup_NextPrevWrap(t *testing.T) {
	g := detailTabs()
	g.Next()
	assert.Equal(t, "transcript", g.Active())
	g.Next()
	g.Next()
	assert.Equal(t, "summary", g.Active())
	g.Prev()
	assert.Equal(t, "wellness", g.Active())
}

func TestTabGroup_DirtyMarker(t *testing.T) {
	g := detailTabs()
	g.MarkDirty("transcript")
	assert.True(t, g.Dirty("transcript"))

	// Activation clears the marker.
	g.Activate("transcript")
	assert.False(t, g.Dirty("transcript"))
}

func TestTabGroup_DirtyOnActiveTabIgnored(t *testing.T) {
	g := detailTabs()
	g.MarkDirty("summary")
	assert.False(t, g.Dirty("summary"), "the active tab never carries the update marker")
}

func TestTabGroup_DirtyUnknownKeyIgnored(t *testing.T) {
	g := detailTabs()
	g.MarkDirty("bogus")
	assert.False(t, g.Dirty("bogus"))
}

func TestTabGroup_Empty(t *testing.T) {
	g := NewTabGroup()
	assert.Equal(t, "", g.Active())
	g.Next()
	g.Prev()
	assert.Equal(t, "", g.Active())
}

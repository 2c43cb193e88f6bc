package migration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary_Record(t *testing.T) {
	var s Summary
	s = s.Record(NewEvent(EventPageWritten, "Home"))
	s = s.Record(NewEvent(EventPageFailed, "Broken").WithErr(errors.New("x")))
	s = s.Record(FileEvent("Home", "a.png", Uploaded()))
	s = s.Record(FileEvent("Home", "b.png", Skipped("exists")))
	s = s.Record(FileEvent("Home", "c.png", Failed(errors.New("y"))))
	s = s.Record(NewEvent(EventTitleSanitized, "C#"))
	s = s.Record(NewEvent(EventMainPageSet, "Home"))

	assert.Equal(t, 1, s.PagesWritten)
	assert.Equal(t, 1, s.PagesFailed)
	assert.Equal(t, 1, s.FilesUploaded)
	assert.Equal(t, 1, s.FilesSkipped)
	assert.Equal(t, 1, s.FilesFailed)
	assert.Equal(t, 3, s.FilesProcessed())
	assert.Equal(t, 2, s.Failures())
	assert.Equal(t, 1, s.TitlesSanitized)
	assert.True(t, s.MainPageSet)
}

func TestSummary_Merge(t *testing.T) {
	a := Summary{PagesVisited: 2, PagesWritten: 2, NodesWithFiles: 1, FilesUploaded: 3}
	b := Summary{PagesVisited: 1, PagesFailed: 1, FilesSkipped: 2, MainPageSet: true}

	got := a.Merge(b)

	assert.Equal(t, Summary{
		PagesVisited:   3,
		PagesWritten:   2,
		PagesFailed:    1,
		NodesWithFiles: 1,
		FilesUploaded:  3,
		FilesSkipped:   2,
		MainPageSet:    true,
	}, got)
	assert.Equal(t, 2, a.PagesVisited, "merge must not modify the receiver")
}

func TestSummary_LogAttrs(t *testing.T) {
	attrs := Summary{PagesWritten: 4}.LogAttrs()
	keys := make(map[string]string, len(attrs))
	for _, a := range attrs {
		keys[a.Key] = a.Value.String()
	}
	assert.Equal(t, "4", keys["pages_written"])
	assert.Contains(t, keys, "files_uploaded")
}

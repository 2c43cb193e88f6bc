package migration

import "log/slog"

// Summary aggregates the counters of a run. Summaries of subtrees are
// merged into their parent's so no shared counter is needed.
type Summary struct {
	PagesVisited      int
	PagesWritten      int
	PagesFailed       int
	PagesSkipped      int
	TitlesSanitized   int
	BodyFetchFailures int
	ConvertFailures   int
	NodesWithFiles    int
	FilesUploaded     int
	FilesSkipped      int
	FilesFailed       int
	MainPageSet       bool
}

// Record returns a copy of s updated for event.
func (s Summary) Record(event Event) Summary {
	switch event.Kind() {
	case EventPageWritten:
		s.PagesWritten++
	case EventPageFailed:
		s.PagesFailed++
	case EventPageSkipped:
		s.PagesSkipped++
	case EventTitleSanitized:
		s.TitlesSanitized++
	case EventBodyFetchFailed:
		s.BodyFetchFailures++
	case EventConvertFailed:
		s.ConvertFailures++
	case EventFileUploaded:
		s.FilesUploaded++
	case EventFileSkipped:
		s.FilesSkipped++
	case EventFileFailed:
		s.FilesFailed++
	case EventMainPageSet:
		s.MainPageSet = true
	}
	return s
}

// Merge returns the sum of s and other.
func (s Summary) Merge(other Summary) Summary {
	s.PagesVisited += other.PagesVisited
	s.PagesWritten += other.PagesWritten
	s.PagesFailed += other.PagesFailed
	s.PagesSkipped += other.PagesSkipped
	s.TitlesSanitized += other.TitlesSanitized
	s.BodyFetchFailures += other.BodyFetchFailures
	s.ConvertFailures += other.ConvertFailures
	s.NodesWithFiles += other.NodesWithFiles
	s.FilesUploaded += other.FilesUploaded
	s.FilesSkipped += other.FilesSkipped
	s.FilesFailed += other.FilesFailed
	s.MainPageSet = s.MainPageSet || other.MainPageSet
	return s
}

// FilesProcessed returns the number of files handled in any way.
func (s Summary) FilesProcessed() int {
	return s.FilesUploaded + s.FilesSkipped + s.FilesFailed
}

// Failures returns the number of pages and files that were not migrated.
func (s Summary) Failures() int {
	return s.PagesFailed + s.FilesFailed
}

// LogAttrs returns the counters as slog attributes.
func (s Summary) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("pages_visited", s.PagesVisited),
		slog.Int("pages_written", s.PagesWritten),
		slog.Int("pages_failed", s.PagesFailed),
		slog.Int("pages_skipped", s.PagesSkipped),
		slog.Int("titles_sanitized", s.TitlesSanitized),
		slog.Int("nodes_with_files", s.NodesWithFiles),
		slog.Int("files_uploaded", s.FilesUploaded),
		slog.Int("files_skipped", s.FilesSkipped),
		slog.Int("files_failed", s.FilesFailed),
		slog.Bool("main_page_set", s.MainPageSet),
	}
}

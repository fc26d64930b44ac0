package slack

var (
	BuildDraftBlocks   = buildDraftBlocks
	TruncateToMaxBytes = truncateToMaxBytes
	DegradedNote       = degradedNote
)
